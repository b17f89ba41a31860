package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Document is a single record as returned by a query
type Document = map[string]any

// ErrStoreClosed is returned by operations on a closed store
var ErrStoreClosed = errors.New("store is closed")

// QueryResult is the outcome of executing one statement
type QueryResult struct {
	Items              []Document
	MutatedDocumentIDs []string
}

// Store executes statements against the tasks database and fans change
// notifications out to registered observers.
type Store struct {
	db         *sql.DB
	maxResults int

	mu        sync.Mutex
	observers map[*StoreObserver]struct{}
	closed    bool
}

// NewStore wraps an initialized database. maxResults bounds SELECT results;
// values <= 0 disable the bound.
func NewStore(db *sql.DB, maxResults int) *Store {
	return &Store{
		db:         db,
		maxResults: maxResults,
		observers:  make(map[*StoreObserver]struct{}),
	}
}

// Open initializes the database at path and returns a store over it
func Open(ctx context.Context, path string, maxResults int) (*Store, error) {
	db, err := InitDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewStore(db, maxResults), nil
}

// DB returns the underlying database handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Execute runs a statement with named parameters.
//
// SELECT statements fill Items. Statements with a RETURNING clause fill
// MutatedDocumentIDs from the first returned column. Any statement that
// mutated at least one document wakes every observer.
func (s *Store) Execute(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	var (
		result *QueryResult
		err    error
	)
	switch classifyStatement(statement) {
	case kindSelect:
		result, err = s.query(ctx, statement, params)
	case kindReturning:
		result, err = s.mutate(ctx, statement, params)
	default:
		result, err = s.exec(ctx, statement, params)
	}
	if err != nil {
		return nil, err
	}

	if len(result.MutatedDocumentIDs) > 0 {
		s.NotifyExternalChange()
	}
	return result, nil
}

// InsertInitialDocuments inserts documents whose ids are not already present.
// Existing documents are left untouched. It returns the ids actually inserted.
func (s *Store) InsertInitialDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	var inserted []string
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, doc := range docs {
			var id string
			err := tx.QueryRowContext(ctx,
				`INSERT OR IGNORE INTO tasks (_id, title, done, deleted)
				 VALUES (:id, :title, :done, :deleted) RETURNING _id`,
				sql.Named("id", doc["_id"]),
				sql.Named("title", doc["title"]),
				sql.Named("done", doc["done"]),
				sql.Named("deleted", doc["deleted"]),
			).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to insert initial document %v: %w", doc["_id"], err)
			}
			inserted = append(inserted, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(inserted) > 0 {
		s.NotifyExternalChange()
	}
	return inserted, nil
}

// NotifyExternalChange wakes every observer so it re-runs its query.
// It is called after local mutations and when another process reports one.
func (s *Store) NotifyExternalChange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for o := range s.observers {
		o.wakeUp()
	}
}

// ObserverCount reports the number of live observers
func (s *Store) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Close cancels all observers and closes the database
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	observers := make([]*StoreObserver, 0, len(s.observers))
	for o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.Cancel()
	}

	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) register(o *StoreObserver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.observers[o] = struct{}{}
	return nil
}

func (s *Store) deregister(o *StoreObserver) {
	s.mu.Lock()
	delete(s.observers, o)
	s.mu.Unlock()
}

func (s *Store) query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, statement, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("error closing rows", "error", err)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	result := &QueryResult{Items: []Document{}}
	truncated := false
	for rows.Next() {
		if s.maxResults > 0 && len(result.Items) >= s.maxResults {
			truncated = true
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		doc := make(Document, len(columns))
		for i, name := range columns {
			doc[name] = normalizeValue(values[i], columnTypes[i].DatabaseTypeName())
		}
		result.Items = append(result.Items, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	if truncated {
		slog.Warn("query result truncated", "limit", s.maxResults, "statement", statement)
	}
	return result, nil
}

func (s *Store) mutate(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, statement, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("error closing rows", "error", err)
		}
	}()

	result := &QueryResult{Items: []Document{}, MutatedDocumentIDs: []string{}}
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan mutated id: %w", err)
		}
		result.MutatedDocumentIDs = append(result.MutatedDocumentIDs, fmt.Sprint(normalizeValue(id, "")))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutated ids: %w", err)
	}
	return result, nil
}

func (s *Store) exec(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	res, err := s.db.ExecContext(ctx, statement, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("statement failed: %w", err)
	}

	// Without RETURNING there are no ids to report, but observers still
	// need to hear about the change.
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.NotifyExternalChange()
	}
	return &QueryResult{Items: []Document{}, MutatedDocumentIDs: []string{}}, nil
}
