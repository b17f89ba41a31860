package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thenoetrevino/tasks/internal/converters"
	"github.com/thenoetrevino/tasks/internal/database"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/models"
)

const tracerName = "github.com/thenoetrevino/tasks/internal/services/task"

// Service defines all task-related operations over the tasks collection
type Service interface {
	// Read operations
	GetTask(ctx context.Context, id string) (models.Task, error)
	GetTasks(ctx context.Context, includeDeleted bool) ([]models.Task, error)
	FindMatchingTask(ctx context.Context, idSubstring string) (models.Task, error)

	// Write operations
	AddTask(ctx context.Context, title string, done bool) (string, error)
	UpdateTask(ctx context.Context, task models.Task) error
	MarkTaskComplete(ctx context.Context, id string, done bool) error
	UpdateTaskTitle(ctx context.Context, id, title string) error
	DeleteTask(ctx context.Context, id string) error
	EvictDeletedTasks(ctx context.Context) error
	InsertInitialTasks(ctx context.Context) error

	// Live query over the not-deleted tasks
	RegisterObserver(ctx context.Context, callback func([]models.Task)) (*Subscription, error)

	// Diagnostic pass-through returning the raw result as JSON
	ExecuteQuery(ctx context.Context, statement string) (string, error)
}

// DocumentStore is the subset of the store the service depends on
type DocumentStore interface {
	Execute(ctx context.Context, statement string, params map[string]any) (*database.QueryResult, error)
	InsertInitialDocuments(ctx context.Context, docs []database.Document) ([]string, error)
	RegisterObserver(ctx context.Context, statement string, params map[string]any, handler database.ObserverHandler) (*database.StoreObserver, error)
}

// Subscription is the handle returned by RegisterObserver
type Subscription struct {
	observer *database.StoreObserver
}

// Cancel stops future deliveries to the callback. Safe to call repeatedly
// and from inside the callback itself.
func (s *Subscription) Cancel() {
	if s == nil || s.observer == nil {
		return
	}
	s.observer.Cancel()
}

// service implements Service interface
type service struct {
	store       DocumentStore
	eventClient events.EventPublisher
	tracer      trace.Tracer
	newID       func() string

	// mu serializes every operation against the store
	mu sync.Mutex
}

// NewService creates a new task service. eventClient may be nil.
func NewService(store DocumentStore, eventClient events.EventPublisher) Service {
	return &service{
		store:       store,
		eventClient: eventClient,
		tracer:      otel.Tracer(tracerName),
		newID:       uuid.NewString,
	}
}

// AddTask inserts a new, not deleted task and returns its id
func (s *service) AddTask(ctx context.Context, title string, done bool) (id string, err error) {
	ctx, span := s.startSpan(ctx, "AddTask")
	defer func() { finishSpan(span, err) }()

	if title == "" {
		return "", ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.store.Execute(ctx, queryInsert, map[string]any{
		"id":    s.newID(),
		"title": title,
		"done":  done,
	})
	if err != nil {
		return "", storeError("add task", err)
	}
	if len(result.MutatedDocumentIDs) == 0 {
		return "", storeError("add task", fmt.Errorf("insert reported no document id"))
	}

	id = result.MutatedDocumentIDs[0]
	span.SetAttributes(attribute.String("task.id", id))
	s.publishTaskEvent(ctx, id)
	return id, nil
}

// GetTask returns the not deleted task with exactly this id
func (s *service) GetTask(ctx context.Context, id string) (task models.Task, err error) {
	ctx, span := s.startSpan(ctx, "GetTask", attribute.String("task.id", id))
	defer func() { finishSpan(span, err) }()

	if id == "" {
		return models.Task{}, ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.queryTasks(ctx, "get task", querySelectByID, map[string]any{"id": id})
	if err != nil {
		return models.Task{}, err
	}
	return exactlyOne(tasks, id)
}

// GetTasks lists tasks ordered by id, optionally including deleted ones
func (s *service) GetTasks(ctx context.Context, includeDeleted bool) (tasks []models.Task, err error) {
	ctx, span := s.startSpan(ctx, "GetTasks", attribute.Bool("include_deleted", includeDeleted))
	defer func() { finishSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	query := querySelectActive
	if includeDeleted {
		query = querySelectAll
	}
	return s.queryTasks(ctx, "get tasks", query, nil)
}

// FindMatchingTask returns the single not deleted task whose id contains idSubstring
func (s *service) FindMatchingTask(ctx context.Context, idSubstring string) (task models.Task, err error) {
	ctx, span := s.startSpan(ctx, "FindMatchingTask", attribute.String("task.id_substring", idSubstring))
	defer func() { finishSpan(span, err) }()

	if idSubstring == "" {
		return models.Task{}, ErrEmptySubstring
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.queryTasks(ctx, "find task", querySelectBySubstring, map[string]any{"substring": idSubstring})
	if err != nil {
		return models.Task{}, err
	}
	return exactlyOne(tasks, idSubstring)
}

// UpdateTask overwrites title, done and deleted of the task with task.ID
func (s *service) UpdateTask(ctx context.Context, task models.Task) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTask", attribute.String("task.id", task.ID))
	defer func() { finishSpan(span, err) }()

	if task.ID == "" {
		return ErrEmptyTaskID
	}
	if task.Title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateOne(ctx, "update task", task.ID, queryUpdate, map[string]any{
		"id":      task.ID,
		"title":   task.Title,
		"done":    task.Done,
		"deleted": task.Deleted,
	})
}

// MarkTaskComplete sets the done flag. An unknown id is silently ignored.
func (s *service) MarkTaskComplete(ctx context.Context, id string, done bool) (err error) {
	ctx, span := s.startSpan(ctx, "MarkTaskComplete", attribute.String("task.id", id), attribute.Bool("task.done", done))
	defer func() { finishSpan(span, err) }()

	if id == "" {
		return ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.store.Execute(ctx, queryUpdateDone, map[string]any{"id": id, "done": done})
	if err != nil {
		return storeError("mark task complete", err)
	}
	if len(result.MutatedDocumentIDs) > 0 {
		s.publishTaskEvent(ctx, id)
	}
	return nil
}

// UpdateTaskTitle replaces the title of an existing task
func (s *service) UpdateTaskTitle(ctx context.Context, id, title string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTaskTitle", attribute.String("task.id", id))
	defer func() { finishSpan(span, err) }()

	if id == "" {
		return ErrEmptyTaskID
	}
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateOne(ctx, "update task title", id, queryUpdateTitle, map[string]any{"id": id, "title": title})
}

// DeleteTask soft-deletes a task. It stays in the store until evicted.
func (s *service) DeleteTask(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteTask", attribute.String("task.id", id))
	defer func() { finishSpan(span, err) }()

	if id == "" {
		return ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateOne(ctx, "delete task", id, querySoftDelete, map[string]any{"id": id})
}

// EvictDeletedTasks physically removes every soft-deleted task
func (s *service) EvictDeletedTasks(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "EvictDeletedTasks")
	defer func() { finishSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.store.Execute(ctx, queryEvictDeleted, nil)
	if err != nil {
		return storeError("evict deleted tasks", err)
	}

	span.SetAttributes(attribute.Int("tasks.evicted", len(result.MutatedDocumentIDs)))
	if len(result.MutatedDocumentIDs) > 0 {
		s.publishTaskEvent(ctx, "")
	}
	return nil
}

// InsertInitialTasks seeds the demo tasks. Tasks that already exist are left alone.
func (s *service) InsertInitialTasks(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "InsertInitialTasks")
	defer func() { finishSpan(span, err) }()

	docs := make([]database.Document, 0, len(models.InitialTasks))
	for _, t := range models.InitialTasks {
		docs = append(docs, converters.TaskToDocument(t))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted, err := s.store.InsertInitialDocuments(ctx, docs)
	if err != nil {
		return storeError("insert initial tasks", err)
	}
	if len(inserted) > 0 {
		s.publishTaskEvent(ctx, "")
	}
	return nil
}

// RegisterObserver delivers the not deleted tasks, ordered by id, to callback
// every time that set changes. The current set is not delivered.
func (s *service) RegisterObserver(ctx context.Context, callback func([]models.Task)) (sub *Subscription, err error) {
	ctx, span := s.startSpan(ctx, "RegisterObserver")
	defer func() { finishSpan(span, err) }()

	if callback == nil {
		return nil, ErrNilCallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	observer, err := s.store.RegisterObserver(ctx, querySelectActive, nil, func(items []database.Document) {
		callback(converters.TasksFromDocuments(items))
	})
	if err != nil {
		return nil, storeError("register observer", err)
	}
	return &Subscription{observer: observer}, nil
}

// queryResultJSON is the diagnostic shape returned by ExecuteQuery
type queryResultJSON struct {
	Items               []database.Document `json:"items"`
	ModifiedDocumentIDs []string            `json:"modified_document_ids"`
}

// ExecuteQuery runs an arbitrary statement and returns the raw result as JSON
func (s *service) ExecuteQuery(ctx context.Context, statement string) (out string, err error) {
	ctx, span := s.startSpan(ctx, "ExecuteQuery")
	defer func() { finishSpan(span, err) }()

	if strings.TrimSpace(statement) == "" {
		return "", ErrEmptyQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.store.Execute(ctx, statement, nil)
	if err != nil {
		return "", storeError("execute query", err)
	}

	payload := queryResultJSON{
		Items:               result.Items,
		ModifiedDocumentIDs: result.MutatedDocumentIDs,
	}
	if payload.Items == nil {
		payload.Items = []database.Document{}
	}
	if payload.ModifiedDocumentIDs == nil {
		payload.ModifiedDocumentIDs = []string{}
	}

	data, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode query result: %w", err)
	}

	if len(result.MutatedDocumentIDs) > 0 {
		s.publishTaskEvent(ctx, "")
	}
	return string(data), nil
}

// queryTasks runs a SELECT and converts the documents. Callers hold s.mu.
func (s *service) queryTasks(ctx context.Context, op, query string, params map[string]any) ([]models.Task, error) {
	result, err := s.store.Execute(ctx, query, params)
	if err != nil {
		return nil, storeError(op, err)
	}
	return converters.TasksFromDocuments(result.Items), nil
}

// mutateOne runs a statement expected to touch the task with id and reports
// ErrNotFound when it touched nothing. Callers hold s.mu.
func (s *service) mutateOne(ctx context.Context, op, id, query string, params map[string]any) error {
	result, err := s.store.Execute(ctx, query, params)
	if err != nil {
		return storeError(op, err)
	}
	if len(result.MutatedDocumentIDs) == 0 {
		return notFound(id)
	}
	s.publishTaskEvent(ctx, id)
	return nil
}

func exactlyOne(tasks []models.Task, id string) (models.Task, error) {
	switch len(tasks) {
	case 0:
		return models.Task{}, notFound(id)
	case 1:
		return tasks[0], nil
	default:
		return models.Task{}, ambiguous(id)
	}
}

// publishTaskEvent notifies other processes that the tasks collection changed.
// Failures are logged by the retry policy and never fail the operation.
func (s *service) publishTaskEvent(ctx context.Context, taskID string) {
	if s.eventClient == nil {
		return
	}

	_ = events.DefaultRetryPolicy.Publish(ctx, s.eventClient, events.Event{
		Type:       events.EventDatabaseChanged,
		Collection: models.TasksCollection,
		DocumentID: taskID,
		Timestamp:  time.Now(),
	})
}

func (s *service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "task."+name, trace.WithAttributes(attrs...))
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
