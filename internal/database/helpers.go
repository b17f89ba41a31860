package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// namedArgs converts a parameter map into sql.NamedArg values.
// Keys are sorted so statements bind deterministically.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, sql.Named(k, params[k]))
	}
	return args
}

// statementKind classifies a statement by its leading keyword
type statementKind int

const (
	kindExec statementKind = iota
	kindSelect
	kindReturning
)

func classifyStatement(statement string) statementKind {
	trimmed := strings.TrimSpace(statement)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return kindExec
	}

	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "VALUES":
		return kindSelect
	}

	if strings.Contains(strings.ToUpper(trimmed), "RETURNING") {
		return kindReturning
	}
	return kindExec
}

// normalizeValue maps driver values onto JSON-friendly document values
func normalizeValue(v any, declType string) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case int64:
		if strings.EqualFold(declType, "BOOLEAN") || strings.EqualFold(declType, "BOOL") {
			return val != 0
		}
		return val
	default:
		return val
	}
}
