// Package converters provides conversion between store documents, the JSON
// boundary representation and the models.Task domain type.
//
// All conversions handle:
// - Missing fields (title defaults to "", done and deleted to false)
// - Store coercions (SQLite booleans surfacing as int64 0/1)
//
// Example usage:
//
//	// Converting a query result row
//	task := converters.TaskFromDocument(doc)
//
//	// Converting to the JSON boundary representation
//	s, err := converters.TaskToJSON(task)
package converters

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/thenoetrevino/tasks/internal/models"
)

// taskDocument is the JSON boundary shape of a task.
// The _id key is omitted when the task has not been assigned an id yet.
type taskDocument struct {
	Title   string `json:"title"`
	Done    bool   `json:"done"`
	Deleted bool   `json:"deleted"`
	ID      string `json:"_id,omitempty"`
}

// TaskToJSON converts a task to its JSON boundary representation.
func TaskToJSON(t models.Task) (string, error) {
	data, err := sonic.ConfigStd.Marshal(taskDocument{
		Title:   t.Title,
		Done:    t.Done,
		Deleted: t.Deleted,
		ID:      t.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}
	return string(data), nil
}

// TaskFromJSON parses a JSON boundary document into a task.
// Missing fields take their zero values.
func TaskFromJSON(data string) (models.Task, error) {
	var doc taskDocument
	if err := sonic.ConfigStd.UnmarshalFromString(data, &doc); err != nil {
		return models.Task{}, fmt.Errorf("failed to decode task: %w", err)
	}
	return models.Task{
		ID:      doc.ID,
		Title:   doc.Title,
		Done:    doc.Done,
		Deleted: doc.Deleted,
	}, nil
}

// TaskFromDocument converts a store document into a task.
//
// Unknown keys are ignored. Values of the wrong type are treated as missing.
func TaskFromDocument(doc map[string]any) models.Task {
	return models.Task{
		ID:      stringField(doc, "_id"),
		Title:   stringField(doc, "title"),
		Done:    boolField(doc, "done"),
		Deleted: boolField(doc, "deleted"),
	}
}

// TasksFromDocuments converts a slice of store documents, preserving order.
func TasksFromDocuments(docs []map[string]any) []models.Task {
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, TaskFromDocument(doc))
	}
	return tasks
}

// TaskToDocument converts a task into the named parameters used by store statements.
func TaskToDocument(t models.Task) map[string]any {
	return map[string]any{
		"_id":     t.ID,
		"title":   t.Title,
		"done":    t.Done,
		"deleted": t.Deleted,
	}
}

func stringField(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func boolField(doc map[string]any, key string) bool {
	switch v := doc[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}
