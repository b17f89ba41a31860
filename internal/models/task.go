package models

// Task represents a single to-do item in the tasks collection
type Task struct {
	ID      string `json:"_id,omitempty"`
	Title   string `json:"title"`
	Done    bool   `json:"done"`
	Deleted bool   `json:"deleted"`
}

// GetID returns the task id, used by quiet CLI output
func (t Task) GetID() string {
	return t.ID
}

// Status renders the completion marker used by list output
func (t Task) Status() string {
	if t.Done {
		return "X"
	}
	return "O"
}
