package task

// Statements issued against the tasks collection
const (
	querySelectAll    = "SELECT * FROM tasks ORDER BY _id"
	querySelectActive = "SELECT * FROM tasks WHERE NOT deleted ORDER BY _id"
	querySelectByID   = "SELECT * FROM tasks WHERE _id = :id AND NOT deleted"

	// instr is case sensitive, matching exact id fragments
	querySelectBySubstring = "SELECT * FROM tasks WHERE instr(_id, :substring) > 0 AND NOT deleted ORDER BY _id"

	queryInsert = `INSERT INTO tasks (_id, title, done, deleted)
		VALUES (:id, :title, :done, 0) RETURNING _id`

	queryUpdate = `UPDATE tasks SET title = :title, done = :done, deleted = :deleted
		WHERE _id = :id RETURNING _id`

	queryUpdateDone   = "UPDATE tasks SET done = :done WHERE _id = :id RETURNING _id"
	queryUpdateTitle  = "UPDATE tasks SET title = :title WHERE _id = :id RETURNING _id"
	querySoftDelete   = "UPDATE tasks SET deleted = 1 WHERE _id = :id RETURNING _id"
	queryEvictDeleted = "DELETE FROM tasks WHERE deleted RETURNING _id"
)
