package models

// ============================================================================
// COLLECTION CONSTANTS
// ============================================================================

// TasksCollection is the name of the only collection the application uses
const TasksCollection = "tasks"

// DefaultMaxResults bounds the number of documents a single query returns
const DefaultMaxResults = 1000

// MinTaskIDSubstring is the shortest id fragment the CLI accepts for lookups
const MinTaskIDSubstring = 5

// ============================================================================
// DEMO DATA
// ============================================================================

// InitialTasks are the fixed demo tasks seeded on first launch.
// Their ids are stable so that seeding from several peers converges.
var InitialTasks = []Task{
	{ID: "50191411-4C46-4940-8B72-5F8017A04FA7", Title: "Buy groceries"},
	{ID: "6DA283DA-8CFE-4526-A6FA-D385089364E5", Title: "Clean the kitchen"},
	{ID: "5303DDF8-0E72-4FEB-9E82-4B007E5797F0", Title: "Schedule dentist appointment"},
	{ID: "38411F1B-6B49-4346-90C3-0B16CE97E174", Title: "Pay bills"},
}
