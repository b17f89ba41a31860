package models

// SyncState describes whether change propagation is running for a session
type SyncState string

const (
	SyncNotStarted SyncState = "not-started"
	SyncActive     SyncState = "syncing"
	SyncStopped    SyncState = "stopped"
)
