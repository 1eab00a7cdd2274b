package ir

// Version constants for the storage schema and engine.
const (
	// SchemaVersion is the PRAGMA user_version written by the store.
	SchemaVersion = 1

	// EngineVersion is the cypherlite engine version.
	EngineVersion = "0.1.0"
)
