package model

// Version constants for the archive schema and the engine.
const (
	// ArchiveVersion is the archive layout version.
	ArchiveVersion = "1"

	// EngineVersion is the syscov engine version.
	EngineVersion = "0.1.0"
)
