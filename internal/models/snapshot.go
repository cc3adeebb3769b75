package models

import "time"

// CurrentSnapshotVersion is the envelope version written by this build.
const CurrentSnapshotVersion = "2"

// SnapshotData is the payload section of a snapshot.
type SnapshotData struct {
	Websites []Website `json:"websites"`
	Tags     []Tag     `json:"tags"`
	Settings Settings  `json:"settings"`
}

// Snapshot is the versioned envelope used for persistence and export/import.
type Snapshot struct {
	Version   string       `json:"version"`
	Data      SnapshotData `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}
