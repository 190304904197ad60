package domain

import "time"

// BackupMetadata describes one snapshot artifact. Counts are -1 when
// the artifact was only listed and not downloaded.
type BackupMetadata struct {
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
	ProjectCount int       `json:"projectCount"`
	TaskCount    int       `json:"taskCount"`
	Skipped      bool      `json:"skipped,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// Snapshot is the payload written to the blob store by a backup run.
type Snapshot struct {
	ExportDate time.Time  `json:"exportDate"`
	Projects   []*Project `json:"projects"`
	Tasks      []*Task    `json:"tasks"`
}
