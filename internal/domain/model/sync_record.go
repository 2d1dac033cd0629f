package model

import "github.com/google/uuid"

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

type SyncRecord struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submissionId"` // Weak reference, not enforced after eviction
	Timestamp    int64      `json:"timestamp"`
	Status       SyncStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
	CommitURL    string     `json:"commitUrl,omitempty"`
}

func NewSyncRecordID() string {
	return "sync_" + uuid.NewString()
}

// SyncResult is what the remote sync client reports for one attempt.
type SyncResult struct {
	Success   bool   `json:"success"`
	CommitURL string `json:"commitUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SyncOutcome is returned to the watcher for a detected submission. Synced is
// false both for skipped and failed attempts; Reason is set only when skipped.
type SyncOutcome struct {
	Synced    bool   `json:"synced"`
	Reason    string `json:"reason,omitempty"`
	CommitURL string `json:"commitUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}
