package models

import "time"

// BurnJob is an asynchronous burn request. The segment set is read from
// the store when the worker picks the job up, so edits made between
// enqueue and execution are honored; the style is frozen at enqueue.
type BurnJob struct {
	ID          string     `json:"id" db:"id"`
	VideoID     string     `json:"video_id" db:"video_id"`
	Status      string     `json:"status" db:"status"`
	Style       Style      `json:"style" db:"style"`
	ErrorMsg    string     `json:"error_msg,omitempty" db:"error_msg"`
	ArtifactKey string     `json:"artifact_key,omitempty" db:"artifact_key"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// BurnJob status constants
const (
	BurnJobStatusQueued     = "queued"
	BurnJobStatusProcessing = "processing"
	BurnJobStatusCompleted  = "completed"
	BurnJobStatusFailed     = "failed"
	BurnJobStatusCancelled  = "cancelled"
)
