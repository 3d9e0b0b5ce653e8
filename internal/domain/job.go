package domain

import "time"

// JobStatus enumerates the lifecycle states of an asynchronous provider job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further polling is required.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// GenerationJob mirrors a provider-side prediction. It is only mutated by
// re-fetching the provider status.
type GenerationJob struct {
	ID        string
	Status    JobStatus
	OutputURL string
	Error     string
}

// RecordStatus enumerates outcomes kept in the generation history.
type RecordStatus string

const (
	RecordStatusSucceeded RecordStatus = "succeeded"
	RecordStatusRejected  RecordStatus = "rejected"
	RecordStatusFailed    RecordStatus = "failed"
	RecordStatusTimedOut  RecordStatus = "timed_out"
	RecordStatusError     RecordStatus = "error"
)

// GenerationRecord is one audited render attempt.
type GenerationRecord struct {
	ID           string       `json:"id"`
	RequestID    string       `json:"request_id"`
	StyleKey     string       `json:"style"`
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	Status       RecordStatus `json:"status"`
	ImageURL     string       `json:"image_url,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
	DurationMS   int64        `json:"duration_ms"`
	CreatedAt    time.Time    `json:"created_at"`
}
