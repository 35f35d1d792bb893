package offline

import "time"

// DefaultMaxRetries bounds resend attempts for a queued submission.
const DefaultMaxRetries = 5

// QueuedSubmission is a durably persisted representation of a failed network
// submission awaiting resend. The record is deleted exactly when it either
// succeeds or its retry budget is exhausted.
type QueuedSubmission struct {
	ID         int64             `json:"id"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
	Timestamp  time.Time         `json:"timestamp"`
	RetryCount int               `json:"retryCount"`
	MaxRetries int               `json:"maxRetries"`
}

// Store is the durable local record store for failed submissions. IDs are
// store-assigned, unique and monotonic. Every operation is a single atomic
// store transaction; a crash mid-write must never leave a partially written
// record visible.
type Store interface {
	Enqueue(record *QueuedSubmission) (int64, error)
	ListAll() ([]QueuedSubmission, error)
	Remove(id int64) error
	Update(id int64, partial map[string]interface{}) error
}
