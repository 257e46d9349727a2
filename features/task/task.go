package task

import "time"

const (
	KindReview  = "review"
	KindSummary = "summary"

	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Task is one dispatched review/summary trigger, tracked so that the
// fire-and-forget webhook acknowledgment doesn't make failures invisible.
type Task struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Owner     string    `json:"owner"`
	RepoName  string    `json:"repo_name"`
	PRNumber  int       `json:"pr_number"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
