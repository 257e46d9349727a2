package worker

// NSQ topics carrying dispatch tasks from the webhook router to the
// generation consumers.
const (
	TopicReview  = "review.task"
	TopicSummary = "summary.task"
)

// TaskPayload is the queue message for one review or summary trigger, keyed
// by (owner, repoName, prNumber). TaskID points at the status-store row so
// the consumer can record the outcome.
type TaskPayload struct {
	TaskID        string `json:"task_id"`
	Owner         string `json:"owner"`
	RepoName      string `json:"repo_name"`
	PRNumber      int    `json:"pr_number"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
