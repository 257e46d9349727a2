package webhook

import (
	"context"
	"encoding/json"
	"log/slog"

	"hreviewer/backend/internal/command"
	"hreviewer/backend/internal/middleware"
	"hreviewer/backend/internal/worker"
)

const (
	// MessagePong acknowledges a ping event.
	MessagePong = "Pong"
	// MessageProcessed acknowledges every other handled event.
	MessageProcessed = "Event Processes"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// TaskRecorder tracks dispatched triggers in the status store so queue
// consumers have somewhere to report outcomes.
type TaskRecorder interface {
	Record(ctx context.Context, kind, owner, repoName string, prNumber int) (taskID string, err error)
	MarkFailed(ctx context.Context, taskID, errMsg string) error
}

// Service is the event router: it classifies validated events and dispatches
// review/summary triggers onto the task queue. Dispatch never blocks on the
// generation work; webhook senders expect sub-second acknowledgment.
type Service struct {
	parser    *command.Parser
	publisher TaskPublisher
	tasks     TaskRecorder
}

func NewService(parser *command.Parser, pub TaskPublisher, tasks TaskRecorder) *Service {
	return &Service{parser: parser, publisher: pub, tasks: tasks}
}

// Handle routes one inbound event and returns the acknowledgment message.
// The only error it returns is ErrMalformedPayload; dispatch failures are
// logged and recorded in the task store but never surfaced to the sender,
// who would otherwise retry and duplicate work.
func (s *Service) Handle(ctx context.Context, eventType string, body []byte) (string, error) {
	event, err := ParseEvent(eventType, body)
	if err != nil {
		return "", err
	}

	switch e := event.(type) {
	case PingEvent:
		return MessagePong, nil

	case PullRequestEvent:
		if e.Action == "opened" || e.Action == "synchronize" {
			s.dispatch(ctx, "review", worker.TopicReview, e.Owner, e.RepoName, e.PRNumber)
		}
		return MessageProcessed, nil

	case IssueCommentEvent:
		s.handleComment(ctx, e)
		return MessageProcessed, nil

	default:
		slog.InfoContext(ctx, "ignoring event", "type", eventType)
		return MessageProcessed, nil
	}
}

func (s *Service) handleComment(ctx context.Context, e IssueCommentEvent) {
	if e.Action != "created" {
		return
	}
	if !e.IsPullRequest {
		slog.InfoContext(ctx, "comment is not on a pull request, skipping", "owner", e.Owner, "repo", e.RepoName, "issue", e.IssueNumber)
		return
	}

	cmd := s.parser.Parse(e.Body)
	if cmd == nil {
		return
	}

	switch cmd.Type {
	case command.TypeSummary:
		s.dispatch(ctx, "summary", worker.TopicSummary, e.Owner, e.RepoName, e.IssueNumber)
	case command.TypeReview:
		// Recognized but reserved: the review trigger on comments is wired
		// up by a separate collaborator, not dispatched from here.
		slog.InfoContext(ctx, "review command recognized on comment, no dispatch configured", "owner", e.Owner, "repo", e.RepoName, "pr", e.IssueNumber)
	}
}

func (s *Service) dispatch(ctx context.Context, kind, topic, owner, repoName string, prNumber int) {
	taskID, err := s.tasks.Record(ctx, kind, owner, repoName, prNumber)
	if err != nil {
		// The trigger still goes out; it just won't have a status row.
		slog.WarnContext(ctx, "failed to record task, dispatching untracked", "kind", kind, "error", err)
		taskID = ""
	}

	payload := worker.TaskPayload{
		TaskID:        taskID,
		Owner:         owner,
		RepoName:      repoName,
		PRNumber:      prNumber,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal task payload", "kind", kind, "error", err)
		return
	}

	if err := s.publisher.Publish(topic, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish task", "kind", kind, "topic", topic, "owner", owner, "repo", repoName, "pr", prNumber, "error", err)
		if taskID != "" {
			if markErr := s.tasks.MarkFailed(ctx, taskID, err.Error()); markErr != nil {
				slog.ErrorContext(ctx, "failed to mark task failed", "task_id", taskID, "error", markErr)
			}
		}
		return
	}

	slog.InfoContext(ctx, "task dispatched", "kind", kind, "owner", owner, "repo", repoName, "pr", prNumber, "task_id", taskID)
}
