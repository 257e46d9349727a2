package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nsqio/go-nsq"

	"hreviewer/backend/internal/middleware"
)

type Generator interface {
	TriggerReview(ctx context.Context, owner, repoName string, prNumber int) error
	TriggerSummary(ctx context.Context, owner, repoName string, prNumber int) error
}

type TaskTracker interface {
	MarkDone(ctx context.Context, taskID string) error
	MarkFailed(ctx context.Context, taskID, errMsg string) error
}

// TaskConsumer drains the dispatch topics and invokes the generation
// collaborator. The webhook acknowledged long ago; outcomes land in the task
// store and logs, never in an HTTP response.
type TaskConsumer struct {
	generator Generator
	tracker   TaskTracker
}

func NewTaskConsumer(g Generator, t TaskTracker) *TaskConsumer {
	return &TaskConsumer{generator: g, tracker: t}
}

func (c *TaskConsumer) HandleReview(m *nsq.Message) error {
	return c.handle(m, "review", c.generator.TriggerReview)
}

func (c *TaskConsumer) HandleSummary(m *nsq.Message) error {
	return c.handle(m, "summary", c.generator.TriggerSummary)
}

func (c *TaskConsumer) handle(m *nsq.Message, kind string, trigger func(context.Context, string, string, int) error) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload TaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid task payload", "kind", kind, "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	if payload.Owner == "" || payload.RepoName == "" || payload.PRNumber <= 0 {
		slog.ErrorContext(ctx, "missing required task fields, dropping", "kind", kind, "owner", payload.Owner, "repo", payload.RepoName, "pr", payload.PRNumber)
		return nil
	}

	if err := trigger(ctx, payload.Owner, payload.RepoName, payload.PRNumber); err != nil {
		slog.ErrorContext(ctx, "generation trigger failed", "kind", kind, "owner", payload.Owner, "repo", payload.RepoName, "pr", payload.PRNumber, "error", err)
		c.markFailed(ctx, payload.TaskID, err.Error())
		return err // requeue
	}

	if payload.TaskID != "" {
		if err := c.tracker.MarkDone(ctx, payload.TaskID); err != nil {
			slog.WarnContext(ctx, "failed to mark task done", "task_id", payload.TaskID, "error", err)
		}
	}

	slog.InfoContext(ctx, "task completed", "kind", kind, "owner", payload.Owner, "repo", payload.RepoName, "pr", payload.PRNumber)
	return nil
}

func (c *TaskConsumer) markFailed(ctx context.Context, taskID, errMsg string) {
	if taskID == "" {
		return
	}
	if err := c.tracker.MarkFailed(ctx, taskID, errMsg); err != nil {
		slog.WarnContext(ctx, "failed to mark task failed", "task_id", taskID, "error", err)
	}
}
