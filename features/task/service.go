package task

import (
	"context"
	"encoding/json"
	"fmt"

	"hreviewer/backend/internal/middleware"
	"hreviewer/backend/internal/worker"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Record persists a pending task row for one trigger key. The row exists
// before the queue message so a consumed task always has somewhere to report
// its outcome.
func (s *Service) Record(ctx context.Context, kind, owner, repoName string, prNumber int) (*Task, error) {
	t := &Task{
		Kind:     kind,
		Owner:    owner,
		RepoName: repoName,
		PRNumber: prNumber,
		Status:   StatusPending,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) MarkDone(ctx context.Context, id string) error {
	return s.repo.UpdateStatus(ctx, id, StatusDone, "")
}

func (s *Service) MarkFailed(ctx context.Context, id, errMsg string) error {
	return s.repo.UpdateStatus(ctx, id, StatusFailed, errMsg)
}

func (s *Service) ListFailed(ctx context.Context) ([]Task, error) {
	return s.repo.ListFailed(ctx)
}

// Retry republishes a failed task to its queue topic and resets the row.
func (s *Service) Retry(ctx context.Context, id string) error {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	topic, err := topicFor(t.Kind)
	if err != nil {
		return err
	}

	payload := worker.TaskPayload{
		TaskID:        t.ID,
		Owner:         t.Owner,
		RepoName:      t.RepoName,
		PRNumber:      t.PRNumber,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := s.pub.Publish(topic, body); err != nil {
		return err
	}

	return s.repo.MarkRetried(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func topicFor(kind string) (string, error) {
	switch kind {
	case KindReview:
		return worker.TopicReview, nil
	case KindSummary:
		return worker.TopicSummary, nil
	default:
		return "", fmt.Errorf("unknown task kind %q", kind)
	}
}
