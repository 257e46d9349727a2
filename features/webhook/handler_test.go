package webhook_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hreviewer/backend/features/webhook"
	"hreviewer/backend/internal/command"
)

// slowPublisher proves the acknowledgment doesn't wait on task consumption:
// publishing is a queue write, and even a slow one is all the handler blocks
// on, never the generation work.
type slowPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *slowPublisher) Publish(topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func TestHandler_Ping(t *testing.T) {
	handler := newTestHandler(&slowPublisher{})

	req := httptest.NewRequest("POST", "/webhooks/github", bytes.NewReader(nil))
	req.Header.Set("X-GitHub-Event", "ping")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Pong", resp["message"])
}

func TestHandler_SummaryCommandAcknowledgesQuickly(t *testing.T) {
	pub := &slowPublisher{}
	handler := newTestHandler(pub)

	body := `{
		"action": "created",
		"issue": {"number": 17, "pull_request": {"url": "https://example.test/pr/17"}},
		"comment": {"body": "/hreviewer summary"},
		"repository": {"name": "widgets", "owner": {"login": "acme"}}
	}`

	req := httptest.NewRequest("POST", "/webhooks/github", bytes.NewReader([]byte(body)))
	req.Header.Set("X-GitHub-Event", "issue_comment")
	rec := httptest.NewRecorder()

	start := time.Now()
	handler.Handle(rec, req)
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Event Processes", resp["message"])

	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, []string{"summary.task"}, pub.topics)
}

func TestHandler_MalformedBody(t *testing.T) {
	handler := newTestHandler(&slowPublisher{})

	req := httptest.NewRequest("POST", "/webhooks/github", bytes.NewReader([]byte(`{broken`)))
	req.Header.Set("X-GitHub-Event", "pull_request")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Error processing webhook", resp["error"])
}

func TestHandler_UnknownEventType(t *testing.T) {
	handler := newTestHandler(&slowPublisher{})

	req := httptest.NewRequest("POST", "/webhooks/github", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-GitHub-Event", "release")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func newTestHandler(pub webhook.TaskPublisher) *webhook.Handler {
	rec := new(MockRecorder)
	rec.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("task-x", nil)
	rec.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := webhook.NewService(command.NewParser("hreviewer"), pub, rec)
	return webhook.NewHandler(svc)
}
