package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hreviewer/backend/features/webhook"
)

func TestParseEvent_Ping(t *testing.T) {
	// Ping deliveries may carry an empty body.
	event, err := webhook.ParseEvent("ping", nil)
	assert.NoError(t, err)
	assert.IsType(t, webhook.PingEvent{}, event)
}

func TestParseEvent_PullRequest(t *testing.T) {
	body := `{
		"action": "opened",
		"pull_request": {"number": 17},
		"repository": {"name": "widgets", "owner": {"login": "acme"}}
	}`

	event, err := webhook.ParseEvent("pull_request", []byte(body))
	assert.NoError(t, err)

	pr, ok := event.(webhook.PullRequestEvent)
	assert.True(t, ok)
	assert.Equal(t, "opened", pr.Action)
	assert.Equal(t, "acme", pr.Owner)
	assert.Equal(t, "widgets", pr.RepoName)
	assert.Equal(t, 17, pr.PRNumber)
}

func TestParseEvent_IssueComment(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		isPR   bool
	}{
		{
			name: "pull request comment",
			body: `{
				"action": "created",
				"issue": {"number": 17, "pull_request": {"url": "https://api.github.com/repos/acme/widgets/pulls/17"}},
				"comment": {"body": "/hreviewer summary"},
				"repository": {"name": "widgets", "owner": {"login": "acme"}}
			}`,
			isPR: true,
		},
		{
			name: "plain issue comment",
			body: `{
				"action": "created",
				"issue": {"number": 4},
				"comment": {"body": "any update?"},
				"repository": {"name": "widgets", "owner": {"login": "acme"}}
			}`,
			isPR: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := webhook.ParseEvent("issue_comment", []byte(tt.body))
			assert.NoError(t, err)

			ic, ok := event.(webhook.IssueCommentEvent)
			assert.True(t, ok)
			assert.Equal(t, tt.isPR, ic.IsPullRequest)
			assert.Equal(t, "acme", ic.Owner)
			assert.Equal(t, "widgets", ic.RepoName)
		})
	}
}

func TestParseEvent_UnknownTypeAccepted(t *testing.T) {
	event, err := webhook.ParseEvent("workflow_run", []byte(`{"action": "completed"}`))
	assert.NoError(t, err)
	assert.Equal(t, webhook.OtherEvent{Type: "workflow_run"}, event)
}

func TestParseEvent_FailsClosed(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		body      string
	}{
		{name: "not json", eventType: "pull_request", body: `{broken`},
		{name: "unknown type bad json", eventType: "workflow_run", body: `not json at all`},
		{name: "pr missing action", eventType: "pull_request", body: `{"pull_request": {"number": 1}, "repository": {"name": "r", "owner": {"login": "o"}}}`},
		{name: "pr missing number", eventType: "pull_request", body: `{"action": "opened", "repository": {"name": "r", "owner": {"login": "o"}}}`},
		{name: "pr missing repository", eventType: "pull_request", body: `{"action": "opened", "pull_request": {"number": 1}}`},
		{name: "pr missing owner login", eventType: "pull_request", body: `{"action": "opened", "pull_request": {"number": 1}, "repository": {"name": "r", "owner": {}}}`},
		{name: "comment missing issue", eventType: "issue_comment", body: `{"action": "created", "comment": {"body": "x"}, "repository": {"name": "r", "owner": {"login": "o"}}}`},
		{name: "comment missing comment", eventType: "issue_comment", body: `{"action": "created", "issue": {"number": 1}, "repository": {"name": "r", "owner": {"login": "o"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := webhook.ParseEvent(tt.eventType, []byte(tt.body))
			assert.ErrorIs(t, err, webhook.ErrMalformedPayload)
		})
	}
}
