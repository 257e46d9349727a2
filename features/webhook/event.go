package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks an event body that failed schema validation. It
// is the only condition the webhook sender sees as an error.
var ErrMalformedPayload = errors.New("malformed payload")

// Event is the validated form of one inbound repository event. Construction
// goes through ParseEvent so required-field mismatches fail closed here
// instead of surfacing deep inside handler logic.
type Event interface {
	eventType() string
}

type PingEvent struct{}

type PullRequestEvent struct {
	Action   string
	Owner    string
	RepoName string
	PRNumber int
}

type IssueCommentEvent struct {
	Action        string
	Owner         string
	RepoName      string
	IssueNumber   int
	IsPullRequest bool
	Body          string
}

// OtherEvent covers event types this router doesn't know. They are accepted
// and acknowledged, never rejected: new upstream event types must not break
// existing webhooks.
type OtherEvent struct {
	Type string
}

func (PingEvent) eventType() string         { return "ping" }
func (PullRequestEvent) eventType() string  { return "pull_request" }
func (IssueCommentEvent) eventType() string { return "issue_comment" }
func (e OtherEvent) eventType() string      { return e.Type }

type rawPayload struct {
	Action      string `json:"action"`
	PullRequest *struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Issue *struct {
		Number      int              `json:"number"`
		PullRequest *json.RawMessage `json:"pull_request"`
	} `json:"issue"`
	Comment *struct {
		Body string `json:"body"`
	} `json:"comment"`
	Repository *struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// ParseEvent classifies the payload by the event type header and validates
// the fields the router needs. Ping carries no payload worth parsing and is
// acknowledged as-is.
func ParseEvent(eventType string, body []byte) (Event, error) {
	if eventType == "ping" {
		return PingEvent{}, nil
	}

	var raw rawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch eventType {
	case "pull_request":
		return parsePullRequest(raw)
	case "issue_comment":
		return parseIssueComment(raw)
	default:
		return OtherEvent{Type: eventType}, nil
	}
}

func parsePullRequest(raw rawPayload) (Event, error) {
	if raw.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrMalformedPayload)
	}
	owner, repoName, err := repositoryFields(raw)
	if err != nil {
		return nil, err
	}
	if raw.PullRequest == nil || raw.PullRequest.Number <= 0 {
		return nil, fmt.Errorf("%w: missing pull_request.number", ErrMalformedPayload)
	}

	return PullRequestEvent{
		Action:   raw.Action,
		Owner:    owner,
		RepoName: repoName,
		PRNumber: raw.PullRequest.Number,
	}, nil
}

func parseIssueComment(raw rawPayload) (Event, error) {
	if raw.Action == "" {
		return nil, fmt.Errorf("%w: missing action", ErrMalformedPayload)
	}
	owner, repoName, err := repositoryFields(raw)
	if err != nil {
		return nil, err
	}
	if raw.Issue == nil || raw.Issue.Number <= 0 {
		return nil, fmt.Errorf("%w: missing issue.number", ErrMalformedPayload)
	}
	if raw.Comment == nil {
		return nil, fmt.Errorf("%w: missing comment", ErrMalformedPayload)
	}

	return IssueCommentEvent{
		Action:        raw.Action,
		Owner:         owner,
		RepoName:      repoName,
		IssueNumber:   raw.Issue.Number,
		IsPullRequest: raw.Issue.PullRequest != nil,
		Body:          raw.Comment.Body,
	}, nil
}

func repositoryFields(raw rawPayload) (owner, repoName string, err error) {
	if raw.Repository == nil || raw.Repository.Owner.Login == "" || raw.Repository.Name == "" {
		return "", "", fmt.Errorf("%w: missing repository owner/name", ErrMalformedPayload)
	}
	return raw.Repository.Owner.Login, raw.Repository.Name, nil
}
