package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls the external review/summary generation service. This side only
// guarantees validated arguments; generation outcome, prompts and timeouts are
// the collaborator's concern.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *Client) TriggerReview(ctx context.Context, owner, repoName string, prNumber int) error {
	return c.trigger(ctx, "/reviews", owner, repoName, prNumber)
}

func (c *Client) TriggerSummary(ctx context.Context, owner, repoName string, prNumber int) error {
	return c.trigger(ctx, "/summaries", owner, repoName, prNumber)
}

func (c *Client) trigger(ctx context.Context, path, owner, repoName string, prNumber int) error {
	reqBody := map[string]interface{}{
		"owner":     owner,
		"repo_name": repoName,
		"pr_number": prNumber,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generator api error: %d", resp.StatusCode)
	}

	return nil
}
