package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	wstore "hreviewer/backend/internal/adapter/weaviate"
	"hreviewer/backend/internal/app"
	"hreviewer/backend/internal/config"
	"hreviewer/backend/internal/testutils"
	"hreviewer/backend/internal/vector"
)

type smokeEmbedder struct{}

func (smokeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type smokeGenerator struct{}

func (smokeGenerator) TriggerReview(ctx context.Context, owner, repoName string, prNumber int) error {
	return nil
}

func (smokeGenerator) TriggerSummary(ctx context.Context, owner, repoName string, prNumber int) error {
	return nil
}

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	// 1. Start Infrastructure
	db := testutils.StartPostgres(t)
	wClient := testutils.StartWeaviate(t)
	producer := testutils.StartNSQ(t)

	ctx := context.Background()
	require.NoError(t, vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(wClient)))

	// 2. Build App against the real infrastructure
	cfg := &config.Config{
		BotName:      "hreviewer",
		ServerPort:   8081,
		QueryLogPath: filepath.Join(t.TempDir(), "query.log"),
	}

	a, err := app.New(cfg, db, wstore.NewStore(wClient), smokeEmbedder{}, smokeGenerator{}, producer)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	// 3. Health Check
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 4. Webhook round trip
	req, err := http.NewRequest("POST", srv.URL+"/webhooks/github", bytes.NewReader(nil))
	require.NoError(t, err)
	req.Header.Set("X-GitHub-Event", "ping")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
