package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmbeddingUnavailable marks a failed embedding model call. On the query
// path this is fatal for the call; during indexing the pipeline recovers
// per-file instead.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// DefaultTopK bounds similarity queries that don't specify a result count.
const DefaultTopK = 5

type SearchResult struct {
	Content  string                 `json:"content"`
	Path     string                 `json:"path"`
	TenantID string                 `json:"tenantId"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SearchOptions struct {
	TopK      *int
	Namespace string
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	QueryByTenant(ctx context.Context, vector []float32, tenantID string, limit int) ([]SearchResult, error)
	QueryByNamespace(ctx context.Context, vector []float32, namespace string, limit int) ([]SearchResult, error)
}

type Service struct {
	embedder Embedder
	store    VectorStore
	logger   *QueryLogger
}

func NewService(e Embedder, s VectorStore, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, logger: l}
}

// Retrieve answers a similarity query scoped by tenant and returns only the
// textual content of each match, empty snippets filtered out. Results keep
// the gateway's descending-score order; nothing is re-ranked here.
func (s *Service) Retrieve(ctx context.Context, query, tenantID string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	start := time.Now()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.QueryByTenant(ctx, vec, tenantID, topK)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(results))
	for _, r := range results {
		if r.Content != "" {
			contents = append(contents, r.Content)
		}
	}

	s.log(ctx, query, len(contents), time.Since(start))
	return contents, nil
}

// SearchSimilar is the structured form: matches carry path, content, tenant
// and raw score for callers that need provenance. Isolation comes from the
// namespace partition rather than a metadata filter.
func (s *Service) SearchSimilar(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if opts.Namespace == "" {
		return nil, errors.New("namespace is required")
	}

	topK := DefaultTopK
	if opts.TopK != nil && *opts.TopK > 0 {
		topK = *opts.TopK
	}

	start := time.Now()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.QueryByNamespace(ctx, vec, opts.Namespace, topK)
	if err != nil {
		return nil, err
	}

	s.log(ctx, query, len(results), time.Since(start))
	return results, nil
}

func (s *Service) log(ctx context.Context, query string, numResults int, duration time.Duration) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, QueryLogEntry{
		Query:      query,
		NumResults: numResults,
		Duration:   duration,
	})
}
