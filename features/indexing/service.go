package indexing

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// MaxPayloadChars bounds the text sent to the embedding model per file.
	// Truncation is a hard cutoff, not sentence-aware.
	MaxPayloadChars = 8000

	// UpsertBatchSize bounds how many records go into one gateway upsert.
	UpsertBatchSize = 100
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	UpsertBatch(ctx context.Context, records []Record) error
}

// Report summarizes an indexing run. Per-file embedding failures are counted
// as skipped, never surfaced as errors.
type Report struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

type Service struct {
	embedder Embedder
	store    VectorStore
}

func NewService(e Embedder, s VectorStore) *Service {
	return &Service{embedder: e, store: s}
}

// Index embeds every file and flushes the records to the vector index in
// fixed-size batches. Files are embedded one at a time; a failed embedding
// skips that file and continues, a failed batch upsert aborts the remaining
// batches.
func (s *Service) Index(ctx context.Context, tenantID string, files []RepositoryFile) (Report, error) {
	var report Report
	records := make([]Record, 0, len(files))

	for _, file := range files {
		payload := buildPayload(file)

		vector, err := s.embedder.Embed(ctx, payload)
		if err != nil {
			slog.ErrorContext(ctx, "embedding failed, skipping file", "tenant_id", tenantID, "path", file.Path, "error", err)
			report.Skipped++
			continue
		}

		records = append(records, Record{
			DocID:    DocID(tenantID, file.Path),
			TenantID: tenantID,
			Path:     file.Path,
			Content:  payload,
			Vector:   vector,
		})
	}

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		if err := s.store.UpsertBatch(ctx, records[start:end]); err != nil {
			return report, fmt.Errorf("upsert batch starting at %d: %w", start, err)
		}
		report.Indexed += end - start
	}

	slog.InfoContext(ctx, "indexing complete", "tenant_id", tenantID, "indexed", report.Indexed, "skipped", report.Skipped)
	return report, nil
}

// buildPayload prefixes the content with the file path so the embedding model
// gets lexical anchoring on the file's identity, then truncates.
func buildPayload(file RepositoryFile) string {
	payload := fmt.Sprintf("File : %s\n\n%s", file.Path, file.Content)
	runes := []rune(payload)
	if len(runes) > MaxPayloadChars {
		return string(runes[:MaxPayloadChars])
	}
	return payload
}
