package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"hreviewer/backend/internal/middleware"
	"hreviewer/backend/internal/retrieval"
)

type Retriever interface {
	Retrieve(ctx context.Context, query, tenantID string, topK int) ([]string, error)
	SearchSimilar(ctx context.Context, query string, opts retrieval.SearchOptions) ([]retrieval.SearchResult, error)
}

type Handler struct {
	retriever Retriever
}

func NewHandler(r Retriever) *Handler {
	return &Handler{retriever: r}
}

type searchRequest struct {
	Query     string `json:"query"`
	TenantID  string `json:"tenant_id,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	TopK      *int   `json:"top_k,omitempty"`
}

// Search answers a similarity query in one of two isolation forms. With
// tenant_id it returns bare snippets filtered on the tenant; with namespace it
// returns structured matches from that partition. Exactly one must be set.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Query == "" {
		h.writeError(w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}

	switch {
	case req.TenantID != "" && req.Namespace != "":
		h.writeError(w, "VALIDATION_ERROR", "tenant_id and namespace are mutually exclusive", http.StatusBadRequest)
	case req.TenantID != "":
		h.searchByTenant(ctx, w, req)
	case req.Namespace != "":
		h.searchByNamespace(ctx, w, req)
	default:
		h.writeError(w, "VALIDATION_ERROR", "tenant_id or namespace is required", http.StatusBadRequest)
	}
}

func (h *Handler) searchByTenant(ctx context.Context, w http.ResponseWriter, req searchRequest) {
	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
	}

	snippets, err := h.retriever.Retrieve(ctx, req.Query, req.TenantID, topK)
	if err != nil {
		slog.ErrorContext(ctx, "tenant search failed", "tenant_id", req.TenantID, "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		h.writeError(w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeData(ctx, w, map[string]interface{}{
		"data": snippets,
		"meta": map[string]int{"count": len(snippets)},
	})
}

func (h *Handler) searchByNamespace(ctx context.Context, w http.ResponseWriter, req searchRequest) {
	results, err := h.retriever.SearchSimilar(ctx, req.Query, retrieval.SearchOptions{
		TopK:      req.TopK,
		Namespace: req.Namespace,
	})
	if err != nil {
		slog.ErrorContext(ctx, "namespace search failed", "namespace", req.Namespace, "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		h.writeError(w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeData(ctx, w, map[string]interface{}{
		"data": results,
		"meta": map[string]int{"count": len(results)},
	})
}

func (h *Handler) writeData(ctx context.Context, w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
