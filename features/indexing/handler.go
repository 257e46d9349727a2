package indexing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hreviewer/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Index accepts a tenant's file set from the repository-fetching collaborator
// and runs the pipeline synchronously, reporting how much was indexed.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		TenantID string           `json:"tenant_id"`
		Files    []RepositoryFile `json:"files"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.TenantID == "" {
		h.writeError(w, "VALIDATION_ERROR", "tenant_id is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.Index(ctx, req.TenantID, req.Files)
	if err != nil {
		slog.ErrorContext(ctx, "indexing run failed", "tenant_id", req.TenantID, "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		h.writeError(w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": report}); err != nil {
		slog.Error("failed to encode response", "error", err)
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
