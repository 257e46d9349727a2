package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Handle is the inbound event boundary. Every recognized or unrecognized
// event type acknowledges with 200; only an unparseable body is an error,
// and business-logic failures never become a 5xx to the sender.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Error processing webhook")
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")

	message, err := h.service.Handle(ctx, eventType, body)
	if err != nil {
		slog.ErrorContext(ctx, "error processing webhook", "event_type", eventType, "error", err)
		h.writeError(w, "Error processing webhook")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
