package indexing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hreviewer/backend/features/indexing"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

func TestHandler_Index(t *testing.T) {
	store := &collectingStore{}
	handler := indexing.NewHandler(indexing.NewService(stubEmbedder{}, store))

	body := `{"tenant_id":"repo-42","files":[{"path":"a.go","content":"package a"}]}`
	req := httptest.NewRequest("POST", "/index", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data indexing.Report `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Indexed)
	assert.Equal(t, 0, resp.Data.Skipped)
	assert.Len(t, store.batches, 1)
}

func TestHandler_Index_MissingTenant(t *testing.T) {
	handler := indexing.NewHandler(indexing.NewService(stubEmbedder{}, &collectingStore{}))

	req := httptest.NewRequest("POST", "/index", strings.NewReader(`{"files":[]}`))
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_Index_BadJSON(t *testing.T) {
	handler := indexing.NewHandler(indexing.NewService(stubEmbedder{}, &collectingStore{}))

	req := httptest.NewRequest("POST", "/index", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	handler.Index(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
