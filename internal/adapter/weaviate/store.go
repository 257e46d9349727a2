package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"hreviewer/backend/features/indexing"
	"hreviewer/backend/internal/retrieval"
	"hreviewer/backend/internal/vector"
)

// recordNamespace seeds the deterministic object UUIDs. Weaviate requires
// UUID identifiers, so the docId key is hashed into one; the same
// (tenantId, path) always yields the same UUID, making batch writes upserts.
var recordNamespace = uuid.MustParse("8a6e0804-2bd0-4672-b79d-d97027f9071a")

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// ObjectID returns the deterministic Weaviate UUID for a record key.
func ObjectID(docID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(recordNamespace, []byte(docID)).String())
}

func (s *Store) UpsertBatch(ctx context.Context, records []indexing.Record) error {
	objects := make([]*models.Object, 0, len(records))
	for _, r := range records {
		objects = append(objects, &models.Object{
			Class:  vector.ClassName,
			ID:     ObjectID(r.DocID),
			Tenant: r.TenantID,
			Vector: r.Vector,
			Properties: map[string]interface{}{
				"docId":    r.DocID,
				"tenantId": r.TenantID,
				"path":     r.Path,
				"content":  r.Content,
			},
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().
		WithObjects(objects...).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrGatewayUnavailable, err)
	}

	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("%w: object %s: %s", vector.ErrGatewayUnavailable, obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}

	return nil
}

// QueryByTenant runs a similarity query constrained by a tenantId metadata
// filter on top of the tenant partition.
func (s *Store) QueryByTenant(ctx context.Context, vec []float32, tenantID string, limit int) ([]retrieval.SearchResult, error) {
	where := filters.Where().
		WithPath([]string{"tenantId"}).
		WithOperator(filters.Equal).
		WithValueString(tenantID)

	return s.query(ctx, vec, tenantID, where, limit)
}

// QueryByNamespace runs a similarity query scoped purely by the namespace
// partition.
func (s *Store) QueryByNamespace(ctx context.Context, vec []float32, namespace string, limit int) ([]retrieval.SearchResult, error) {
	return s.query(ctx, vec, namespace, nil, limit)
}

func (s *Store) query(ctx context.Context, vec []float32, tenant string, where *filters.WhereBuilder, limit int) ([]retrieval.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "path"},
		{Name: "content"},
		{Name: "tenantId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	builder := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithTenant(tenant).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...)
	if where != nil {
		builder = builder.WithWhere(where)
	}

	res, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrGatewayUnavailable, err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql error: %v", vector.ErrGatewayUnavailable, res.Errors)
	}

	var results []retrieval.SearchResult
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	rows, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return results, nil
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		result := retrieval.SearchResult{
			Metadata: make(map[string]interface{}),
		}
		if content, ok := props["content"].(string); ok {
			result.Content = content
		}
		if path, ok := props["path"].(string); ok {
			result.Path = path
			result.Metadata["path"] = path
		}
		if tenantID, ok := props["tenantId"].(string); ok {
			result.TenantID = tenantID
			result.Metadata["tenantId"] = tenantID
		}
		if docID, ok := props["docId"].(string); ok {
			result.Metadata["docId"] = docID
		}

		// nearVector reports cosine distance; flip it into a similarity
		// score so higher still means closer.
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				result.Score = float32(1 - distance)
			}
		}

		results = append(results, result)
	}

	return results, nil
}
