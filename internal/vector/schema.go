package vector

import (
	"context"
	"errors"

	"github.com/weaviate/weaviate/entities/models"
)

// ErrGatewayUnavailable marks a failed call to the vector index gateway.
// It is fatal for the current batch or query and is not retried here.
var ErrGatewayUnavailable = errors.New("vector gateway unavailable")

// ClassName is the Weaviate class holding one embedded record per indexed
// repository file.
const ClassName = "CodeFile"

// SchemaClient defines the interface for Weaviate schema operations.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema creates the CodeFile class if missing and backfills any
// properties added since the class was first created.
//
// The class is multi-tenant: every record lives in the tenant partition named
// after its repository, which is what makes cross-tenant leakage structurally
// impossible for namespace-scoped queries.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "docId",
			DataType: []string{"string"}, // deterministic record key (exact match)
		},
		{
			Name:     "tenantId",
			DataType: []string{"string"},
		},
		{
			Name:     "path",
			DataType: []string{"string"},
		},
		{
			Name:     "content",
			DataType: []string{"text"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "An embedded repository file",
			Vectorizer:  "none",
			Properties:  properties,
			MultiTenancyConfig: &models.MultiTenancyConfig{
				Enabled:              true,
				AutoTenantCreation:   true,
				AutoTenantActivation: true,
			},
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return err
			}
		}
	}

	return nil
}
