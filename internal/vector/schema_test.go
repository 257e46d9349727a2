package vector

import (
	"context"
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	CreatedClass    *models.Class
	ExistingClass   *models.Class
	AddedProperties []*models.Property
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	return m.ExistingClass != nil, nil
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return m.ExistingClass, nil
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	m.AddedProperties = append(m.AddedProperties, property)
	return nil
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := &MockSchemaClient{}
	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass == nil {
		t.Fatal("Class not created")
	}
	if client.CreatedClass.Class != ClassName {
		t.Errorf("Class name = %s, expected %s", client.CreatedClass.Class, ClassName)
	}
	if client.CreatedClass.MultiTenancyConfig == nil || !client.CreatedClass.MultiTenancyConfig.Enabled {
		t.Error("Multi-tenancy not enabled on created class")
	}

	expectedProps := map[string]string{
		"docId":    "string",
		"tenantId": "string",
		"path":     "string",
		"content":  "text",
	}

	found := make(map[string]bool)
	for _, prop := range client.CreatedClass.Properties {
		expectedType, ok := expectedProps[prop.Name]
		if !ok {
			t.Errorf("Unexpected property %s", prop.Name)
			continue
		}
		found[prop.Name] = true
		if len(prop.DataType) == 0 || prop.DataType[0] != expectedType {
			t.Errorf("Property %s has wrong DataType: %v (expected %s)", prop.Name, prop.DataType, expectedType)
		}
	}
	for name := range expectedProps {
		if !found[name] {
			t.Errorf("Property %s missing from created class", name)
		}
	}
}

func TestEnsureSchema_BackfillsMissingProperties(t *testing.T) {
	client := &MockSchemaClient{
		ExistingClass: &models.Class{
			Class: ClassName,
			Properties: []*models.Property{
				{Name: "docId", DataType: []string{"string"}},
				{Name: "tenantId", DataType: []string{"string"}},
			},
		},
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass != nil {
		t.Error("Class recreated despite existing")
	}

	added := make(map[string]bool)
	for _, p := range client.AddedProperties {
		added[p.Name] = true
	}
	if !added["path"] || !added["content"] {
		t.Errorf("Missing properties not backfilled, added: %v", added)
	}
	if added["docId"] || added["tenantId"] {
		t.Error("Existing properties re-added")
	}
}
