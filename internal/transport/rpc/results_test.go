package rpc

import (
	"encoding/json"
	"testing"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestMatchToJSON_NoOmittedKeys(t *testing.T) {
	m := marshalToMap(t, matchToJSON(catalog.Match{
		ID:         "p-1",
		Name:       "House Blend",
		Similarity: 0.4,
		Distance:   0.6,
	}))

	wantKeys := []string{
		"id", "name", "roast_level", "process", "description", "price",
		"image_url", "product_url", "flavor_tags", "available", "featured",
		"roaster", "similarity", "distance", "matching_tags",
	}
	for _, key := range wantKeys {
		if _, ok := m[key]; !ok {
			t.Errorf("key %q missing from zero-valued match", key)
		}
	}

	if m["price"] != nil {
		t.Errorf("price: got %v, want null", m["price"])
	}
	if m["roaster"] != nil {
		t.Errorf("roaster: got %v, want null", m["roaster"])
	}
	if tags, ok := m["flavor_tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("flavor_tags: got %v, want empty array", m["flavor_tags"])
	}
	if tags, ok := m["matching_tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("matching_tags: got %v, want empty array", m["matching_tags"])
	}
}

func TestProductToJSON_NoOmittedKeys(t *testing.T) {
	m := marshalToMap(t, productToJSON(catalog.ProductRow{ID: "p-1", Name: "House Blend"}))

	wantKeys := []string{
		"id", "name", "roast_level", "process", "description", "price",
		"image_url", "product_url", "flavor_tags", "available", "featured",
		"roaster", "created_at",
	}
	for _, key := range wantKeys {
		if _, ok := m[key]; !ok {
			t.Errorf("key %q missing from zero-valued product", key)
		}
	}
	if m["price"] != nil || m["roaster"] != nil {
		t.Errorf("price/roaster: got %v/%v, want null/null", m["price"], m["roaster"])
	}
}

func TestRoasterToJSON_NoOmittedKeys(t *testing.T) {
	m := marshalToMap(t, roasterToJSON(catalog.Roaster{ID: "r-1", Name: "Test Roastery"}))

	for _, key := range []string{"id", "name", "location", "description", "website_url", "verified", "created_at"} {
		if _, ok := m[key]; !ok {
			t.Errorf("key %q missing from zero-valued roaster", key)
		}
	}
	if m["location"] != "" {
		t.Errorf("location: got %v, want empty string", m["location"])
	}
}
