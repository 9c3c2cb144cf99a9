package rpc

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/alr-main/better-beans-server/internal/domain"
)

func TestFlavorQueryFromParams_ArrayTags(t *testing.T) {
	q, err := flavorQueryFromParams(json.RawMessage(
		`{"flavor_tags": ["Chocolate", "cherry"], "max_results": 5, "offset": 2}`,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := q.Tags(); !reflect.DeepEqual(got, []string{"chocolate", "cherry"}) {
		t.Errorf("tags: got %v", got)
	}
	if q.MaxResults() != 5 {
		t.Errorf("max results: got %d, want 5", q.MaxResults())
	}
	if q.Offset() != 2 {
		t.Errorf("offset: got %d, want 2", q.Offset())
	}
}

func TestFlavorQueryFromParams_CommaString(t *testing.T) {
	q, err := flavorQueryFromParams(json.RawMessage(`{"flavor_tags": "chocolate, cherry ,nutty"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Tags(); !reflect.DeepEqual(got, []string{"chocolate", "cherry", "nutty"}) {
		t.Errorf("tags: got %v", got)
	}
}

func TestFlavorQueryFromParams_BracketedKey(t *testing.T) {
	q, err := flavorQueryFromParams(json.RawMessage(`{"flavor_tags[]": ["floral"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Tags(); !reflect.DeepEqual(got, []string{"floral"}) {
		t.Errorf("tags: got %v", got)
	}
}

func TestFlavorQueryFromParams_CamelKeys(t *testing.T) {
	q, err := flavorQueryFromParams(json.RawMessage(
		`{"flavorTags": ["berry"], "maxResults": "7", "bypassCache": "true", "similarityThreshold": 0.3}`,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.MaxResults() != 7 {
		t.Errorf("max results: got %d, want 7", q.MaxResults())
	}
	if !q.BypassCache() {
		t.Error("expected bypass cache")
	}
	if q.Threshold() != 0.3 {
		t.Errorf("threshold: got %v, want 0.3", q.Threshold())
	}
}

func TestFlavorQueryFromParams_MixedScalarArray(t *testing.T) {
	q, err := flavorQueryFromParams(json.RawMessage(`{"tags": ["cocoa", 85]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Tags(); !reflect.DeepEqual(got, []string{"cocoa", "85"}) {
		t.Errorf("tags: got %v", got)
	}
}

func TestFlavorQueryFromParams_Invalid(t *testing.T) {
	cases := map[string]string{
		"no tags":          `{}`,
		"empty tags":       `{"flavor_tags": [" ", ""]}`,
		"non-object":       `[1, 2]`,
		"bad tags type":    `{"flavor_tags": {"a": 1}}`,
		"bad max results":  `{"flavor_tags": ["a"], "max_results": "lots"}`,
		"bad bypass":       `{"flavor_tags": ["a"], "bypass_cache": "maybe"}`,
		"object tag entry": `{"flavor_tags": [{"tag": "a"}]}`,
	}

	for name, raw := range cases {
		if _, err := flavorQueryFromParams(json.RawMessage(raw)); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("%s: got %v, want ErrInvalidQuery", name, err)
		}
	}
}

func TestProductFiltersFromParams(t *testing.T) {
	f, err := productFiltersFromParams(json.RawMessage(
		`{"query": "ethiopia", "roasterId": "r-1", "roast_level": "light", "limit": 30}`,
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Query != "ethiopia" || f.RoasterID != "r-1" || f.RoastLevel != "light" || f.Limit != 30 {
		t.Errorf("filters: got %+v", f)
	}
}

func TestRoasterSearchFromParams_Defaults(t *testing.T) {
	p, err := roasterSearchFromParams(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Query != "" || p.Limit != 0 || p.Offset != 0 {
		t.Errorf("expected zero params, got %+v", p)
	}
}

func TestIDFromParams(t *testing.T) {
	id, err := idFromParams(json.RawMessage(`{"product_id": " p-42 "}`), "product_id", "productId", "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "p-42" {
		t.Errorf("id: got %q, want p-42", id)
	}

	if _, err := idFromParams(json.RawMessage(`{}`), "product_id", "id"); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("missing id: got %v, want ErrInvalidQuery", err)
	}
}
