package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alr-main/better-beans-server/internal/domain"
	logpkg "github.com/alr-main/better-beans-server/internal/logger"
	"github.com/alr-main/better-beans-server/internal/domain/catalog"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
	flavoruc "github.com/alr-main/better-beans-server/internal/usecase/flavor"
	healthuc "github.com/alr-main/better-beans-server/internal/usecase/health"
	productuc "github.com/alr-main/better-beans-server/internal/usecase/product"
	roasteruc "github.com/alr-main/better-beans-server/internal/usecase/roaster"
)

type mockCatalog struct {
	similarityRows []catalog.ProductRow
	fallbackRows   []catalog.ProductRow
	products       map[string]catalog.ProductRow
	roasters       map[string]catalog.Roaster
	roasterList    []catalog.Roaster
	productList    []catalog.ProductRow
}

func (m *mockCatalog) SearchBySimilarity(
	ctx context.Context, embedding []float32, threshold float64, limit, offset int,
) ([]catalog.ProductRow, error) {
	return m.similarityRows, nil
}

func (m *mockCatalog) FetchFallbackInventory(ctx context.Context, limit int) ([]catalog.ProductRow, error) {
	return m.fallbackRows, nil
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (catalog.ProductRow, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.ProductRow{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) GetRoaster(ctx context.Context, id string) (catalog.Roaster, error) {
	r, ok := m.roasters[id]
	if !ok {
		return catalog.Roaster{}, domain.ErrRoasterNotFound
	}
	return r, nil
}

func (m *mockCatalog) SearchRoasters(
	ctx context.Context, query, location string, limit, offset int,
) ([]catalog.Roaster, error) {
	return m.roasterList, nil
}

func (m *mockCatalog) SearchProducts(
	ctx context.Context, query, roasterID, roastLevel, process string, limit, offset int,
) ([]catalog.ProductRow, error) {
	return m.productList, nil
}

func (m *mockCatalog) ListRoasterProducts(ctx context.Context, roasterID string) ([]catalog.ProductRow, error) {
	return m.productList, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(ctx context.Context, q *domflavor.Query) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type nopCache struct{}

func (nopCache) Get(key string) (catalog.ResultSet, bool) { return catalog.ResultSet{}, false }
func (nopCache) Put(key string, set catalog.ResultSet)    {}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(store *mockCatalog) *Server {
	logger := zap.NewNop()
	resolver := flavoruc.New(store, stubEmbedder{}, nopCache{}, flavoruc.Config{}, logger)
	return NewServer(
		resolver,
		roasteruc.New(store),
		productuc.New(store),
		healthuc.New(stubPinger{}, nil),
	)
}

func testRow(id string, similarity float64) catalog.ProductRow {
	return catalog.ProductRow{
		ID:         id,
		Name:       "Test " + id,
		FlavorTags: []string{"chocolate", "cherry"},
		Available:  true,
		Similarity: similarity,
		Distance:   1 - similarity,
		Roaster:    &catalog.RoasterRef{ID: "r-1", Name: "Test Roastery"},
	}
}

func callRPC(t *testing.T, s *Server, body string) (int, response) {
	t.Helper()

	req := httptest.NewRequest("POST", "/rpc", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	s.HandleRPC(rr, req)

	var resp response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rr.Code, resp
}

func TestHandleRPC_ParseError(t *testing.T) {
	_, resp := callRPC(t, newTestServer(&mockCatalog{}), `{not json`)

	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Errorf("error: got %+v, want code %d", resp.Error, codeParseError)
	}
}

func TestHandleRPC_WrongVersion(t *testing.T) {
	_, resp := callRPC(t, newTestServer(&mockCatalog{}), `{"jsonrpc": "1.0", "id": 1, "method": "similarity_search"}`)

	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Errorf("error: got %+v, want code %d", resp.Error, codeInvalidRequest)
	}
}

func TestHandleRPC_MethodNotFound(t *testing.T) {
	code, resp := callRPC(t, newTestServer(&mockCatalog{}), `{"jsonrpc": "2.0", "id": 1, "method": "brew_coffee"}`)

	if code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", code, http.StatusNotFound)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("error: got %+v, want code %d", resp.Error, codeMethodNotFound)
	}
}

func TestHandleRPC_SimilaritySearch(t *testing.T) {
	store := &mockCatalog{similarityRows: []catalog.ProductRow{testRow("p-1", 0.9), testRow("p-2", 0.7)}}

	code, resp := callRPC(t, newTestServer(store),
		`{"jsonrpc": "2.0", "id": 7, "method": "similarity_search", "params": {"flavor_tags": "chocolate,cherry"}}`)

	if code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", code, http.StatusOK)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if string(resp.ID) != "7" {
		t.Errorf("id: got %s, want 7", resp.ID)
	}

	result, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("remarshal result: %v", err)
	}
	var set resultSetJSON
	if err := json.Unmarshal(result, &set); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if set.Total != 2 || len(set.Matches) != 2 {
		t.Errorf("result: got total %d, %d matches", set.Total, len(set.Matches))
	}
	if set.Level != string(catalog.LevelPrimary) {
		t.Errorf("level: got %q, want primary", set.Level)
	}
	if set.Matches[0].ID != "p-1" {
		t.Errorf("ranking: got %q first", set.Matches[0].ID)
	}
}

func TestHandleRPC_SimilaritySearch_InvalidParams(t *testing.T) {
	code, resp := callRPC(t, newTestServer(&mockCatalog{}),
		`{"jsonrpc": "2.0", "id": 1, "method": "similarity_search", "params": {}}`)

	if code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", code, http.StatusBadRequest)
	}
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("error: got %+v, want code %d", resp.Error, codeInvalidParams)
	}
}

func TestHandleRPC_GeneratedID(t *testing.T) {
	store := &mockCatalog{roasterList: []catalog.Roaster{{ID: "r-1", Name: "Test Roastery"}}}

	_, resp := callRPC(t, newTestServer(store),
		`{"jsonrpc": "2.0", "method": "search_coffee_roasters", "params": {}}`)

	var id string
	if err := json.Unmarshal(resp.ID, &id); err != nil || id == "" {
		t.Errorf("expected generated string id, got %s (%v)", resp.ID, err)
	}
}

func TestHandleRPC_ProductDetails_NotFound(t *testing.T) {
	code, resp := callRPC(t, newTestServer(&mockCatalog{}),
		`{"jsonrpc": "2.0", "id": 1, "method": "get_product_details", "params": {"product_id": "nope"}}`)

	if code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", code, http.StatusNotFound)
	}
	if resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Errorf("error: got %+v, want code %d", resp.Error, codeNotFound)
	}
}

func TestHandleRPC_DomainErrorLogsToRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := newTestServer(&mockCatalog{})

	req := httptest.NewRequest("POST", "/rpc", bytes.NewBufferString(
		`{"jsonrpc": "2.0", "id": 1, "method": "get_product_details", "params": {"product_id": "nope"}}`))
	req = req.WithContext(logpkg.ContextWithLogger(req.Context(), zap.New(core)))
	rr := httptest.NewRecorder()
	s.HandleRPC(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if logs.FilterMessage("domain error").Len() != 1 {
		t.Errorf("expected one domain error entry on the request logger, got %d", logs.Len())
	}
}

func TestHandleRPC_RoasterDetails(t *testing.T) {
	store := &mockCatalog{
		roasters:    map[string]catalog.Roaster{"r-1": {ID: "r-1", Name: "Test Roastery", Verified: true}},
		productList: []catalog.ProductRow{testRow("p-1", 0)},
	}

	code, resp := callRPC(t, newTestServer(store),
		`{"jsonrpc": "2.0", "id": 1, "method": "get_roaster_details", "params": {"roaster_id": "r-1"}}`)

	if code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", code, http.StatusOK)
	}

	result, _ := json.Marshal(resp.Result)
	var details roasterDetailsJSON
	if err := json.Unmarshal(result, &details); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if details.Roaster.ID != "r-1" || !details.Roaster.Verified {
		t.Errorf("roaster: got %+v", details.Roaster)
	}
	if len(details.Products) != 1 {
		t.Errorf("products: got %d, want 1", len(details.Products))
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&mockCatalog{})

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	s.Healthz(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("body: got %+v", body)
	}
}

func TestManifest(t *testing.T) {
	s := newTestServer(&mockCatalog{})

	req := httptest.NewRequest("GET", "/manifest", http.NoBody)
	rr := httptest.NewRecorder()
	s.Manifest(rr, req)

	var body struct {
		Service string   `json:"service"`
		Methods []string `json:"methods"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Service != "better-beans" {
		t.Errorf("service: got %q", body.Service)
	}
	if len(body.Methods) != 5 {
		t.Errorf("methods: got %v", body.Methods)
	}
}
