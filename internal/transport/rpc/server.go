package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alr-main/better-beans-server/internal/domain"
	logpkg "github.com/alr-main/better-beans-server/internal/logger"
	flavoruc "github.com/alr-main/better-beans-server/internal/usecase/flavor"
	healthuc "github.com/alr-main/better-beans-server/internal/usecase/health"
	productuc "github.com/alr-main/better-beans-server/internal/usecase/product"
	roasteruc "github.com/alr-main/better-beans-server/internal/usecase/roaster"
	"github.com/alr-main/better-beans-server/internal/version"
)

// Published method names.
const (
	MethodSearchRoasters   = "search_coffee_roasters"
	MethodRoasterDetails   = "get_roaster_details"
	MethodSearchProducts   = "search_coffee_products"
	MethodProductDetails   = "get_product_details"
	MethodSimilaritySearch = "similarity_search"
)

// errorHandler tries to map a domain error onto a JSON-RPC error object.
// Returns true if handled.
type errorHandler func(w http.ResponseWriter, id json.RawMessage, err error, msg string) bool

// methodFunc executes one published method against already-decoded params.
type methodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server dispatches JSON-RPC calls to the usecase layer. Handlers log
// through the per-request logger the wide-event middleware stores in the
// request context, so every line carries the request id.
type Server struct {
	flavor        *flavoruc.Service
	roasters      *roasteruc.Service
	products      *productuc.Service
	health        *healthuc.Service
	streamDelay   time.Duration
	methods       map[string]methodFunc
	errorHandlers []errorHandler
}

// NewServer creates the JSON-RPC API server.
func NewServer(
	flavor *flavoruc.Service,
	roasters *roasteruc.Service,
	products *productuc.Service,
	health *healthuc.Service,
) *Server {
	s := &Server{
		flavor:   flavor,
		roasters: roasters,
		products: products,
		health:   health,
	}
	s.methods = map[string]methodFunc{
		MethodSearchRoasters:   s.searchRoasters,
		MethodRoasterDetails:   s.roasterDetails,
		MethodSearchProducts:   s.searchProducts,
		MethodProductDetails:   s.productDetails,
		MethodSimilaritySearch: s.similaritySearch,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidParams),
		sentinelHandler(domain.ErrRoasterNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNoInventory, http.StatusOK, codeNoInventory),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// HandleRPC handles POST /rpc.
func (s *Server) HandleRPC(w http.ResponseWriter, r *http.Request) {
	req, rpcErr := decodeEnvelope(r)
	if rpcErr != nil {
		writeRPCError(w, http.StatusBadRequest, nil, rpcErr.Code, rpcErr.Message)
		return
	}
	id := ensureID(req.ID)

	method, ok := s.methods[req.Method]
	if !ok {
		writeRPCError(w, http.StatusNotFound, id, codeMethodNotFound, "method not found: "+req.Method)
		return
	}

	result, err := method(r.Context(), req.Params)
	if err != nil {
		s.handleDomainError(w, r, id, err)
		return
	}

	writeResult(w, id, result)
}

// decodeEnvelope reads and validates the call envelope. A nil *rpcError means
// the envelope is well-formed.
func decodeEnvelope(r *http.Request) (request, *rpcError) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return request{}, &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()}
	}
	if req.JSONRPC != jsonrpcVersion {
		return request{}, &rpcError{Code: codeInvalidRequest, Message: `jsonrpc must be "2.0"`}
	}
	if req.Method == "" {
		return request{}, &rpcError{Code: codeInvalidRequest, Message: "method is required"}
	}
	return req, nil
}

func (s *Server) searchRoasters(ctx context.Context, params json.RawMessage) (any, error) {
	p, err := roasterSearchFromParams(params)
	if err != nil {
		return nil, err
	}
	roasters, err := s.roasters.Search(ctx, p.Query, p.Location, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	return roasterListToJSON(roasters), nil
}

func (s *Server) roasterDetails(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := idFromParams(params, "roaster_id", "roasterId", "id")
	if err != nil {
		return nil, err
	}
	details, err := s.roasters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return roasterDetailsToJSON(details), nil
}

func (s *Server) searchProducts(ctx context.Context, params json.RawMessage) (any, error) {
	filters, err := productFiltersFromParams(params)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	return productListToJSON(products), nil
}

func (s *Server) productDetails(ctx context.Context, params json.RawMessage) (any, error) {
	id, err := idFromParams(params, "product_id", "productId", "id")
	if err != nil {
		return nil, err
	}
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToJSON(product), nil
}

func (s *Server) similaritySearch(ctx context.Context, params json.RawMessage) (any, error) {
	q, err := flavorQueryFromParams(params)
	if err != nil {
		return nil, err
	}
	set, err := s.flavor.Resolve(ctx, &q)
	if err != nil {
		return nil, err
	}
	return resultSetToJSON(set), nil
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// Manifest handles GET /manifest: the service identity and method catalog.
func (s *Server) Manifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "better-beans",
		"version": version.Version,
		"methods": []string{
			MethodSearchRoasters,
			MethodRoasterDetails,
			MethodSearchProducts,
			MethodProductDetails,
			MethodSimilaritySearch,
		},
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrRoasterNotFound,
		domain.ErrProductNotFound,
		domain.ErrNoInventory,
		domain.ErrEmbeddingProviderError,
		domain.ErrMethodNotFound,
		domain.ErrUnauthorized,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, httpStatus, code int) errorHandler {
	return func(w http.ResponseWriter, id json.RawMessage, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeRPCError(w, httpStatus, id, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, id json.RawMessage, err error) {
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, id, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeRPCError(w, http.StatusInternalServerError, id, codeInternalError, "internal error")
}
