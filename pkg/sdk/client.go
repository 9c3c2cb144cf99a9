package beans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Client talks to a better-beans server over JSON-RPC 2.0.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.apiKey,
		httpClient: hc,
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// call performs one JSON-RPC request and unmarshals the result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	resp, err := c.post(ctx, "/rpc", body)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return resp, nil
}

// SimilaritySearch resolves a flavor-similarity query.
func (c *Client) SimilaritySearch(ctx context.Context, q SimilarityQuery) (ResultSet, error) {
	var set ResultSet
	if err := c.call(ctx, "similarity_search", q, &set); err != nil {
		return ResultSet{}, err
	}
	return set, nil
}

// SearchRoasters lists roasters matching the filter.
func (c *Client) SearchRoasters(ctx context.Context, q RoasterQuery) ([]Roaster, error) {
	var out struct {
		Roasters []Roaster `json:"roasters"`
	}
	if err := c.call(ctx, "search_coffee_roasters", q, &out); err != nil {
		return nil, err
	}
	return out.Roasters, nil
}

// GetRoaster returns one roaster with its products.
func (c *Client) GetRoaster(ctx context.Context, id string) (RoasterDetails, error) {
	params := map[string]string{"roaster_id": id}
	var details RoasterDetails
	if err := c.call(ctx, "get_roaster_details", params, &details); err != nil {
		return RoasterDetails{}, err
	}
	return details, nil
}

// SearchProducts lists products matching the filter.
func (c *Client) SearchProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.call(ctx, "search_coffee_products", q, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct returns one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	params := map[string]string{"product_id": id}
	var product Product
	if err := c.call(ctx, "get_product_details", params, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Health returns the aggregated service health. A degraded report is not an
// error; transport failures are.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("health: decode response: %w", err)
	}
	return status, nil
}
