package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed caller query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRoasterNotFound signals a missing roaster.
	ErrRoasterNotFound = errors.New("roaster not found")
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrNoInventory signals that no coffee data could be retrieved at all,
	// not even through the guaranteed inventory fallback.
	ErrNoInventory = errors.New("no coffee inventory available")
	// ErrMethodNotFound signals an unknown RPC method.
	ErrMethodNotFound = errors.New("method not found")
	// ErrUnauthorized signals a missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized")
)
