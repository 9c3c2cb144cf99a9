package flavor

import (
	"context"

	"github.com/alr-main/better-beans-server/internal/domain"
	"github.com/alr-main/better-beans-server/internal/domain/catalog"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
)

// Store defines the catalog contract for similarity resolution.
type Store interface {
	// SearchBySimilarity returns rows above the similarity threshold, ranked
	// by the store-side weighted score, already offset and limited.
	SearchBySimilarity(
		ctx context.Context, embedding []float32, threshold float64, limit, offset int,
	) ([]catalog.ProductRow, error)

	// FetchFallbackInventory returns available rows by the featured/recency
	// heuristic, without similarity semantics.
	FetchFallbackInventory(ctx context.Context, limit int) ([]catalog.ProductRow, error)

	// GetProduct returns one product by primary key (pinned overrides).
	GetProduct(ctx context.Context, id string) (catalog.ProductRow, error)
}

// QueryEmbedder vectorizes flavor queries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, q *domflavor.Query) (domain.EmbeddingResult, error)
}

// ResultCache holds full resolved result sets keyed by sorted tag set.
type ResultCache interface {
	Get(key string) (catalog.ResultSet, bool)
	Put(key string, set catalog.ResultSet)
}

// Sink receives streamed result batches. Emit is called zero or more times
// with final=false, then exactly once with final=true carrying the complete
// result set. An Emit error means the sink is unusable and emission stops.
type Sink interface {
	Emit(batch catalog.ResultSet, final bool) error
}
