package flavor

import (
	"context"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
)

// PlaceholderSimilarity is assigned to guaranteed-fallback rows, which carry
// no real similarity semantics.
const PlaceholderSimilarity = 0.5

// strategy is one step of the escalation cascade. Steps run in strict order;
// the first one producing rows short-circuits the rest.
type strategy interface {
	// attempt runs the step. An empty row set without error means "didn't
	// satisfy, escalate".
	attempt(ctx context.Context, store Store, embedding []float32, q *domflavor.Query) ([]catalog.ProductRow, error)
	// level identifies the step in logs, metrics, and result sets.
	level() catalog.Level
	// fallbackSourced reports whether rows from this step carry placeholder
	// scores instead of real similarity.
	fallbackSourced() bool
}

// thresholdStrategy queries the store at a fixed similarity cutoff.
type thresholdStrategy struct {
	threshold float64
	lvl       catalog.Level
}

func (s *thresholdStrategy) attempt(
	ctx context.Context, store Store, embedding []float32, q *domflavor.Query,
) ([]catalog.ProductRow, error) {
	limit := q.MaxResults() + q.Offset()
	return store.SearchBySimilarity(ctx, embedding, s.threshold, limit, 0)
}

func (s *thresholdStrategy) level() catalog.Level { return s.lvl }
func (s *thresholdStrategy) fallbackSourced() bool { return false }

// guaranteedStrategy abandons thresholding and fetches inventory by the
// priority heuristic, stamping a fixed moderate similarity on each row.
type guaranteedStrategy struct {
	limit int
}

func (s *guaranteedStrategy) attempt(
	ctx context.Context, store Store, _ []float32, _ *domflavor.Query,
) ([]catalog.ProductRow, error) {
	rows, err := store.FetchFallbackInventory(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Similarity = PlaceholderSimilarity
		rows[i].Distance = 1 - PlaceholderSimilarity
	}
	return rows, nil
}

func (s *guaranteedStrategy) level() catalog.Level { return catalog.LevelGuaranteed }
func (s *guaranteedStrategy) fallbackSourced() bool { return true }
