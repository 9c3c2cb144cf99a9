// Package flavor implements the similarity-search resolution pipeline:
// cache check, query embedding, ranked vector search, and a cascading
// fallback escalation that favors returning something relevant-ish over a
// strict empty result.
package flavor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alr-main/better-beans-server/internal/domain"
	"github.com/alr-main/better-beans-server/internal/domain/catalog"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
	"github.com/alr-main/better-beans-server/internal/metrics"
)

// Default escalation thresholds.
const (
	DefaultThreshold = 0.15
	RelaxedThreshold = 0.05
	MinimalThreshold = 0.001

	DefaultFallbackLimit = 20
)

// Config tunes the resolver.
type Config struct {
	DefaultThreshold float64
	RelaxedThreshold float64
	MinimalThreshold float64
	FallbackLimit    int
	// Pinned maps a sorted pipe-joined tag set to a product id forced to the
	// top of results for that exact tag combination.
	Pinned map[string]string
}

func (c *Config) applyDefaults() {
	if c.DefaultThreshold <= 0 {
		c.DefaultThreshold = DefaultThreshold
	}
	if c.RelaxedThreshold <= 0 {
		c.RelaxedThreshold = RelaxedThreshold
	}
	if c.MinimalThreshold <= 0 {
		c.MinimalThreshold = MinimalThreshold
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = DefaultFallbackLimit
	}
}

// Service resolves flavor queries into ranked result sets.
type Service struct {
	store    Store
	embedder QueryEmbedder
	cache    ResultCache
	cfg      Config
	logger   *zap.Logger
}

// New creates a similarity resolver.
func New(store Store, embedder QueryEmbedder, cache ResultCache, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, cache: cache, cfg: cfg, logger: logger}
}

// Resolve runs the full pipeline and returns the offset-applied result set.
// The only error it returns is a terminal store failure at the guaranteed
// fallback level; everything softer is absorbed by escalation.
func (s *Service) Resolve(ctx context.Context, q *domflavor.Query) (catalog.ResultSet, error) {
	full, err := s.resolveFull(ctx, q)
	if err != nil {
		return catalog.ResultSet{}, err
	}
	return slice(full, q.Offset(), q.MaxResults()), nil
}

// resolveFull returns the complete pre-slice result set, from cache when
// possible. Shared by the blocking and streaming paths.
func (s *Service) resolveFull(ctx context.Context, q *domflavor.Query) (catalog.ResultSet, error) {
	key := q.CacheKey()

	if !q.BypassCache() {
		if cached, ok := s.cache.Get(key); ok {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			metrics.SearchResolutionsTotal.WithLabelValues(string(catalog.LevelCache)).Inc()
			return cached, nil
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.SearchCacheTotal.WithLabelValues("bypass").Inc()
	}

	emb, err := s.embedder.EmbedQuery(ctx, q)
	if err != nil {
		// The embedder degrades internally; an error here means the context
		// itself is gone.
		return catalog.ResultSet{}, fmt.Errorf("embed query: %w", err)
	}

	rows, lvl, fallbackSourced, err := s.escalate(ctx, emb.Embedding, q)
	if err != nil {
		return catalog.ResultSet{}, err
	}

	matches := formatMatches(q.Tags(), rows)
	matches = s.applyPinned(ctx, key, q, matches)
	rankMatches(matches)

	full := catalog.ResultSet{
		Tags:            q.Tags(),
		Matches:         matches,
		Total:           len(matches),
		FallbackSourced: fallbackSourced,
		Level:           lvl,
	}

	s.logger.Info("flavor query resolved",
		zap.Strings("tags", q.Tags()),
		zap.String("level", string(lvl)),
		zap.Int("rows", len(matches)),
		zap.Bool("embedding_degraded", emb.Degraded),
	)
	metrics.SearchResolutionsTotal.WithLabelValues(string(lvl)).Inc()

	// Written even on cache bypass: bypass skips the read, not the write.
	s.cache.Put(key, full)

	return full, nil
}

// escalate walks the strategy cascade in strict order. A store error at an
// intermediate level counts as zero rows; at the final level it is terminal.
func (s *Service) escalate(
	ctx context.Context, embedding []float32, q *domflavor.Query,
) ([]catalog.ProductRow, catalog.Level, bool, error) {
	primary := s.cfg.DefaultThreshold
	if q.Threshold() > 0 {
		primary = q.Threshold()
	}

	cascade := []strategy{
		&thresholdStrategy{threshold: primary, lvl: catalog.LevelPrimary},
		&thresholdStrategy{threshold: s.cfg.RelaxedThreshold, lvl: catalog.LevelRelaxed},
		&thresholdStrategy{threshold: s.cfg.MinimalThreshold, lvl: catalog.LevelMinimal},
		&guaranteedStrategy{limit: s.cfg.FallbackLimit},
	}

	for i, step := range cascade {
		last := i == len(cascade)-1

		rows, err := step.attempt(ctx, s.store, embedding, q)
		if err != nil {
			if last {
				return nil, "", false, fmt.Errorf("guaranteed fallback failed: %w: %w", err, domain.ErrNoInventory)
			}
			s.logger.Warn("store error during escalation, advancing",
				zap.String("level", string(step.level())),
				zap.Error(err),
			)
			metrics.SearchStoreErrorsTotal.WithLabelValues(string(step.level())).Inc()
			continue
		}
		if len(rows) > 0 {
			return rows, step.level(), step.fallbackSourced(), nil
		}
	}

	// Store is genuinely empty: the one legitimate empty outcome.
	return nil, catalog.LevelEmpty, false, nil
}

// applyPinned prepends the configured pinned product for this exact tag set,
// if any, deduplicating by id. A pinned lookup failure is logged and ignored.
func (s *Service) applyPinned(
	ctx context.Context, key string, q *domflavor.Query, matches []catalog.Match,
) []catalog.Match {
	productID, ok := s.cfg.Pinned[key]
	if !ok {
		return matches
	}

	row, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		s.logger.Warn("pinned product lookup failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return matches
	}
	row.Similarity = 1
	row.Distance = 0

	pinned := formatMatches(q.Tags(), []catalog.ProductRow{row})[0]
	out := make([]catalog.Match, 0, len(matches)+1)
	out = append(out, pinned)
	for _, m := range matches {
		if m.ID != pinned.ID {
			out = append(out, m)
		}
	}
	return out
}

// slice applies offset and max-results to a full result set.
func slice(full catalog.ResultSet, offset, maxResults int) catalog.ResultSet {
	matches := full.Matches
	if offset >= len(matches) {
		matches = nil
	} else {
		matches = matches[offset:]
	}
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out := full
	out.Matches = matches
	out.Total = len(matches)
	return out
}
