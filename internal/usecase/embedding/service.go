// Package embedding turns flavor-tag queries into fixed-length vectors. The
// hosted provider is tried first; any failure degrades silently to the
// deterministic offline generator so embedding never blocks resolution.
package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/alr-main/better-beans-server/internal/domain"
	"github.com/alr-main/better-beans-server/internal/domain/flavor"
	"github.com/alr-main/better-beans-server/internal/metrics"
)

// Service embeds flavor queries with an offline fallback.
type Service struct {
	provider domain.Embedder
	offline  *Offline
	logger   *zap.Logger
}

// New creates an embedding service. provider may be nil, in which case every
// query is served by the offline generator.
func New(provider domain.Embedder, offline *Offline, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, offline: offline, logger: logger}
}

// EmbedQuery returns an embedding for the query's tag set. Provider failures
// are absorbed: the result is then generated offline and marked Degraded.
// A single provider attempt, no retries.
func (s *Service) EmbedQuery(ctx context.Context, q *flavor.Query) (domain.EmbeddingResult, error) {
	if s.provider != nil {
		res, err := s.provider.Embed(ctx, q.Description())
		if err == nil {
			return res, nil
		}
		s.logger.Warn("embedding provider degraded, using offline generator",
			zap.Strings("tags", q.Tags()),
			zap.Error(err),
		)
	}

	metrics.EmbeddingFallbackTotal.Inc()
	return domain.EmbeddingResult{
		Embedding: s.offline.Generate(q.Tags()),
		Degraded:  true,
	}, nil
}
