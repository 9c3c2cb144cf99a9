package flavor

import (
	"context"
	"time"

	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
	"github.com/alr-main/better-beans-server/internal/metrics"
)

// Streaming batch sizes: a small first batch for immediate feedback, larger
// ones after.
const (
	initialBatchSize = 2
	nextBatchSize    = 3

	// DefaultStreamDelay spaces the batches of a replayed or already-complete
	// result set.
	DefaultStreamDelay = 150 * time.Millisecond
)

// Stream resolves q and emits the result progressively: an immediate initial
// batch, delayed subsequent batches, then one terminal emission carrying the
// complete set. The terminal set is identical to what Resolve would return
// for the same query; cache hits replay through the same batching contract.
//
// A sink failure halts emission without surfacing an error; only context
// cancellation and terminal resolution failures propagate.
func (s *Service) Stream(ctx context.Context, q *domflavor.Query, sink Sink, delay time.Duration) error {
	if delay <= 0 {
		delay = DefaultStreamDelay
	}

	full, err := s.resolveFull(ctx, q)
	if err != nil {
		return err
	}
	complete := slice(full, q.Offset(), q.MaxResults())

	matches := complete.Matches
	for start, size := 0, initialBatchSize; start < len(matches); size = nextBatchSize {
		if start > 0 {
			// Cooperative inter-batch delay, abortable on cancellation.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		end := start + size
		if end > len(matches) {
			end = len(matches)
		}

		batch := complete
		batch.Matches = matches[start:end]
		batch.Total = end - start

		if sink.Emit(batch, false) != nil {
			// Sink is gone; stop quietly.
			return nil
		}
		metrics.StreamBatchesTotal.Inc()

		start = end
	}

	_ = sink.Emit(complete, true)
	return nil
}
