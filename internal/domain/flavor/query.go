// Package flavor defines the canonical flavor-search query type. All caller
// input is normalized onto Query at the transport boundary; the resolver never
// sees anything else.
package flavor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alr-main/better-beans-server/internal/domain"
)

// Query parameter limits.
const (
	MaxTags           = 10
	DefaultMaxResults = 10
	MaxMaxResults     = 50
)

// Query is a validated flavor-similarity search query.
type Query struct {
	tags        []string
	maxResults  int
	offset      int
	threshold   float64
	bypassCache bool
}

// New validates and normalizes flavor-search parameters.
// Tags are lowercased, trimmed, and deduplicated; order is irrelevant.
// Defaults: maxResults=10. threshold=0 means "use the resolver default".
func New(tags []string, maxResults, offset int, threshold float64, bypassCache bool) (Query, error) {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}

	if len(normalized) == 0 {
		return Query{}, fmt.Errorf("%w: at least one non-empty flavor tag is required", domain.ErrInvalidQuery)
	}
	if len(normalized) > MaxTags {
		return Query{}, fmt.Errorf("%w: at most %d flavor tags allowed, got %d",
			domain.ErrInvalidQuery, MaxTags, len(normalized))
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 1 || maxResults > MaxMaxResults {
		return Query{}, fmt.Errorf("%w: max_results must be between 1 and %d, got %d",
			domain.ErrInvalidQuery, MaxMaxResults, maxResults)
	}
	if offset < 0 {
		return Query{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidQuery)
	}
	if threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidQuery)
	}

	return Query{
		tags:        normalized,
		maxResults:  maxResults,
		offset:      offset,
		threshold:   threshold,
		bypassCache: bypassCache,
	}, nil
}

// Tags returns the normalized flavor tags in caller order.
func (q *Query) Tags() []string { return q.tags }

// MaxResults returns the result-count bound.
func (q *Query) MaxResults() int { return q.maxResults }

// Offset returns the pagination offset.
func (q *Query) Offset() int { return q.offset }

// Threshold returns the similarity threshold override (0 = resolver default).
func (q *Query) Threshold() float64 { return q.threshold }

// BypassCache reports whether the caller asked to skip the cache read.
func (q *Query) BypassCache() bool { return q.bypassCache }

// CacheKey returns the sorted, pipe-joined tag set. Two queries over the same
// tags share a key regardless of tag order, maxResults, or offset.
func (q *Query) CacheKey() string {
	sorted := make([]string, len(q.tags))
	copy(sorted, q.tags)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Description composes the natural-language text submitted to the embedding
// provider.
func (q *Query) Description() string {
	switch len(q.tags) {
	case 1:
		return "coffee with flavors of " + q.tags[0]
	case 2:
		return "coffee with flavors of " + q.tags[0] + " and " + q.tags[1]
	default:
		return "coffee with flavors of " +
			strings.Join(q.tags[:len(q.tags)-1], ", ") + ", and " + q.tags[len(q.tags)-1]
	}
}
