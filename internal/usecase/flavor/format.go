package flavor

import (
	"sort"
	"strings"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// formatMatches maps raw store rows onto the public match shape. Matching
// tags are recomputed here as the case-insensitive, substring-tolerant
// intersection of the query tags and the row's flavor tags; they are a
// display aid, independent of the store-computed similarity score.
func formatMatches(queryTags []string, rows []catalog.ProductRow) []catalog.Match {
	matches := make([]catalog.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, catalog.Match{
			ID:           row.ID,
			Name:         row.Name,
			RoastLevel:   row.RoastLevel,
			Process:      row.Process,
			Description:  row.Description,
			Price:        row.Price,
			ImageURL:     row.ImageURL,
			ProductURL:   row.ProductURL,
			FlavorTags:   emptyIfNil(row.FlavorTags),
			Available:    row.Available,
			Featured:     row.Featured,
			Roaster:      row.Roaster,
			Similarity:   row.Similarity,
			Distance:     row.Distance,
			MatchingTags: matchingTags(queryTags, row.FlavorTags),
		})
	}
	return matches
}

// matchingTags returns the row tags that match any query tag, in row order.
// A match is an exact or substring hit in either direction.
func matchingTags(queryTags, rowTags []string) []string {
	matched := make([]string, 0, len(rowTags))
	for _, rt := range rowTags {
		lower := strings.ToLower(rt)
		for _, qt := range queryTags {
			if strings.Contains(lower, qt) || strings.Contains(qt, lower) {
				matched = append(matched, rt)
				break
			}
		}
	}
	return matched
}

// rankMatches enforces descending similarity with a featured tie-break. The
// sort is stable so store ordering survives among equals (guaranteed-fallback
// rows all share the placeholder score).
func rankMatches(matches []catalog.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Featured && !matches[j].Featured
	})
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
