package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alr-main/better-beans-server/internal/domain"
	domflavor "github.com/alr-main/better-beans-server/internal/domain/flavor"
	productuc "github.com/alr-main/better-beans-server/internal/usecase/product"
)

// Params arrive from a mix of clients that disagree on key casing and on how
// to send a list. Everything is normalized here onto the canonical domain
// types; nothing past this file tolerates variant shapes.

// paramBag is a decoded params object with variant-tolerant accessors.
type paramBag map[string]json.RawMessage

func decodeParams(raw json.RawMessage) (paramBag, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return paramBag{}, nil
	}
	var bag paramBag
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, fmt.Errorf("%w: params must be an object", domain.ErrInvalidQuery)
	}
	return bag, nil
}

// lookup returns the first present key among the given variants.
func (b paramBag) lookup(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := b[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func (b paramBag) stringField(keys ...string) (string, error) {
	raw, ok := b.lookup(keys...)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidQuery, keys[0])
	}
	return s, nil
}

// intField accepts a JSON number or a numeric string.
func (b paramBag) intField(keys ...string) (int, error) {
	raw, ok := b.lookup(keys...)
	if !ok {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidQuery, keys[0])
}

func (b paramBag) floatField(keys ...string) (float64, error) {
	raw, ok := b.lookup(keys...)
	if !ok {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidQuery, keys[0])
}

// boolField accepts a JSON bool or the strings "true"/"false".
func (b paramBag) boolField(keys ...string) (bool, error) {
	raw, ok := b.lookup(keys...)
	if !ok {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed, nil
		}
	}
	return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidQuery, keys[0])
}

// stringListField accepts a JSON array of strings, a single comma-separated
// string, or an array of mixed scalars coerced to strings.
func (b paramBag) stringListField(keys ...string) ([]string, error) {
	raw, ok := b.lookup(keys...)
	if !ok {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.Split(s, ","), nil
	}

	var mixed []any
	if err := json.Unmarshal(raw, &mixed); err == nil {
		out := make([]string, 0, len(mixed))
		for _, item := range mixed {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case float64:
				out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
			default:
				return nil, fmt.Errorf("%w: %s entries must be strings", domain.ErrInvalidQuery, keys[0])
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s must be an array or comma-separated string", domain.ErrInvalidQuery, keys[0])
}

// flavorQueryFromParams builds the canonical similarity query from a
// similarity_search params object.
func flavorQueryFromParams(raw json.RawMessage) (domflavor.Query, error) {
	bag, err := decodeParams(raw)
	if err != nil {
		return domflavor.Query{}, err
	}

	tags, err := bag.stringListField("flavor_tags", "flavorTags", "flavor_tags[]", "tags")
	if err != nil {
		return domflavor.Query{}, err
	}
	maxResults, err := bag.intField("max_results", "maxResults", "limit")
	if err != nil {
		return domflavor.Query{}, err
	}
	offset, err := bag.intField("offset")
	if err != nil {
		return domflavor.Query{}, err
	}
	threshold, err := bag.floatField("threshold", "similarity_threshold", "similarityThreshold")
	if err != nil {
		return domflavor.Query{}, err
	}
	bypass, err := bag.boolField("bypass_cache", "bypassCache")
	if err != nil {
		return domflavor.Query{}, err
	}

	return domflavor.New(tags, maxResults, offset, threshold, bypass)
}

type roasterSearchParams struct {
	Query    string
	Location string
	Limit    int
	Offset   int
}

func roasterSearchFromParams(raw json.RawMessage) (roasterSearchParams, error) {
	bag, err := decodeParams(raw)
	if err != nil {
		return roasterSearchParams{}, err
	}

	var p roasterSearchParams
	if p.Query, err = bag.stringField("query", "q"); err != nil {
		return roasterSearchParams{}, err
	}
	if p.Location, err = bag.stringField("location"); err != nil {
		return roasterSearchParams{}, err
	}
	if p.Limit, err = bag.intField("limit", "max_results", "maxResults"); err != nil {
		return roasterSearchParams{}, err
	}
	if p.Offset, err = bag.intField("offset"); err != nil {
		return roasterSearchParams{}, err
	}
	return p, nil
}

func productFiltersFromParams(raw json.RawMessage) (productuc.Filters, error) {
	bag, err := decodeParams(raw)
	if err != nil {
		return productuc.Filters{}, err
	}

	var f productuc.Filters
	if f.Query, err = bag.stringField("query", "q"); err != nil {
		return productuc.Filters{}, err
	}
	if f.RoasterID, err = bag.stringField("roaster_id", "roasterId"); err != nil {
		return productuc.Filters{}, err
	}
	if f.RoastLevel, err = bag.stringField("roast_level", "roastLevel"); err != nil {
		return productuc.Filters{}, err
	}
	if f.Process, err = bag.stringField("process"); err != nil {
		return productuc.Filters{}, err
	}
	if f.Limit, err = bag.intField("limit", "max_results", "maxResults"); err != nil {
		return productuc.Filters{}, err
	}
	if f.Offset, err = bag.intField("offset"); err != nil {
		return productuc.Filters{}, err
	}
	return f, nil
}

// idFromParams extracts a required identifier under the given key variants.
func idFromParams(raw json.RawMessage, keys ...string) (string, error) {
	bag, err := decodeParams(raw)
	if err != nil {
		return "", err
	}
	id, err := bag.stringField(keys...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidQuery, keys[0])
	}
	return strings.TrimSpace(id), nil
}
