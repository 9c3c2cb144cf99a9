// Package roaster handles roaster directory lookups.
package roaster

import (
	"context"
	"fmt"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Details is a roaster with its product listing.
type Details struct {
	Roaster  catalog.Roaster
	Products []catalog.ProductRow
}

// Service handles roaster search and detail lookups.
type Service struct {
	repo Repository
}

// New creates a roaster service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search lists roasters matching the free-text query and location filter.
func (s *Service) Search(ctx context.Context, query, location string, limit, offset int) ([]catalog.Roaster, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	roasters, err := s.repo.SearchRoasters(ctx, query, location, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search roasters: %w", err)
	}
	return roasters, nil
}

// Get returns one roaster with its products.
func (s *Service) Get(ctx context.Context, id string) (Details, error) {
	ro, err := s.repo.GetRoaster(ctx, id)
	if err != nil {
		return Details{}, err
	}

	products, err := s.repo.ListRoasterProducts(ctx, id)
	if err != nil {
		return Details{}, fmt.Errorf("list products for roaster %s: %w", id, err)
	}

	return Details{Roaster: ro, Products: products}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
