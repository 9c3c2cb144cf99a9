// Package product handles catalog product lookups.
package product

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

// Filters narrows a product search. Zero values mean "no filter".
type Filters struct {
	Query      string
	RoasterID  string
	RoastLevel string
	Process    string
	Limit      int
	Offset     int
}

// Service handles product search and detail lookups.
type Service struct {
	repo Repository
}

// New creates a product service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search lists products matching the filters, most recent first.
func (s *Service) Search(ctx context.Context, f Filters) ([]catalog.ProductRow, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.SearchProducts(ctx, f.Query, f.RoasterID, f.RoastLevel, f.Process, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Get returns one product by primary key.
func (s *Service) Get(ctx context.Context, id string) (catalog.ProductRow, error) {
	return s.repo.GetProduct(ctx, id)
}
