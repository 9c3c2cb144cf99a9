package roaster

import (
	"context"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// Repository defines the storage contract for roaster operations.
type Repository interface {
	GetRoaster(ctx context.Context, id string) (catalog.Roaster, error)
	SearchRoasters(ctx context.Context, query, location string, limit, offset int) ([]catalog.Roaster, error)
	ListRoasterProducts(ctx context.Context, roasterID string) ([]catalog.ProductRow, error)
}
