package product

import (
	"context"

	"github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// Repository defines the storage contract for product operations.
type Repository interface {
	GetProduct(ctx context.Context, id string) (catalog.ProductRow, error)
	SearchProducts(
		ctx context.Context, query, roasterID, roastLevel, process string, limit, offset int,
	) ([]catalog.ProductRow, error)
}
