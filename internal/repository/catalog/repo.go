// Package catalog is the Postgres-backed coffee catalog client. Similarity
// ranking happens store-side in the match_coffee_products function (pgvector
// cosine distance with a small boost for featured inventory); this package
// only shapes parameters and scans rows.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alr-main/better-beans-server/internal/domain"
	domcat "github.com/alr-main/better-beans-server/internal/domain/catalog"
)

// querier is the consumer interface over pgxpool.Pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Repo implements the store contracts for search, product, and roaster
// usecases.
type Repo struct {
	db querier
}

// New creates a catalog repository over a pgx pool.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

const productRowColumns = `
	p.id, p.name, p.roast_level, p.process, p.description,
	p.price, p.image_url, p.product_url, p.flavor_tags,
	p.is_available, p.is_featured, p.created_at,
	r.id, r.name`

// SearchBySimilarity runs the store-side ranking function against the query
// embedding. Results come back ordered by the weighted score (cosine
// similarity plus featured boost), already offset and limited.
func (r *Repo) SearchBySimilarity(
	ctx context.Context, embedding []float32, threshold float64, limit, offset int,
) ([]domcat.ProductRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id, name, roast_level, process, description,
			price, image_url, product_url, flavor_tags,
			is_available, is_featured, created_at,
			roaster_id, roaster_name, similarity
		FROM match_coffee_products($1::vector, $2, $3, $4)`,
		encodeVector(embedding), threshold, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	return scanSimilarityRows(rows)
}

// FetchFallbackInventory returns available products by the priority heuristic
// (featured first, then most recent), with no similarity semantics.
func (r *Repo) FetchFallbackInventory(ctx context.Context, limit int) ([]domcat.ProductRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+productRowColumns+`
		FROM coffee_products p
		LEFT JOIN roasters r ON r.id = p.roaster_id
		WHERE p.is_available
		ORDER BY p.is_featured DESC, p.created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback inventory: %w", err)
	}
	defer rows.Close()

	return scanProductRows(rows)
}

// GetProduct returns one product by primary key.
func (r *Repo) GetProduct(ctx context.Context, id string) (domcat.ProductRow, error) {
	row := r.db.QueryRow(ctx, `
		SELECT`+productRowColumns+`
		FROM coffee_products p
		LEFT JOIN roasters r ON r.id = p.roaster_id
		WHERE p.id = $1`,
		id,
	)

	p, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcat.ProductRow{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
		}
		return domcat.ProductRow{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// SearchProducts lists products filtered by free text, roaster, roast level,
// and process, most recent first.
func (r *Repo) SearchProducts(
	ctx context.Context, query, roasterID, roastLevel, process string, limit, offset int,
) ([]domcat.ProductRow, error) {
	sql := `
		SELECT` + productRowColumns + `
		FROM coffee_products p
		LEFT JOIN roasters r ON r.id = p.roaster_id
		WHERE TRUE`
	args := make([]any, 0, 6)

	if query != "" {
		args = append(args, "%"+query+"%")
		sql += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	if roasterID != "" {
		args = append(args, roasterID)
		sql += fmt.Sprintf(" AND p.roaster_id = $%d", len(args))
	}
	if roastLevel != "" {
		args = append(args, roastLevel)
		sql += fmt.Sprintf(" AND p.roast_level = $%d", len(args))
	}
	if process != "" {
		args = append(args, process)
		sql += fmt.Sprintf(" AND p.process = $%d", len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return scanProductRows(rows)
}

// GetRoaster returns one roaster by primary key.
func (r *Repo) GetRoaster(ctx context.Context, id string) (domcat.Roaster, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, location, description, website_url, is_verified, created_at
		FROM roasters
		WHERE id = $1`,
		id,
	)

	var ro domcat.Roaster
	err := row.Scan(&ro.ID, &ro.Name, &ro.Location, &ro.Description,
		&ro.WebsiteURL, &ro.Verified, &ro.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcat.Roaster{}, fmt.Errorf("roaster %s: %w", id, domain.ErrRoasterNotFound)
		}
		return domcat.Roaster{}, fmt.Errorf("get roaster %s: %w", id, err)
	}
	return ro, nil
}

// SearchRoasters lists roasters filtered by free text and location.
func (r *Repo) SearchRoasters(
	ctx context.Context, query, location string, limit, offset int,
) ([]domcat.Roaster, error) {
	sql := `
		SELECT id, name, location, description, website_url, is_verified, created_at
		FROM roasters
		WHERE TRUE`
	args := make([]any, 0, 4)

	if query != "" {
		args = append(args, "%"+query+"%")
		sql += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if location != "" {
		args = append(args, "%"+location+"%")
		sql += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY is_verified DESC, name ASC LIMIT $%d", len(args))
	args = append(args, offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search roasters: %w", err)
	}
	defer rows.Close()

	var roasters []domcat.Roaster
	for rows.Next() {
		var ro domcat.Roaster
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Location, &ro.Description,
			&ro.WebsiteURL, &ro.Verified, &ro.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan roaster: %w", err)
		}
		roasters = append(roasters, ro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roasters: %w", err)
	}
	return roasters, nil
}

// ListRoasterProducts returns a roaster's products, most recent first.
func (r *Repo) ListRoasterProducts(ctx context.Context, roasterID string) ([]domcat.ProductRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+productRowColumns+`
		FROM coffee_products p
		LEFT JOIN roasters r ON r.id = p.roaster_id
		WHERE p.roaster_id = $1
		ORDER BY p.created_at DESC`,
		roasterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roaster products: %w", err)
	}
	defer rows.Close()

	return scanProductRows(rows)
}

func scanSimilarityRows(rows pgx.Rows) ([]domcat.ProductRow, error) {
	var products []domcat.ProductRow
	for rows.Next() {
		var (
			p           domcat.ProductRow
			roasterID   *string
			roasterName *string
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.RoastLevel, &p.Process, &p.Description,
			&p.Price, &p.ImageURL, &p.ProductURL, &p.FlavorTags,
			&p.Available, &p.Featured, &p.CreatedAt,
			&roasterID, &roasterName, &p.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		p.Distance = 1 - p.Similarity
		p.Roaster = roasterRef(roasterID, roasterName)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity rows: %w", err)
	}
	return products, nil
}

func scanProductRows(rows pgx.Rows) ([]domcat.ProductRow, error) {
	var products []domcat.ProductRow
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProductRow(row pgx.Row) (domcat.ProductRow, error) {
	var (
		p           domcat.ProductRow
		roasterID   *string
		roasterName *string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.RoastLevel, &p.Process, &p.Description,
		&p.Price, &p.ImageURL, &p.ProductURL, &p.FlavorTags,
		&p.Available, &p.Featured, &p.CreatedAt,
		&roasterID, &roasterName,
	)
	if err != nil {
		return domcat.ProductRow{}, err
	}
	p.Roaster = roasterRef(roasterID, roasterName)
	return p, nil
}

func roasterRef(id, name *string) *domcat.RoasterRef {
	if id == nil {
		return nil
	}
	ref := &domcat.RoasterRef{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	return ref
}
