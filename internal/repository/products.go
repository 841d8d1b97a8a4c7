package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agrirate/agrirate/internal/domain"
)

// ProductsRepository reads the catalog. Writes exist only for seeding.
type ProductsRepository struct {
	db DBTX
}

// ProductCreateParams bundles the fields required to seed a product.
type ProductCreateParams struct {
	Name        string
	Description string
	Price       int64
	Image       string
}

// Create inserts a product row and returns the stored entity.
func (r *ProductsRepository) Create(ctx context.Context, params ProductCreateParams) (domain.Product, error) {
	const query = `
        INSERT INTO products (id, name, description, price, image)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, name, description, price, image, created_at
    `
	var p domain.Product
	err := r.db.QueryRow(ctx, query, uuid.NewString(), params.Name, params.Description, params.Price, params.Image).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, mapWriteError(err)
	}
	return p, nil
}

// Exists reports whether a product row with id exists.
func (r *ProductsRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

const productWithStatsQuery = `
    SELECT p.id, p.name, p.description, p.price, p.image, p.created_at,
           COALESCE(AVG(r.value), 0)::float8 AS average,
           COUNT(r.id)::int8 AS count
    FROM products p
    LEFT JOIN ratings r ON r.product_id = p.id
`

// GetWithStats fetches a product together with its live rating aggregate.
func (r *ProductsRepository) GetWithStats(ctx context.Context, id string) (domain.ProductWithStats, error) {
	row := r.db.QueryRow(ctx, productWithStatsQuery+` WHERE p.id = $1 GROUP BY p.id`, id)
	p, err := scanProductWithStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProductWithStats{}, ErrNotFound
		}
		return domain.ProductWithStats{}, err
	}
	return p, nil
}

// ListWithStats returns all products, newest first, with live aggregates.
func (r *ProductsRepository) ListWithStats(ctx context.Context) ([]domain.ProductWithStats, error) {
	rows, err := r.db.Query(ctx, productWithStatsQuery+` GROUP BY p.id ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ProductWithStats, 0)
	for rows.Next() {
		p, err := scanProductWithStats(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanProductWithStats(row pgx.Row) (domain.ProductWithStats, error) {
	var p domain.ProductWithStats
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Image,
		&p.CreatedAt,
		&p.Rating.Average,
		&p.Rating.Count,
	)
	return p, err
}
