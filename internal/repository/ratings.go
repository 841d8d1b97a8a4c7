package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agrirate/agrirate/internal/domain"
)

// RatingsRepository provides persistence for product ratings and their images.
type RatingsRepository struct {
	db DBTX
}

// RatingCreateParams captures the payload required to create a rating.
type RatingCreateParams struct {
	UserID    string
	ProductID string
	Value     int
	Comment   *string
}

// RatingListFilter controls admin listing. A zero Limit returns every row.
type RatingListFilter struct {
	Limit  int
	Cursor *RatingCursor
}

// RatingPage is one page of ratings plus the token for the next one.
type RatingPage struct {
	Items      []domain.Rating
	NextCursor *string
}

const ratingColumns = `id, value, comment, user_id, product_id, created_at, updated_at`

const joinedRatingQuery = `
    SELECT r.id, r.value, r.comment, r.user_id, r.product_id, r.created_at, r.updated_at,
           u.name, u.email, p.name
    FROM ratings r
    JOIN users u ON u.id = r.user_id
    JOIN products p ON p.id = r.product_id
`

// FindByUserAndProduct returns the caller's rating for a product, locking it
// for the remainder of the surrounding transaction.
func (r *RatingsRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (domain.Rating, error) {
	const query = `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND product_id = $2 FOR UPDATE`
	rating, err := scanRating(r.db.QueryRow(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// Create inserts a new rating. A second rating for the same (user, product)
// is rejected by the store with ErrConflict; a missing product or user yields
// ErrNotFound.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	if !domain.ValidRatingValue(params.Value) {
		return domain.Rating{}, fmt.Errorf("%w: value %d outside [%d,%d]", ErrValidation, params.Value, domain.MinRatingValue, domain.MaxRatingValue)
	}
	const query = `
        INSERT INTO ratings (id, value, comment, user_id, product_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + ratingColumns

	rating, err := scanRating(r.db.QueryRow(ctx, query, uuid.NewString(), params.Value, params.Comment, params.UserID, params.ProductID))
	if err != nil {
		return domain.Rating{}, mapWriteError(err)
	}
	return rating, nil
}

// RatingUpdateParams carries an in-place edit. The stored comment is only
// touched when SetComment is true; a nil Comment then clears it.
type RatingUpdateParams struct {
	Value      int
	Comment    *string
	SetComment bool
}

// Update overwrites the value, and optionally the comment, of an existing
// rating. The identifier and creation time never change.
func (r *RatingsRepository) Update(ctx context.Context, id string, params RatingUpdateParams) (domain.Rating, error) {
	if !domain.ValidRatingValue(params.Value) {
		return domain.Rating{}, fmt.Errorf("%w: value %d outside [%d,%d]", ErrValidation, params.Value, domain.MinRatingValue, domain.MaxRatingValue)
	}
	const query = `
        UPDATE ratings
        SET value = $2,
            comment = CASE WHEN $4::boolean THEN $3::text ELSE comment END,
            updated_at = now()
        WHERE id = $1
        RETURNING ` + ratingColumns

	rating, err := scanRating(r.db.QueryRow(ctx, query, id, params.Value, params.Comment, params.SetComment))
	if err != nil {
		return domain.Rating{}, mapWriteError(err)
	}
	return rating, nil
}

// Delete removes a rating. Its images are deleted first, in the same
// transaction, because rating_images references ratings with ON DELETE RESTRICT.
func (r *RatingsRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM rating_images WHERE rating_id = $1`, id); err != nil {
			return fmt.Errorf("delete rating images: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddImages appends image references to a rating in the given order.
func (r *RatingsRepository) AddImages(ctx context.Context, ratingID string, images []domain.ImageRef) ([]domain.RatingImage, error) {
	if len(images) == 0 {
		return []domain.RatingImage{}, nil
	}
	var stored []domain.RatingImage
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var offset int
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM rating_images WHERE rating_id = $1`, ratingID).Scan(&offset); err != nil {
			return err
		}
		var err error
		stored, err = insertImages(ctx, tx, ratingID, images, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ReplaceImages discards every image of the rating and stores the given set.
// Images not present in the new set are gone afterwards.
func (r *RatingsRepository) ReplaceImages(ctx context.Context, ratingID string, images []domain.ImageRef) ([]domain.RatingImage, error) {
	var stored []domain.RatingImage
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM rating_images WHERE rating_id = $1`, ratingID); err != nil {
			return fmt.Errorf("clear rating images: %w", err)
		}
		var err error
		stored, err = insertImages(ctx, tx, ratingID, images, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func insertImages(ctx context.Context, db DBTX, ratingID string, images []domain.ImageRef, offset int) ([]domain.RatingImage, error) {
	const query = `
        INSERT INTO rating_images (id, rating_id, url, external_id, position)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, rating_id, url, external_id, position, created_at
    `
	stored := make([]domain.RatingImage, 0, len(images))
	for i, img := range images {
		var image domain.RatingImage
		err := db.QueryRow(ctx, query, uuid.NewString(), ratingID, img.URL, img.ExternalID, offset+i).Scan(
			&image.ID,
			&image.RatingID,
			&image.URL,
			&image.ExternalID,
			&image.Position,
			&image.CreatedAt,
		)
		if err != nil {
			return nil, mapWriteError(err)
		}
		stored = append(stored, image)
	}
	return stored, nil
}

// Get fetches one rating joined with its author, product and images.
func (r *RatingsRepository) Get(ctx context.Context, id string) (domain.Rating, error) {
	ratings, err := r.queryJoined(ctx, joinedRatingQuery+` WHERE r.id = $1`, id)
	if err != nil {
		return domain.Rating{}, err
	}
	if len(ratings) == 0 {
		return domain.Rating{}, ErrNotFound
	}
	return ratings[0], nil
}

// ListByProduct returns a product's ratings, newest first.
func (r *RatingsRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Rating, error) {
	return r.queryJoined(ctx, joinedRatingQuery+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id DESC`, productID)
}

// ListAll returns every rating, newest first, optionally paginated.
func (r *RatingsRepository) ListAll(ctx context.Context, filter RatingListFilter) (RatingPage, error) {
	var (
		where []string
		args  []any
	)
	if filter.Cursor != nil {
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		where = append(where, fmt.Sprintf("(r.created_at, r.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	var b strings.Builder
	b.WriteString(joinedRatingQuery)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY r.created_at DESC, r.id DESC")
	if filter.Limit > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	}

	items, err := r.queryJoined(ctx, b.String(), args...)
	if err != nil {
		return RatingPage{}, err
	}

	var nextCursor *string
	if filter.Limit > 0 && len(items) == filter.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(RatingCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return RatingPage{}, err
		}
		nextCursor = &token
	}
	return RatingPage{Items: items, NextCursor: nextCursor}, nil
}

// ImagesByIDs returns whichever of the given image rows still exist.
func (r *RatingsRepository) ImagesByIDs(ctx context.Context, ids []string) ([]domain.RatingImage, error) {
	const query = `
        SELECT id, rating_id, url, external_id, position, created_at
        FROM rating_images
        WHERE id = ANY($1)
        ORDER BY rating_id, position, id
    `
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// ComputeAverage returns the arithmetic mean of a product's rating values and
// the number of ratings. No rounding happens here; (0, 0) when there are none.
func (r *RatingsRepository) ComputeAverage(ctx context.Context, productID string) (domain.RatingAggregate, error) {
	const query = `
        SELECT COALESCE(AVG(value), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE product_id = $1
    `

	var agg domain.RatingAggregate
	err := r.db.QueryRow(ctx, query, productID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return agg, nil
}

func (r *RatingsRepository) queryJoined(ctx context.Context, query string, args ...any) ([]domain.Rating, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Rating, 0)
	for rows.Next() {
		var (
			rating  domain.Rating
			value   int16
			user    domain.UserSummary
			product domain.ProductSummary
		)
		err := rows.Scan(
			&rating.ID,
			&value,
			&rating.Comment,
			&rating.UserID,
			&rating.ProductID,
			&rating.CreatedAt,
			&rating.UpdatedAt,
			&user.Name,
			&user.Email,
			&product.Name,
		)
		if err != nil {
			return nil, err
		}
		rating.Value = int(value)
		user.ID = rating.UserID
		product.ID = rating.ProductID
		rating.User = &user
		rating.Product = &product
		items = append(items, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// a transaction runs on one connection; free it before the images query
	rows.Close()

	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RatingsRepository) attachImages(ctx context.Context, ratings []domain.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	ids := make([]string, len(ratings))
	index := make(map[string]int, len(ratings))
	for i := range ratings {
		ids[i] = ratings[i].ID
		index[ratings[i].ID] = i
		ratings[i].Images = []domain.RatingImage{}
	}

	const query = `
        SELECT id, rating_id, url, external_id, position, created_at
        FROM rating_images
        WHERE rating_id = ANY($1)
        ORDER BY rating_id, position, id
    `
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load rating images: %w", err)
	}
	images, err := collectImages(rows)
	if err != nil {
		return fmt.Errorf("load rating images: %w", err)
	}
	for _, img := range images {
		i := index[img.RatingID]
		ratings[i].Images = append(ratings[i].Images, img)
	}
	return nil
}

func collectImages(rows pgx.Rows) ([]domain.RatingImage, error) {
	defer rows.Close()
	images := make([]domain.RatingImage, 0)
	for rows.Next() {
		var img domain.RatingImage
		if err := rows.Scan(&img.ID, &img.RatingID, &img.URL, &img.ExternalID, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var (
		rating domain.Rating
		value  int16
	)
	err := row.Scan(
		&rating.ID,
		&value,
		&rating.Comment,
		&rating.UserID,
		&rating.ProductID,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	rating.Value = int(value)
	return rating, nil
}
