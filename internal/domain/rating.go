package domain

import "time"

// Rating represents a single user's rating for a product. There is at most one
// per (UserID, ProductID).
type Rating struct {
	ID        string
	Value     int
	Comment   *string
	UserID    string
	ProductID string
	CreatedAt time.Time
	UpdatedAt time.Time

	User    *UserSummary
	Product *ProductSummary
	Images  []RatingImage
}

// RatingImage references a photo held by the external asset host.
type RatingImage struct {
	ID         string
	RatingID   string
	URL        string
	ExternalID string
	Position   int
	CreatedAt  time.Time
}

// ImageRef is an image reference as received from a client, before it is stored.
type ImageRef struct {
	URL        string `json:"url" validate:"required,url,startswith=http"`
	ExternalID string `json:"externalId" validate:"required,max=255"`
}

// RatingAggregate provides average and count for a product's ratings.
type RatingAggregate struct {
	Average float64
	Count   int64
}

// Minimum and maximum accepted star values.
const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// ValidRatingValue reports whether v is an accepted star value.
func ValidRatingValue(v int) bool {
	return v >= MinRatingValue && v <= MaxRatingValue
}
