package domain

import "time"

// Product is a catalog entry. Price is expressed in the smallest currency unit.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Image       string
	CreatedAt   time.Time
}

// ProductSummary is the projection of a product joined onto admin rating views.
type ProductSummary struct {
	ID   string
	Name string
}

// ProductWithStats pairs a product with its live rating aggregate.
type ProductWithStats struct {
	Product
	Rating RatingAggregate
}
