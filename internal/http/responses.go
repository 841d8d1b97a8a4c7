package httpserver

import (
	"time"

	"github.com/agrirate/agrirate/internal/domain"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type userSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type productSummaryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type imageResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	ExternalID string    `json:"externalId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ratingResponse struct {
	ID        string                  `json:"id"`
	Value     int                     `json:"value"`
	Comment   *string                 `json:"comment"`
	UserID    string                  `json:"userId"`
	ProductID string                  `json:"productId"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	User      *userSummaryResponse    `json:"user,omitempty"`
	Product   *productSummaryResponse `json:"product,omitempty"`
	Images    []imageResponse         `json:"images"`
}

type aggregateResponse struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type productResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Image       string            `json:"image"`
	CreatedAt   time.Time         `json:"createdAt"`
	Rating      aggregateResponse `json:"rating"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

func toRatingResponse(r domain.Rating) ratingResponse {
	resp := ratingResponse{
		ID:        r.ID,
		Value:     r.Value,
		Comment:   r.Comment,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Images:    make([]imageResponse, 0, len(r.Images)),
	}
	if r.User != nil {
		resp.User = &userSummaryResponse{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email}
	}
	if r.Product != nil {
		resp.Product = &productSummaryResponse{ID: r.Product.ID, Name: r.Product.Name}
	}
	for _, img := range r.Images {
		resp.Images = append(resp.Images, imageResponse{
			ID:         img.ID,
			URL:        img.URL,
			ExternalID: img.ExternalID,
			CreatedAt:  img.CreatedAt,
		})
	}
	return resp
}

func toRatingResponses(items []domain.Rating) []ratingResponse {
	out := make([]ratingResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toRatingResponse(r))
	}
	return out
}

func toProductResponse(p domain.ProductWithStats) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		Rating:      aggregateResponse{Average: p.Rating.Average, Count: p.Rating.Count},
	}
}
