package service

import (
	"context"

	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/repository"
)

// CatalogService exposes products with their live rating aggregates.
type CatalogService struct {
	repo *repository.Repository
}

func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List returns every product, newest first.
func (s *CatalogService) List(ctx context.Context) ([]domain.ProductWithStats, error) {
	products, err := s.repo.Products.ListWithStats(ctx)
	if err != nil {
		return nil, mapRepoError("list products", err)
	}
	return products, nil
}

// Get returns one product or ErrNotFound.
func (s *CatalogService) Get(ctx context.Context, id string) (domain.ProductWithStats, error) {
	product, err := s.repo.Products.GetWithStats(ctx, id)
	if err != nil {
		return domain.ProductWithStats{}, mapRepoError("get product", err)
	}
	return product, nil
}
