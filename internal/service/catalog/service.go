package catalog

import (
	"context"

	"velora/internal/domain"
	categoryrepo "velora/internal/repository/category"
	productrepo "velora/internal/repository/product"
)

// Service is the storefront's read path over the product catalog.
type Service struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
}

func New(products productrepo.Repository, categories categoryrepo.Repository) *Service {
	return &Service{products: products, categories: categories}
}

func (s *Service) ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	return s.products.List(ctx, categorySlug)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}
