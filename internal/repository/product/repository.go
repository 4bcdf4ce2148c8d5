package product

import (
	"context"

	"velora/internal/domain"
)

type Repository interface {
	List(ctx context.Context, categorySlug string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
