package category

import (
	"context"

	"velora/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}
