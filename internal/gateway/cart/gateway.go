package cart

import (
	"context"

	"velora/internal/domain"
)

// Gateway is the remote cart store: one durable cart row per user, with one
// item row per (cart, product) pair.
type Gateway interface {
	// FindOrCreateCart returns the id of the user's cart row, creating it on
	// first use.
	FindOrCreateCart(ctx context.Context, userID string) (string, error)
	// ListItems returns the cart's items joined with their product snapshots,
	// in insertion order.
	ListItems(ctx context.Context, cartID string) ([]domain.CartLine, error)
	// UpsertItem sets the absolute quantity for (cartID, productID). It is
	// idempotent: repeated calls converge on one row instead of appending.
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID string) error
	DeleteAllItems(ctx context.Context, cartID string) error
}
