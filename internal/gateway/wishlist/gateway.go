package wishlist

import "context"

// Gateway is the remote wishlist store: one row per (user, product) pair.
type Gateway interface {
	ListProductIDs(ctx context.Context, userID string) ([]string, error)
	Insert(ctx context.Context, userID, productID string) error
	Delete(ctx context.Context, userID, productID string) error
}
