package cart

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"velora/internal/domain"
)

type postgresGateway struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Gateway {
	return &postgresGateway{pool: pool}
}

func (g *postgresGateway) FindOrCreateCart(ctx context.Context, userID string) (string, error) {
	// The no-op update makes the insert return the existing row's id on
	// conflict instead of no rows.
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id::text
`
	var cartID string
	if err := g.pool.QueryRow(ctx, q, userID).Scan(&cartID); err != nil {
		return "", fmt.Errorf("find or create cart for %s: %w", userID, err)
	}
	return cartID, nil
}

func (g *postgresGateway) ListItems(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const q = `
SELECT p.id::text, p.name, p.price::text, COALESCE(p.images[1], ''), ci.quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.added_at ASC
`
	rows, err := g.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, fmt.Errorf("list items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		var price string
		if err := rows.Scan(&line.ProductID, &line.Name, &price, &line.ImageURL, &line.Quantity); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (g *postgresGateway) UpsertItem(ctx context.Context, cartID, productID string, quantity int) error {
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
`
	if _, err := g.pool.Exec(ctx, q, cartID, productID, quantity); err != nil {
		return fmt.Errorf("upsert item %s in cart %s: %w", productID, cartID, err)
	}
	return nil
}

func (g *postgresGateway) DeleteItem(ctx context.Context, cartID, productID string) error {
	const q = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`
	if _, err := g.pool.Exec(ctx, q, cartID, productID); err != nil {
		return fmt.Errorf("delete item %s from cart %s: %w", productID, cartID, err)
	}
	return nil
}

func (g *postgresGateway) DeleteAllItems(ctx context.Context, cartID string) error {
	const q = `
DELETE FROM cart_items
WHERE cart_id = $1
`
	if _, err := g.pool.Exec(ctx, q, cartID); err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	return nil
}
