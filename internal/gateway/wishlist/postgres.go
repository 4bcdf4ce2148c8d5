package wishlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresGateway struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Gateway {
	return &postgresGateway{pool: pool}
}

func (g *postgresGateway) ListProductIDs(ctx context.Context, userID string) ([]string, error) {
	const q = `
SELECT product_id::text
FROM wishlist
WHERE user_id = $1
ORDER BY added_at ASC
`
	rows, err := g.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist for %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (g *postgresGateway) Insert(ctx context.Context, userID, productID string) error {
	const q = `
INSERT INTO wishlist (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	if _, err := g.pool.Exec(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("insert wishlist %s/%s: %w", userID, productID, err)
	}
	return nil
}

func (g *postgresGateway) Delete(ctx context.Context, userID, productID string) error {
	const q = `
DELETE FROM wishlist
WHERE user_id = $1 AND product_id = $2
`
	if _, err := g.pool.Exec(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("delete wishlist %s/%s: %w", userID, productID, err)
	}
	return nil
}
