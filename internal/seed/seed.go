package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
	Image       string
	Category    string
}

// Apply inserts demo catalog data for manual testing. It is idempotent via
// ON CONFLICT: named products are updated in place, random fillers are only
// inserted when their generated name is new.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categoryIDs := map[string]string{}
	for slug, name := range map[string]string{"apparel": "Apparel", "home": "Home"} {
		id, err := ensureCategory(ctx, pool, name, slug)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", slug, err)
		}
		categoryIDs[slug] = id
	}

	products := []productSeed{
		{
			Name:        "Velora T-Shirt",
			Description: "Soft cotton tee",
			Price:       decimal.RequireFromString("19.99"),
			Currency:    "USD",
			Image:       "https://cdn.velora.dev/tshirt.jpg",
			Category:    "apparel",
		},
		{
			Name:        "Velora Mug",
			Description: "Ceramic mug with logo",
			Price:       decimal.RequireFromString("12.99"),
			Currency:    "USD",
			Image:       "https://cdn.velora.dev/mug.jpg",
			Category:    "home",
		},
	}

	slugs := []string{"apparel", "home"}
	for i := 0; i < 8; i++ {
		products = append(products, productSeed{
			Name:        gofakeit.ProductName(),
			Description: gofakeit.ProductDescription(),
			Price:       decimal.NewFromFloat(gofakeit.Price(5, 200)).Round(2),
			Currency:    "USD",
			Image:       gofakeit.ImageURL(640, 480),
			Category:    slugs[i%len(slugs)],
		})
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}

	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name, slug string) (string, error) {
	const q = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	err := pool.QueryRow(ctx, q, name, slug).Scan(&id)
	return id, err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (name, description, price, currency, images, category_id)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6::uuid)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    currency = EXCLUDED.currency,
    images = EXCLUDED.images,
    category_id = EXCLUDED.category_id
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, p.Price.String(), p.Currency, []string{p.Image}, categoryID)
	return err
}
