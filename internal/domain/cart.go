package domain

import "github.com/shopspring/decimal"

// OwnerMode says where the current cart state is sourced from.
type OwnerMode string

const (
	// OwnerAnonymous means the cart lives in device-local storage only.
	OwnerAnonymous OwnerMode = "anonymous"
	// OwnerAuthenticated means the cart mirrors a per-user remote record.
	OwnerAuthenticated OwnerMode = "authenticated"
)

// CartLine is one product's presence in a cart. Name, UnitPrice and ImageURL
// are a snapshot of the product at the time the line was created; they are not
// re-fetched on render. Quantity is always >= 1: a line that would drop to
// zero is removed instead.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// LineFromProduct builds a quantity-1 line snapshot from a catalog product.
func LineFromProduct(p Product) CartLine {
	line := CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	}
	if len(p.Images) > 0 {
		line.ImageURL = p.Images[0]
	}
	return line
}

// CartState is a read-only view of the engine's cart. Count and Total are
// recomputed from Lines on every snapshot, never stored.
type CartState struct {
	Lines        []CartLine      `json:"lines"`
	Mode         OwnerMode       `json:"mode"`
	RemoteCartID string          `json:"-"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
	Syncing      bool            `json:"syncing"`
}

// CountLines sums line quantities.
func CountLines(lines []CartLine) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// TotalLines sums quantity times unit price over all lines.
func TotalLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
