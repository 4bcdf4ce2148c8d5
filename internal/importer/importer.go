package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"velora/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products, creating
// categories on first sight. Expected headers: name, description, price,
// currency, images (pipe-separated), category.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// Run parses CSV rows and upserts products. It returns the number imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	categoryIDs := map[string]string{}
	var imported int

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		name := field(record, index, "name")
		if name == "" {
			continue
		}
		price, err := decimal.NewFromString(field(record, index, "price"))
		if err != nil {
			return imported, fmt.Errorf("row %q: parse price: %w", name, err)
		}

		p := domain.Product{
			Name:        name,
			Description: field(record, index, "description"),
			Price:       price,
			Currency:    field(record, index, "currency"),
		}
		if p.Currency == "" {
			p.Currency = "USD"
		}
		if images := field(record, index, "images"); images != "" {
			for _, u := range strings.Split(images, "|") {
				if u = strings.TrimSpace(u); u != "" {
					p.Images = append(p.Images, u)
				}
			}
		}

		if slug := field(record, index, "category"); slug != "" {
			id, ok := categoryIDs[slug]
			if !ok {
				cat, err := i.categories.Upsert(ctx, domain.Category{Name: titleFromSlug(slug), Slug: slug})
				if err != nil {
					return imported, fmt.Errorf("row %q: upsert category %s: %w", name, slug, err)
				}
				id = cat.ID
				categoryIDs[slug] = id
			}
			p.CategoryID = &id
		}

		if _, err := i.products.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("row %q: upsert product: %w", name, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
