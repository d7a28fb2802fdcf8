package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a product sheet and inserts or updates products by slug.
//
// Required columns: name, price, product_type. Optional: slug, description,
// stock, is_featured, is_bestseller, is_new, free_delivery. Prices are in
// pesos ("350" or "350.50").
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run upserts every row and returns how many were written. It stops at the
// first invalid row, reporting its line number.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"name", "price", "product_type"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing required column %q", col)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Slug, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		Name:        pick(record, index, "name"),
		Slug:        pick(record, index, "slug"),
		Description: pick(record, index, "description"),
		ProductType: domain.ProductType(strings.ToLower(pick(record, index, "product_type"))),
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if p.Slug == "" {
		p.Slug = productsvc.Slugify(p.Name)
	}
	if !p.ProductType.Valid() {
		return p, fmt.Errorf("unknown product type %q", p.ProductType)
	}

	cents, err := parsePesos(pick(record, index, "price"))
	if err != nil {
		return p, err
	}
	p.PriceCents = cents

	if raw := pick(record, index, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return p, fmt.Errorf("invalid stock %q", raw)
		}
		p.StockQuantity = stock
	}

	p.IsFeatured = flag(record, index, "is_featured")
	p.IsBestseller = flag(record, index, "is_bestseller")
	p.IsNew = flag(record, index, "is_new")
	p.FreeDelivery = flag(record, index, "free_delivery")
	return p, nil
}

// parsePesos converts "350", "350.5" or "350.50" to cents.
func parsePesos(raw string) (int64, error) {
	raw = strings.TrimPrefix(strings.ReplaceAll(raw, ",", ""), "₱")
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	pesos, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || pesos < 0 {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q", raw)
		}
	}
	return pesos*100 + cents, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func flag(record []string, index map[string]int, key string) bool {
	switch strings.ToLower(pick(record, index, key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
