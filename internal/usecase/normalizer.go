package usecase

import (
	"strings"

	"github.com/dpplink/dpplink/internal/domain"
)

// columnSpec describes how one logical field is located in a source table:
// an ordered list of accepted header aliases, then a fixed positional fallback.
type columnSpec struct {
	field    string
	aliases  []string
	fallback int
}

// Source files come from different systems with inconsistent headers, so
// each logical field accepts several spellings before falling back to a
// fixed column position.
var (
	orderColumns = []columnSpec{
		{field: "purchase_order", aliases: []string{"purchase_order", "purchase order", "po"}, fallback: 0},
		{field: "product", aliases: []string{"product", "product_code", "sku"}, fallback: 1},
		{field: "base_url", aliases: []string{"base_url", "base url", "url"}, fallback: 2},
	}

	eanColumns = []columnSpec{
		{field: "product", aliases: []string{"product", "product_code", "sku"}, fallback: 0},
		{field: "ean", aliases: []string{"ean", "barcode"}, fallback: 1},
	}
)

// resolveColumns maps each spec to a column index in the header row.
// Alias matching is case-insensitive on trimmed header names; a spec that
// matches no alias uses its positional fallback if the table is wide enough.
func resolveColumns(header []string, specs []columnSpec) (map[string]int, error) {
	index := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	resolved := map[string]int{}
	for _, spec := range specs {
		ix, err := resolveColumn(index, len(header), spec)
		if err != nil {
			return nil, err
		}
		resolved[spec.field] = ix
	}

	return resolved, nil
}

func resolveColumn(index map[string]int, width int, spec columnSpec) (int, error) {
	for _, alias := range spec.aliases {
		if ix, ok := index[strings.ToLower(alias)]; ok {
			return ix, nil
		}
	}

	if spec.fallback >= 0 && spec.fallback < width {
		return spec.fallback, nil
	}

	return 0, &domain.MissingColumnError{
		Field:         spec.field,
		Aliases:       spec.aliases,
		FallbackIndex: spec.fallback,
	}
}

// cell returns the trimmed value at ix, and whether it counts as present.
// Empty strings and the literal text "nan" are treated as absent.
func cell(row []string, ix int) (string, bool) {
	if ix >= len(row) {
		return "", false
	}

	v := strings.TrimSpace(row[ix])
	if v == "" || strings.EqualFold(v, "nan") {
		return "", false
	}

	return v, true
}

// NormalizeOrders resolves order columns and returns the normalized records.
// The first row is the header. Rows missing any required field are dropped
// silently (accepted-loss policy); unresolvable columns are an error.
func NormalizeOrders(rows [][]string) ([]domain.OrderRecord, error) {
	if len(rows) == 0 {
		return nil, &domain.MissingColumnError{
			Field:         orderColumns[0].field,
			Aliases:       orderColumns[0].aliases,
			FallbackIndex: orderColumns[0].fallback,
		}
	}

	columns, err := resolveColumns(rows[0], orderColumns)
	if err != nil {
		return nil, err
	}

	orders := []domain.OrderRecord{}
	for _, row := range rows[1:] {
		po, ok := cell(row, columns["purchase_order"])
		if !ok {
			continue
		}

		product, ok := cell(row, columns["product"])
		if !ok {
			continue
		}

		baseURL, ok := cell(row, columns["base_url"])
		if !ok {
			continue
		}

		orders = append(orders, domain.OrderRecord{
			PurchaseOrder: po,
			Product:       product,
			BaseURL:       baseURL,
		})
	}

	return orders, nil
}

// NormalizeEans resolves EAN columns and returns the normalized records.
// Same contract as NormalizeOrders.
func NormalizeEans(rows [][]string) ([]domain.EanRecord, error) {
	if len(rows) == 0 {
		return nil, &domain.MissingColumnError{
			Field:         eanColumns[0].field,
			Aliases:       eanColumns[0].aliases,
			FallbackIndex: eanColumns[0].fallback,
		}
	}

	columns, err := resolveColumns(rows[0], eanColumns)
	if err != nil {
		return nil, err
	}

	eans := []domain.EanRecord{}
	for _, row := range rows[1:] {
		product, ok := cell(row, columns["product"])
		if !ok {
			continue
		}

		ean, ok := cell(row, columns["ean"])
		if !ok {
			continue
		}

		eans = append(eans, domain.EanRecord{
			Product: product,
			Ean:     ean,
		})
	}

	return eans, nil
}
