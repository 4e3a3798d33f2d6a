package kpi

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

var hundred = decimal.NewFromInt(100)

// decCell parses a numeric cell, tolerating whitespace and thousands
// separators; anything unparseable counts as zero, which is the documented
// join default for cost and the safe floor everywhere else.
func decCell(t *table.Table, row int, col string) decimal.Decimal {
	raw := strings.ReplaceAll(strings.TrimSpace(t.Cell(row, col)), ",", "")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// costBySKU indexes product unit cost by sku for the sales join.
func costBySKU(products *table.Table) map[string]decimal.Decimal {
	if products == nil {
		return map[string]decimal.Decimal{}
	}
	out := make(map[string]decimal.Decimal, products.Len())
	for i := 0; i < products.Len(); i++ {
		sku := strings.TrimSpace(products.Cell(i, schema.ColSKU))
		if sku == "" {
			continue
		}
		out[sku] = decCell(products, i, schema.ColUnitCost)
	}
	return out
}

// fieldBySKU indexes an arbitrary product column by sku.
func fieldBySKU(products *table.Table, col string) map[string]string {
	out := make(map[string]string, products.Len())
	for i := 0; i < products.Len(); i++ {
		sku := strings.TrimSpace(products.Cell(i, schema.ColSKU))
		if sku != "" {
			out[sku] = products.Cell(i, col)
		}
	}
	return out
}

// fieldByStore indexes an arbitrary store column by store_id.
func fieldByStore(stores *table.Table, col string) map[string]string {
	out := make(map[string]string, stores.Len())
	for i := 0; i < stores.Len(); i++ {
		storeID := strings.TrimSpace(stores.Cell(i, schema.ColStoreID))
		if storeID != "" {
			out[storeID] = stores.Cell(i, col)
		}
	}
	return out
}

// dimensionLookup resolves how a dimension value is read for each sales
// row: directly off the sales table when the column exists there,
// otherwise through the product or store join. Nil means the dimension is
// unknown everywhere, which callers surface as an empty result.
func dimensionLookup(sales, stores, products *table.Table, dimension string) func(row int) (string, bool) {
	dim := strings.ToLower(strings.TrimSpace(dimension))
	if dim == "" {
		return nil
	}
	if sales.HasColumn(dim) {
		return func(row int) (string, bool) {
			v := strings.TrimSpace(sales.Cell(row, dim))
			return v, v != ""
		}
	}
	if products != nil && products.HasColumn(dim) {
		bySKU := fieldBySKU(products, dim)
		return func(row int) (string, bool) {
			v, ok := bySKU[strings.TrimSpace(sales.Cell(row, schema.ColSKU))]
			return v, ok && v != ""
		}
	}
	if stores != nil && stores.HasColumn(dim) {
		byStore := fieldByStore(stores, dim)
		return func(row int) (string, bool) {
			v, ok := byStore[strings.TrimSpace(sales.Cell(row, schema.ColStoreID))]
			return v, ok && v != ""
		}
	}
	return nil
}
