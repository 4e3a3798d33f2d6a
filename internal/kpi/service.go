package kpi

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/logger"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Service computes read-only aggregates over the sales, product, store and
// inventory tables. It accepts cleaned or raw tables interchangeably; the
// results are only as trustworthy as the input. Money math runs on
// decimals so report totals do not drift with float accumulation.
type Service struct {
	logg *logger.Logger
}

func NewService(logg *logger.Logger) *Service {
	return &Service{logg: logg}
}

// Overall is the headline aggregate across the whole sales table.
type Overall struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	Orders         int             `json:"orders"`
	Units          decimal.Decimal `json:"units"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	MarginPct      decimal.Decimal `json:"margin_pct"`
	ReturnRatePct  decimal.Decimal `json:"return_rate_pct"`
	AvgDiscountPct decimal.Decimal `json:"avg_discount_pct"`
}

// OverallKPIs joins sales to product cost and totals revenue, profit,
// orders and units. A sku with no joinable cost contributes zero cost, so
// profit overstates rather than silently dropping the row.
func (s *Service) OverallKPIs(sales, products *table.Table) Overall {
	costs := costBySKU(products)

	var (
		revenue  = decimal.Zero
		profit   = decimal.Zero
		units    = decimal.Zero
		discount = decimal.Zero
	)
	orders := map[string]bool{}
	returned := map[string]bool{}

	for i := 0; i < sales.Len(); i++ {
		qty := decCell(sales, i, schema.ColQty)
		price := decCell(sales, i, schema.ColSellingPrice)
		cost := costs[strings.TrimSpace(sales.Cell(i, schema.ColSKU))]

		revenue = revenue.Add(qty.Mul(price))
		profit = profit.Add(qty.Mul(price.Sub(cost)))
		units = units.Add(qty)
		discount = discount.Add(decCell(sales, i, schema.ColDiscountPct))

		orderID := strings.TrimSpace(sales.Cell(i, schema.ColOrderID))
		orders[orderID] = true
		if strings.EqualFold(strings.TrimSpace(sales.Cell(i, schema.ColReturnFlag)), "true") {
			returned[orderID] = true
		}
	}

	out := Overall{
		TotalRevenue: revenue,
		TotalProfit:  profit,
		Orders:       len(orders),
		Units:        units,
	}
	if len(orders) > 0 {
		orderCount := decimal.NewFromInt(int64(len(orders)))
		out.AvgOrderValue = revenue.Div(orderCount)
		out.ReturnRatePct = decimal.NewFromInt(int64(len(returned))).Div(orderCount).Mul(hundred)
	}
	if revenue.IsPositive() {
		out.MarginPct = profit.Div(revenue).Mul(hundred)
	}
	if sales.Len() > 0 {
		out.AvgDiscountPct = discount.Div(decimal.NewFromInt(int64(sales.Len())))
	}
	return out
}

// DimensionRow is one group of a by-dimension breakdown.
type DimensionRow struct {
	Value         string          `json:"value"`
	Revenue       decimal.Decimal `json:"revenue"`
	Profit        decimal.Decimal `json:"profit"`
	Units         decimal.Decimal `json:"units"`
	Orders        int             `json:"orders"`
	MarginPct     decimal.Decimal `json:"margin_pct"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// KPIsByDimension groups the overall aggregates by one field, joining
// stores (city, channel, fulfillment_type) or products (category, brand)
// when the field lives there. An unknown dimension yields an empty result,
// not an error. Groups sort by revenue descending, ties by value for a
// stable order.
func (s *Service) KPIsByDimension(sales, stores, products *table.Table, dimension string) []DimensionRow {
	lookup := dimensionLookup(sales, stores, products, dimension)
	if lookup == nil {
		return nil
	}
	costs := costBySKU(products)

	type group struct {
		revenue decimal.Decimal
		profit  decimal.Decimal
		units   decimal.Decimal
		orders  map[string]bool
	}
	groups := map[string]*group{}

	for i := 0; i < sales.Len(); i++ {
		value, ok := lookup(i)
		if !ok {
			continue
		}
		g := groups[value]
		if g == nil {
			g = &group{revenue: decimal.Zero, profit: decimal.Zero, units: decimal.Zero, orders: map[string]bool{}}
			groups[value] = g
		}
		qty := decCell(sales, i, schema.ColQty)
		price := decCell(sales, i, schema.ColSellingPrice)
		cost := costs[strings.TrimSpace(sales.Cell(i, schema.ColSKU))]
		g.revenue = g.revenue.Add(qty.Mul(price))
		g.profit = g.profit.Add(qty.Mul(price.Sub(cost)))
		g.units = g.units.Add(qty)
		g.orders[sales.Cell(i, schema.ColOrderID)] = true
	}

	out := make([]DimensionRow, 0, len(groups))
	for value, g := range groups {
		row := DimensionRow{
			Value:   value,
			Revenue: g.revenue,
			Profit:  g.profit,
			Units:   g.units,
			Orders:  len(g.orders),
		}
		if g.revenue.IsPositive() {
			row.MarginPct = g.profit.Div(g.revenue).Mul(hundred)
		}
		if len(g.orders) > 0 {
			row.AvgOrderValue = g.revenue.Div(decimal.NewFromInt(int64(len(g.orders))))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// DailyPoint is one calendar day of the sales trend series.
type DailyPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	Orders  int             `json:"orders"`
	Units   decimal.Decimal `json:"units"`
}

// DailyTrends buckets sales by the calendar date of order_time, sorted
// chronologically. The second return value counts rows excluded for an
// unparseable date so callers can warn when the exclusion rate is high.
func (s *Service) DailyTrends(sales, products *table.Table) ([]DailyPoint, int) {
	costs := costBySKU(products)

	type bucket struct {
		revenue decimal.Decimal
		profit  decimal.Decimal
		units   decimal.Decimal
		orders  map[string]bool
	}
	buckets := map[string]*bucket{}
	excluded := 0

	for i := 0; i < sales.Len(); i++ {
		ts, ok := cleaning.ParseTimestamp(sales.Cell(i, schema.ColOrderTime))
		if !ok {
			excluded++
			continue
		}
		date := ts.Format("2006-01-02")
		b := buckets[date]
		if b == nil {
			b = &bucket{revenue: decimal.Zero, profit: decimal.Zero, units: decimal.Zero, orders: map[string]bool{}}
			buckets[date] = b
		}
		qty := decCell(sales, i, schema.ColQty)
		price := decCell(sales, i, schema.ColSellingPrice)
		cost := costs[strings.TrimSpace(sales.Cell(i, schema.ColSKU))]
		b.revenue = b.revenue.Add(qty.Mul(price))
		b.profit = b.profit.Add(qty.Mul(price.Sub(cost)))
		b.units = b.units.Add(qty)
		b.orders[sales.Cell(i, schema.ColOrderID)] = true
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailyPoint, len(dates))
	for i, date := range dates {
		b := buckets[date]
		out[i] = DailyPoint{
			Date:    date,
			Revenue: b.revenue,
			Profit:  b.profit,
			Orders:  len(b.orders),
			Units:   b.units,
		}
	}
	return out, excluded
}

// StockoutRisk summarizes replenishment pressure across inventory rows.
type StockoutRisk struct {
	TotalRows           int     `json:"total_rows"`
	ZeroStock           int     `json:"zero_stock"`
	AtOrBelowReorder    int     `json:"at_or_below_reorder"`
	ZeroStockPct        float64 `json:"zero_stock_pct"`
	AtOrBelowReorderPct float64 `json:"at_or_below_reorder_pct"`
}

// StockoutRiskKPIs counts SKU-store rows at zero stock and at or below
// their reorder point.
func (s *Service) StockoutRiskKPIs(inventory *table.Table) StockoutRisk {
	out := StockoutRisk{TotalRows: inventory.Len()}
	for i := 0; i < inventory.Len(); i++ {
		stock := decCell(inventory, i, schema.ColStockOnHand)
		reorder := decCell(inventory, i, schema.ColReorderPoint)
		if stock.IsZero() {
			out.ZeroStock++
		}
		if stock.LessThanOrEqual(reorder) {
			out.AtOrBelowReorder++
		}
	}
	if out.TotalRows > 0 {
		out.ZeroStockPct = float64(out.ZeroStock) / float64(out.TotalRows) * 100
		out.AtOrBelowReorderPct = float64(out.AtOrBelowReorder) / float64(out.TotalRows) * 100
	}
	return out
}
