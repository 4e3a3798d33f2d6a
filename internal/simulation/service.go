package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/config"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/logger"
	"github.com/uaepulse/pulse-backend/pkg/metrics"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// defaultElasticity maps category to the demand-lift multiplier applied per
// discount point. Categories absent here fall back to the configured
// default.
var defaultElasticity = map[string]float64{
	"Electronics": 1.8,
	"Fashion":     2.0,
	"Grocery":     1.2,
	"Beauty":      1.6,
	"Home":        1.4,
	"Sports":      1.7,
}

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "All"

var validate = validator.New()

// Params are one simulation request. Ranges are enforced at the boundary;
// the algorithm itself assumes they hold.
type Params struct {
	DiscountPct  float64 `json:"discount_pct" validate:"gte=0,lte=50"`
	PromoBudget  float64 `json:"promo_budget" validate:"gte=0"`
	MarginFloor  float64 `json:"margin_floor" validate:"gte=0,lte=50"`
	City         string  `json:"city"`
	Channel      string  `json:"channel"`
	Category     string  `json:"category"`
	CampaignDays int     `json:"campaign_days" validate:"gte=1,lte=30"`
}

// Validate rejects out-of-range parameters before they reach the model.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid simulation parameters")
	}
	return nil
}

// Outputs is the post-campaign projection.
type Outputs struct {
	ExpectedRevenue   float64 `json:"expected_revenue"`
	ExpectedOrders    float64 `json:"expected_orders"`
	ExpectedUnits     float64 `json:"expected_units"`
	ExpectedNetProfit float64 `json:"expected_net_profit"`
	ExpectedMarginPct float64 `json:"expected_margin_pct"`
	DemandLiftPct     float64 `json:"demand_lift_pct"`
	ROIPct            float64 `json:"roi_pct"`
	PromoCost         float64 `json:"promo_cost"`
	FulfillmentCost   float64 `json:"fulfillment_cost"`
	COGS              float64 `json:"cogs"`
	AvgSellingPrice   float64 `json:"avg_selling_price"`
}

// Comparison is the status-quo projection over the same window and the
// relative movement against it.
type Comparison struct {
	BaselineRevenue  float64 `json:"baseline_revenue"`
	BaselineProfit   float64 `json:"baseline_profit"`
	BaselineOrders   float64 `json:"baseline_orders"`
	RevenueChangePct float64 `json:"revenue_change_pct"`
	ProfitChangePct  float64 `json:"profit_change_pct"`
	OrderChangePct   float64 `json:"order_change_pct"`
}

// Result is one simulation outcome. Outputs and Comparison are nil when
// the targeting filters match no data; Warnings then explains why.
type Result struct {
	Inputs     Params      `json:"inputs"`
	Outputs    *Outputs    `json:"outputs"`
	Comparison *Comparison `json:"comparison"`
	Warnings   []string    `json:"warnings"`
}

// Service runs promotional what-if projections over cleaned (or raw)
// sales, store and product tables. Stateless: every call is a pure
// function of its inputs plus the constants configured at construction.
type Service struct {
	cfg        config.SimulatorConfig
	elasticity map[string]float64
	logg       *logger.Logger
	metrics    *metrics.PipelineMetrics
}

func NewService(cfg config.SimulatorConfig, logg *logger.Logger, m *metrics.PipelineMetrics) *Service {
	elasticity := make(map[string]float64, len(defaultElasticity))
	for k, v := range defaultElasticity {
		elasticity[k] = v
	}
	return &Service{cfg: cfg, elasticity: elasticity, logg: logg, metrics: m}
}

type observation struct {
	qty      float64
	price    float64
	cost     float64
	orderID  string
	orderDay time.Time
	hasDay   bool
}

// SimulateCampaign joins sales with stores and products, applies the
// targeting filters, scales the observed totals to the campaign window and
// projects demand with a linear elasticity model: lift_pct = discount_pct
// x elasticity, no diminishing-returns decay.
func (s *Service) SimulateCampaign(ctx context.Context, sales, stores, products *table.Table, params Params) (Result, error) {
	if err := params.Validate(); err != nil {
		s.metrics.IncSimulation("invalid_params")
		return Result{}, err
	}
	result := Result{Inputs: params, Warnings: []string{}}

	matched := s.filterObservations(sales, stores, products, params)
	if len(matched) == 0 {
		result.Warnings = append(result.Warnings, "no data matches the selected filters")
		s.metrics.IncSimulation("empty_filter")
		if s.logg != nil {
			s.logg.Warn(ctx, "simulation matched no rows")
		}
		return result, nil
	}

	var (
		totalRevenue float64
		totalProfit  float64
		totalUnits   float64
		totalCOGS    float64
	)
	orders := map[string]bool{}
	for _, obs := range matched {
		totalRevenue += obs.qty * obs.price
		totalProfit += obs.qty * (obs.price - obs.cost)
		totalUnits += obs.qty
		totalCOGS += obs.qty * obs.cost
		orders[obs.orderID] = true
	}

	days := observedDays(matched)
	window := float64(params.CampaignDays)
	baselineRevenue := totalRevenue / days * window
	baselineProfit := totalProfit / days * window
	baselineOrders := float64(len(orders)) / days * window
	baselineUnits := totalUnits / days * window

	lift := params.DiscountPct * s.elasticityFor(params.Category)
	growth := 1 + lift/100

	avgPrice := safeDiv(totalRevenue, totalUnits)
	avgUnitCost := safeDiv(totalCOGS, totalUnits)

	expectedUnits := baselineUnits * growth
	expectedOrders := baselineOrders * growth
	expectedRevenue := expectedUnits * avgPrice * (1 - params.DiscountPct/100)

	promoCost := math.Min(params.PromoBudget, s.cfg.PromoCostRevenueCap*expectedRevenue)
	fulfillmentCost := expectedUnits * s.cfg.FulfillmentCostPerUnit
	cogs := expectedUnits * avgUnitCost
	netProfit := expectedRevenue - cogs - promoCost - fulfillmentCost

	marginPct := safeDiv(netProfit, expectedRevenue) * 100
	roiPct := safeDiv(netProfit-baselineProfit, promoCost+fulfillmentCost) * 100

	result.Outputs = &Outputs{
		ExpectedRevenue:   expectedRevenue,
		ExpectedOrders:    expectedOrders,
		ExpectedUnits:     expectedUnits,
		ExpectedNetProfit: netProfit,
		ExpectedMarginPct: marginPct,
		DemandLiftPct:     lift,
		ROIPct:            roiPct,
		PromoCost:         promoCost,
		FulfillmentCost:   fulfillmentCost,
		COGS:              cogs,
		AvgSellingPrice:   avgPrice,
	}
	result.Comparison = &Comparison{
		BaselineRevenue:  baselineRevenue,
		BaselineProfit:   baselineProfit,
		BaselineOrders:   baselineOrders,
		RevenueChangePct: safeDiv(expectedRevenue-baselineRevenue, baselineRevenue) * 100,
		ProfitChangePct:  safeDiv(netProfit-baselineProfit, baselineProfit) * 100,
		OrderChangePct:   safeDiv(expectedOrders-baselineOrders, baselineOrders) * 100,
	}
	result.Warnings = append(result.Warnings, s.policyWarnings(params, marginPct, roiPct, netProfit)...)

	s.metrics.IncSimulation("success")
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"rows_matched":    len(matched),
			"demand_lift_pct": lift,
			"roi_pct":         roiPct,
		})
		s.logg.Info(ctx, "campaign simulated")
	}
	return result, nil
}

// filterObservations joins each sales row to its store and product and
// keeps the rows passing the equality filters. Rows that cannot join the
// filtered dimension are excluded; cost defaults to 0 when the product is
// unjoinable, mirroring the KPI join rule.
func (s *Service) filterObservations(sales, stores, products *table.Table, params Params) []observation {
	cityByStore := indexColumn(stores, schema.ColStoreID, schema.ColCity)
	channelByStore := indexColumn(stores, schema.ColStoreID, schema.ColChannel)
	categoryBySKU := indexColumn(products, schema.ColSKU, schema.ColCategory)
	costBySKU := indexColumn(products, schema.ColSKU, schema.ColUnitCost)

	var out []observation
	for i := 0; i < sales.Len(); i++ {
		sku := strings.TrimSpace(sales.Cell(i, schema.ColSKU))
		storeID := strings.TrimSpace(sales.Cell(i, schema.ColStoreID))

		if !matchesFilter(params.City, cityByStore[storeID]) ||
			!matchesFilter(params.Channel, channelByStore[storeID]) ||
			!matchesFilter(params.Category, categoryBySKU[sku]) {
			continue
		}

		obs := observation{
			qty:     numCell(sales, i, schema.ColQty),
			price:   numCell(sales, i, schema.ColSellingPrice),
			orderID: strings.TrimSpace(sales.Cell(i, schema.ColOrderID)),
		}
		if raw, ok := costBySKU[sku]; ok {
			obs.cost = parseFloat(raw)
		}
		if ts, ok := parseDay(sales.Cell(i, schema.ColOrderTime)); ok {
			obs.orderDay = ts
			obs.hasDay = true
		}
		out = append(out, obs)
	}
	return out
}

// observedDays is the inclusive calendar span of the matched rows,
// floored at one day so a single-day history still yields a rate.
func observedDays(matched []observation) float64 {
	var minDay, maxDay time.Time
	seen := false
	for _, obs := range matched {
		if !obs.hasDay {
			continue
		}
		if !seen || obs.orderDay.Before(minDay) {
			minDay = obs.orderDay
		}
		if !seen || obs.orderDay.After(maxDay) {
			maxDay = obs.orderDay
		}
		seen = true
	}
	if !seen {
		return 1
	}
	days := maxDay.Sub(minDay).Hours()/24 + 1
	if days < 1 {
		return 1
	}
	return days
}

func (s *Service) elasticityFor(category string) float64 {
	if isAll(category) {
		return s.cfg.DefaultElasticity
	}
	if e, ok := s.elasticity[category]; ok {
		return e
	}
	return s.cfg.DefaultElasticity
}

func (s *Service) policyWarnings(params Params, marginPct, roiPct, netProfit float64) []string {
	var warnings []string
	if marginPct < params.MarginFloor {
		warnings = append(warnings, fmt.Sprintf("projected margin %.1f%% is below the %.1f%% floor", marginPct, params.MarginFloor))
	}
	if roiPct < 0 {
		warnings = append(warnings, fmt.Sprintf("projected ROI is negative (%.1f%%)", roiPct))
	}
	if params.DiscountPct > s.cfg.HighDiscountThreshold {
		warnings = append(warnings, fmt.Sprintf("discount above %.0f%% may erode brand value", s.cfg.HighDiscountThreshold))
	}
	if netProfit < 0 {
		warnings = append(warnings, "campaign projects a net loss")
	}
	sort.Strings(warnings)
	return warnings
}

func isAll(value string) bool {
	return value == "" || strings.EqualFold(value, FilterAll)
}

func matchesFilter(filter, value string) bool {
	if isAll(filter) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(filter))
}
