package simulation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaepulse/pulse-backend/pkg/config"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

func testConfig() config.SimulatorConfig {
	return config.SimulatorConfig{
		DefaultElasticity:      1.5,
		FulfillmentCostPerUnit: 2,
		PromoCostRevenueCap:    0.1,
		HighDiscountThreshold:  30,
	}
}

func newTestService() *Service {
	return NewService(testConfig(), nil, nil)
}

// thirtyDayFixture builds a history spanning exactly 30 days with 10
// orders per day at AED 100 each: AED 1,000 daily revenue.
func thirtyDayFixture() (sales, stores, products *table.Table) {
	products = table.New("sku", "category", "base_price", "unit_cost", "brand", "launch_flag")
	products.AppendRow("P1", "Electronics", "100", "60", "Acme", "Regular")

	stores = table.New("store_id", "city", "channel", "fulfillment_type")
	stores.AppendRow("S1", "Dubai", "Online", "Own")

	sales = table.New("order_id", "sku", "store_id", "qty", "selling_price", "order_time", "discount_pct", "payment_status", "return_flag")
	for day := 1; day <= 30; day++ {
		for n := 1; n <= 10; n++ {
			sales.AppendRow(
				fmt.Sprintf("O%02d-%02d", day, n),
				"P1", "S1", "1", "100",
				fmt.Sprintf("2024-03-%02d 12:00:00", day),
				"0", "Paid", "false",
			)
		}
	}
	return sales, stores, products
}

func electronicsParams(discount float64) Params {
	return Params{
		DiscountPct:  discount,
		PromoBudget:  5000,
		MarginFloor:  15,
		City:         "All",
		Channel:      "All",
		Category:     "Electronics",
		CampaignDays: 7,
	}
}

func TestSimulateCampaignScenario(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	res, err := svc.SimulateCampaign(context.Background(), sales, stores, products, electronicsParams(10))
	require.NoError(t, err)
	require.NotNil(t, res.Outputs)
	require.NotNil(t, res.Comparison)

	assert.InDelta(t, 18.0, res.Outputs.DemandLiftPct, 1e-9, "10%% discount x 1.8 elasticity")
	assert.InDelta(t, 70, res.Comparison.BaselineOrders, 1e-9, "10 orders/day over a 7-day window")
	assert.InDelta(t, 7000, res.Comparison.BaselineRevenue, 1e-9)
	assert.InDelta(t, 2800, res.Comparison.BaselineProfit, 1e-9)

	// 70 baseline units x 1.18 lift, sold at 100 less the 10% discount.
	assert.InDelta(t, 82.6, res.Outputs.ExpectedUnits, 1e-9)
	assert.InDelta(t, 7434, res.Outputs.ExpectedRevenue, 1e-6)
	assert.InDelta(t, 743.4, res.Outputs.PromoCost, 1e-6, "capped at 10% of expected revenue despite the 5000 budget")
	assert.InDelta(t, 165.2, res.Outputs.FulfillmentCost, 1e-6)
	assert.InDelta(t, 4956, res.Outputs.COGS, 1e-6)
	assert.InDelta(t, 7434-4956-743.4-165.2, res.Outputs.ExpectedNetProfit, 1e-6)
}

func TestSimulateCampaignMonotoneOrders(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	at10, err := svc.SimulateCampaign(context.Background(), sales, stores, products, electronicsParams(10))
	require.NoError(t, err)
	at20, err := svc.SimulateCampaign(context.Background(), sales, stores, products, electronicsParams(20))
	require.NoError(t, err)

	require.NotNil(t, at10.Outputs)
	require.NotNil(t, at20.Outputs)
	assert.GreaterOrEqual(t, at20.Outputs.ExpectedOrders, at10.Outputs.ExpectedOrders)
}

func TestSimulateCampaignDefaultElasticity(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	params := electronicsParams(10)
	params.Category = "All"
	res, err := svc.SimulateCampaign(context.Background(), sales, stores, products, params)
	require.NoError(t, err)
	require.NotNil(t, res.Outputs)
	assert.InDelta(t, 15.0, res.Outputs.DemandLiftPct, 1e-9, "no single category targeted, default 1.5 applies")

	params.Category = "Antiques"
	res, err = svc.SimulateCampaign(context.Background(), sales, stores, products, params)
	require.NoError(t, err)
	require.Nil(t, res.Outputs, "unknown category matches no rows")
}

func TestSimulateCampaignEmptyFilter(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	params := electronicsParams(10)
	params.City = "Fujairah"
	res, err := svc.SimulateCampaign(context.Background(), sales, stores, products, params)
	require.NoError(t, err, "an empty match is a warning, not an error")

	assert.Nil(t, res.Outputs)
	assert.Nil(t, res.Comparison)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "no data matches")
}

func TestSimulateCampaignWarnings(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	params := electronicsParams(35)
	res, err := svc.SimulateCampaign(context.Background(), sales, stores, products, params)
	require.NoError(t, err)
	require.NotNil(t, res.Outputs)

	joined := fmt.Sprint(res.Warnings)
	assert.Contains(t, joined, "erode brand value")
}

func TestSimulateCampaignParamValidation(t *testing.T) {
	svc := newTestService()
	sales, stores, products := thirtyDayFixture()

	bad := electronicsParams(10)
	bad.DiscountPct = -5
	_, err := svc.SimulateCampaign(context.Background(), sales, stores, products, bad)
	require.Error(t, err)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	bad = electronicsParams(10)
	bad.CampaignDays = 45
	_, err = svc.SimulateCampaign(context.Background(), sales, stores, products, bad)
	assert.Error(t, err)
}
