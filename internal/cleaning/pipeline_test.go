package cleaning

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

func testConfig() config.CleaningConfig {
	return config.CleaningConfig{
		EpochYear:           2020,
		UnitCostRatio:       0.6,
		UnitCostFloor:       1,
		ReorderPointDefault: 10,
		LeadTimeDaysDefault: 3,
		ExtremeMultiplier:   4,
		CapMultiplier:       2.5,
		FuzzyThreshold:      0.85,
	}
}

func testClock() func() time.Time {
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func newTestPipeline() *Pipeline {
	return New(testConfig(), nil, nil, WithNow(testClock()))
}

func buildTable(columns []string, rows ...[]string) *table.Table {
	t := table.New(columns...)
	for _, row := range rows {
		t.AppendRow(row...)
	}
	return t
}

// messyFixtures returns four tables exercising alias headers, enum
// variants, missing values, negatives, bad timestamps, duplicates and
// dangling foreign keys all at once.
func messyFixtures() (products, stores, sales, inventory *table.Table) {
	products = buildTable(
		[]string{"Product_ID", "Category", "Price", "unit_cost", "brand", "launch_flag"},
		[]string{"P1", "Electronics", "100", "60", "Acme", "New"},
		[]string{"P2", "electronics ", "", "120", "Acme", ""},
		[]string{"P1", "Electronics", "100", "60", "Acme", ""},
		[]string{"", "Fashion", "80", "", "NoName", ""},
		[]string{"P5", "Toys", "-50", "", "Blocks", ""},
	)
	stores = buildTable(
		[]string{"StoreID", "Emirate", "Sales_Channel", "fulfillment"},
		[]string{"S1", "Dubai", "Online", "Own"},
		[]string{"S2", "dubayy", "app", ""},
		[]string{"S3", "", "Online", "Own"},
		[]string{"S1", "Dubai", "Online", "Own"},
	)
	sales = buildTable(
		[]string{"OrderID", "product_id", "storeid", "Quantity", "amount", "order_ts", "discount", "payment", "is_returned"},
		[]string{"O1", "P1", "S1", "2", "50", "2024-01-15 10:00:00", "10", "Paid", "false"},
		[]string{"O2", "P2", "S2", "-3", "", "2024-02-01 09:00:00", "", "paid", "yes"},
		[]string{"O3", "PX", "S1", "1", "40", "2024-03-01 12:00:00", "0", "Paid", "false"},
		[]string{"O4", "P1", "S1", "1", "30", "2030-01-01 00:00:00", "0", "Paid", "false"},
		[]string{"O1", "P1", "S1", "5", "60", "2024-01-20 08:00:00", "0", "Paid", "false"},
		[]string{"O6", "P1", "S9", "1", "20", "2024-04-01 15:00:00", "0", "Paid", "false"},
	)
	inventory = buildTable(
		[]string{"product_id", "storeid", "stock", "reorder", "lead_time", "as_of_date"},
		[]string{"P1", "S1", "50", "10", "3", "2024-05-01"},
		[]string{"P2", "S2", "-5", "", "", "2024-05-01"},
		[]string{"PX", "S1", "10", "10", "3", "2024-05-01"},
		[]string{"P1", "S1", "80", "10", "3", "2024-05-01"},
	)
	return products, stores, sales, inventory
}

func numCell(t *testing.T, tbl *table.Table, row int, col string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(tbl.Cell(row, col), 64)
	require.NoError(t, err, "cell %d.%s should be numeric", row, col)
	return v
}

func issueTypes(log *Log) map[string]int {
	out := make(map[string]int)
	for _, issue := range log.Issues {
		out[issue.Type]++
	}
	return out
}

func TestCleanAllRepairsAndRejections(t *testing.T) {
	p := newTestPipeline()
	products, stores, sales, inventory := messyFixtures()
	res, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	// Products: P1 dup and the empty-sku row are gone.
	require.Equal(t, 3, res.Products.Len())
	assert.Equal(t, []string{"P1", "P2", "P5"}, res.Products.Column("sku"))
	assert.Equal(t, "Electronics", res.Products.Cell(1, "category"))
	// P2 price imputed to the column median, then its inverted cost reset
	// to 60% of that price.
	assert.InDelta(t, 90, numCell(t, res.Products, 1, "base_price"), 1e-9)
	assert.InDelta(t, 54, numCell(t, res.Products, 1, "unit_cost"), 1e-9)
	// P5's negative price resets to the post-imputation median.
	assert.InDelta(t, 95, numCell(t, res.Products, 2, "base_price"), 1e-9)
	assert.Equal(t, "Regular", res.Products.Cell(1, "launch_flag"))

	// Stores: empty city rejected, duplicate S1 dropped, synonyms resolved.
	require.Equal(t, 2, res.Stores.Len())
	assert.Equal(t, "Dubai", res.Stores.Cell(1, "city"))
	assert.Equal(t, "Mobile", res.Stores.Cell(1, "channel"))
	assert.Equal(t, "Own", res.Stores.Cell(1, "fulfillment_type"))

	// Sales: duplicate keeps the most recent record; FK and timestamp
	// violations drop their rows.
	require.Equal(t, 2, res.Sales.Len())
	assert.Equal(t, []string{"O2", "O1"}, res.Sales.Column("order_id"))
	assert.Equal(t, "2024-01-20 08:00:00", res.Sales.Cell(1, "order_time"))
	assert.InDelta(t, 1, numCell(t, res.Sales, 0, "qty"), 1e-9)
	assert.InDelta(t, 40, numCell(t, res.Sales, 0, "selling_price"), 1e-9)
	assert.InDelta(t, 0, numCell(t, res.Sales, 0, "discount_pct"), 1e-9)
	assert.Equal(t, "Paid", res.Sales.Cell(0, "payment_status"))
	assert.Equal(t, "true", res.Sales.Cell(0, "return_flag"))

	// Inventory: the later snapshot wins the dedup.
	require.Equal(t, 2, res.Inventory.Len())
	assert.InDelta(t, 0, numCell(t, res.Inventory, 0, "stock_on_hand"), 1e-9)
	assert.InDelta(t, 10, numCell(t, res.Inventory, 0, "reorder_point"), 1e-9)
	assert.InDelta(t, 3, numCell(t, res.Inventory, 0, "lead_time_days"), 1e-9)
	assert.InDelta(t, 80, numCell(t, res.Inventory, 1, "stock_on_hand"), 1e-9)

	types := issueTypes(res.Issues)
	for _, expected := range []string{
		"INVALID_SKU", "DUPLICATE_SKU", "MISSING_BASE_PRICE", "NEGATIVE_BASE_PRICE",
		"MISSING_UNIT_COST", "COST_EXCEEDS_PRICE", "MISSING_LAUNCH_FLAG",
		"INVALID_CITY", "DUPLICATE_STORE_ID", "NONSTANDARD_CITY",
		"NEGATIVE_QTY", "MISSING_SELLING_PRICE", "FUTURE_DATE_OUTLIER",
		"DUPLICATE_ORDER_ID", "INVALID_SKU_FK", "INVALID_STORE_FK",
		"NEGATIVE_STOCK_ON_HAND",
	} {
		assert.Contains(t, types, expected)
	}
	assert.NotContains(t, types, IssueNoIssues)
}

func TestCleanAllForeignKeyClosure(t *testing.T) {
	p := newTestPipeline()
	products, stores, sales, inventory := messyFixtures()
	res, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	skus := map[string]bool{}
	for _, s := range res.Products.Column("sku") {
		skus[s] = true
	}
	storeIDs := map[string]bool{}
	for _, s := range res.Stores.Column("store_id") {
		storeIDs[s] = true
	}
	for i := 0; i < res.Sales.Len(); i++ {
		assert.True(t, skus[res.Sales.Cell(i, "sku")])
		assert.True(t, storeIDs[res.Sales.Cell(i, "store_id")])
	}
	for i := 0; i < res.Inventory.Len(); i++ {
		assert.True(t, skus[res.Inventory.Cell(i, "sku")])
		assert.True(t, storeIDs[res.Inventory.Cell(i, "store_id")])
	}
}

func TestCleanAllIdempotent(t *testing.T) {
	p := newTestPipeline()
	products, stores, sales, inventory := messyFixtures()
	first, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	second, err := p.CleanAll(context.Background(), first.Products, first.Stores, first.Sales, first.Inventory)
	require.NoError(t, err)

	require.Len(t, second.Issues.Issues, 1)
	assert.Equal(t, IssueNoIssues, second.Issues.Issues[0].Type)
	assert.Equal(t, first.Products.Rows, second.Products.Rows)
	assert.Equal(t, first.Stores.Rows, second.Stores.Rows)
	assert.Equal(t, first.Sales.Rows, second.Sales.Rows)
	assert.Equal(t, first.Inventory.Rows, second.Inventory.Rows)
	assert.Equal(t, 0, second.Stats.TotalFixed)
	assert.Equal(t, 0, second.Stats.TotalDropped)
}

func TestCleanAllDeterministic(t *testing.T) {
	p := newTestPipeline()
	products, stores, sales, inventory := messyFixtures()
	a, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)
	products, stores, sales, inventory = messyFixtures()
	b, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	assert.Equal(t, a.Products.Rows, b.Products.Rows)
	assert.Equal(t, a.Sales.Rows, b.Sales.Rows)
	require.Equal(t, len(a.Issues.Issues), len(b.Issues.Issues))
	for i := range a.Issues.Issues {
		assert.Equal(t, a.Issues.Issues[i].Type, b.Issues.Issues[i].Type)
		assert.Equal(t, a.Issues.Issues[i].RecordID, b.Issues.Issues[i].RecordID)
	}
}

func TestCleanAllStructuralError(t *testing.T) {
	_, stores, sales, inventory := messyFixtures()
	broken := buildTable([]string{"sku", "category"}, []string{"P1", "Electronics"})

	p := newTestPipeline()
	_, err := p.CleanAll(context.Background(), broken, stores, sales, inventory)
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, err.Error(), "base_price")
}

func TestCleanAllNoIssuesSentinel(t *testing.T) {
	products := buildTable(
		[]string{"sku", "category", "base_price", "unit_cost", "brand", "launch_flag"},
		[]string{"P1", "Electronics", "100", "60", "Acme", "New"},
	)
	stores := buildTable(
		[]string{"store_id", "city", "channel", "fulfillment_type"},
		[]string{"S1", "Dubai", "Online", "Own"},
	)
	sales := buildTable(
		[]string{"order_id", "sku", "store_id", "qty", "selling_price", "order_time", "discount_pct", "payment_status", "return_flag"},
		[]string{"O1", "P1", "S1", "2", "50", "2024-01-15 10:00:00", "0", "Paid", "false"},
	)
	inventory := buildTable(
		[]string{"sku", "store_id", "stock_on_hand", "reorder_point", "lead_time_days", "snapshot_date"},
		[]string{"P1", "S1", "25", "10", "3", "2024-05-01"},
	)

	p := newTestPipeline()
	res, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	require.Len(t, res.Issues.Issues, 1)
	sentinel := res.Issues.Issues[0]
	assert.Equal(t, IssueNoIssues, sentinel.Type)
	assert.Equal(t, "-", sentinel.RecordID)
	assert.Equal(t, "none", sentinel.Action)
}

func TestCleanAllCompletesAbsentOptionalColumns(t *testing.T) {
	// Tables that never carried the optional columns are valid uploads, not
	// dirty ones: the defaults appear in the output without a single logged
	// issue. (unit_cost is excluded here because its default derives from
	// base_price and that imputation is always logged.)
	products := buildTable(
		[]string{"sku", "category", "base_price", "unit_cost"},
		[]string{"P1", "Electronics", "100", "60"},
	)
	stores := buildTable(
		[]string{"store_id", "city", "channel"},
		[]string{"S1", "Dubai", "Online"},
	)
	sales := buildTable(
		[]string{"order_id", "sku", "store_id", "qty", "selling_price"},
		[]string{"O1", "P1", "S1", "2", "50"},
	)
	inventory := buildTable(
		[]string{"sku", "store_id", "stock_on_hand"},
		[]string{"P1", "S1", "25"},
	)

	p := newTestPipeline()
	res, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	require.Len(t, res.Issues.Issues, 1)
	assert.Equal(t, IssueNoIssues, res.Issues.Issues[0].Type)

	assert.Equal(t, "Regular", res.Products.Cell(0, "launch_flag"))
	assert.Equal(t, "Own", res.Stores.Cell(0, "fulfillment_type"))
	assert.InDelta(t, 0, numCell(t, res.Sales, 0, "discount_pct"), 1e-9)
	assert.Equal(t, "false", res.Sales.Cell(0, "return_flag"))
	assert.InDelta(t, 10, numCell(t, res.Inventory, 0, "reorder_point"), 1e-9)
	assert.InDelta(t, 3, numCell(t, res.Inventory, 0, "lead_time_days"), 1e-9)
}

func TestCleanAllStatsReconcile(t *testing.T) {
	p := newTestPipeline()
	products, stores, sales, inventory := messyFixtures()
	res, err := p.CleanAll(context.Background(), products, stores, sales, inventory)
	require.NoError(t, err)

	// Every dropped row carries exactly one rejection entry, so the per-table
	// drop counts must equal the per-table rejection counts in the log.
	rejectionsPerTable := map[enums.TableName]int{}
	for _, issue := range res.Issues.Issues {
		if issue.Kind == ActionRejected {
			rejectionsPerTable[issue.Table]++
		}
	}
	totalDropped := 0
	for tbl, ts := range res.Stats.Tables {
		assert.Equal(t, ts.RowsIn-ts.RowsOut, ts.RowsDropped, string(tbl))
		assert.Equal(t, ts.RowsDropped, rejectionsPerTable[tbl], string(tbl))
		totalDropped += ts.RowsDropped
	}
	assert.Equal(t, totalDropped, res.Stats.TotalDropped)
	assert.Positive(t, res.Stats.TotalFixed)
}
