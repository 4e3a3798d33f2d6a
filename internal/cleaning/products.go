package cleaning

import (
	"context"
	"fmt"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// cleanProducts validates the product catalog: identity, category closed
// set, price/cost repairs and the cost-versus-price consistency rule.
// Products clean first because sales and inventory reference their SKUs.
func (p *Pipeline) cleanProducts(ctx context.Context, t *table.Table, log *Log, stats *Stats) *table.Table {
	tbl := enums.TableProducts
	rowsIn := t.Len()
	mark := len(log.Issues)

	// A wholly absent optional column with a constant default is schema
	// completion, not a data defect: seed the default directly and log
	// nothing. Blank cells inside a column the upload did provide still go
	// through the imputation path and get logged. unit_cost stays empty here
	// because its default is derived from base_price per row.
	t.EnsureColumn(schema.ColUnitCost, "")
	t.EnsureColumn(schema.ColBrand, "")
	t.EnsureColumn(schema.ColLaunchFlag, string(enums.LaunchFlagRegular))
	trimColumn(t, schema.ColSKU)
	trimColumn(t, schema.ColBrand)

	ids := recordIdentifiers(t, schema.ColSKU)
	var rejects []rejection

	for i, sku := range t.Column(schema.ColSKU) {
		if sku == "" {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalid(schema.ColSKU),
				detail:    "empty sku",
				action:    "row rejected: no safe default for identity/category field",
			})
		}
	}

	categories, catRejects, catIssues := normalizeEnumColumn(
		tbl, schema.ColCategory, t.Column(schema.ColCategory),
		enumNormalizer(enums.NormalizeCategory), enums.Categories(),
		p.cfg.FuzzyThreshold, "",
	)
	_ = t.SetColumn(schema.ColCategory, categories)
	rejects = append(rejects, catRejects...)
	logIssues(log, catIssues)

	prices := t.Column(schema.ColBasePrice)
	priceMedian, ok := median(numericValues(prices))
	if !ok {
		priceMedian = p.cfg.UnitCostFloor
	}
	prices, issues := imputeNumeric(tbl, schema.ColBasePrice, prices,
		func(int) float64 { return priceMedian },
		fmt.Sprintf("imputed column median %s", formatNumber(priceMedian)),
	)
	logIssues(log, issues)
	prices, issues = repairNegatives(tbl, schema.ColBasePrice, prices, negativeToMedian)
	logIssues(log, issues)
	var outliers int
	prices, issues, outliers = capExtremes(tbl, schema.ColBasePrice, prices, p.cfg.CapMultiplier, p.cfg.ExtremeMultiplier)
	logIssues(log, issues)
	stats.OutlierCounts["products.base_price"] = outliers
	_ = t.SetColumn(schema.ColBasePrice, prices)

	costs := p.repairUnitCost(t, prices, log)
	_ = t.SetColumn(schema.ColUnitCost, costs)

	flags, flagRejects, flagIssues := normalizeEnumColumn(
		tbl, schema.ColLaunchFlag, t.Column(schema.ColLaunchFlag),
		enumNormalizer(enums.NormalizeLaunchFlag), enums.LaunchFlags(),
		p.cfg.FuzzyThreshold, string(enums.LaunchFlagRegular),
	)
	_ = t.SetColumn(schema.ColLaunchFlag, flags)
	rejects = append(rejects, flagRejects...)
	logIssues(log, flagIssues)

	t = applyRejections(tbl, t, rejects, ids, log)
	t = dedup(tbl, t, []string{schema.ColSKU}, schema.ColSKU, schema.ColSKU, nil, log)

	p.finishTable(ctx, tbl, log, stats, mark, rowsIn, t.Len())
	return t
}

// repairUnitCost fills missing costs, resets negative costs, and enforces
// the margin rule that a unit cost never exceeds its base price. All three
// repairs land on the same replacement value so a repeated run has nothing
// left to change.
func (p *Pipeline) repairUnitCost(t *table.Table, prices []string, log *Log) []string {
	tbl := enums.TableProducts
	costs := t.Column(schema.ColUnitCost)
	costMedian, costMedianOK := median(numericValues(costs))

	fallback := func(row int) float64 {
		if price, ok := parseNumber(prices[row]); ok && price > 0 {
			return price * p.cfg.UnitCostRatio
		}
		if costMedianOK {
			return costMedian
		}
		return p.cfg.UnitCostFloor
	}

	costs, issues := imputeNumeric(tbl, schema.ColUnitCost, costs, fallback,
		fmt.Sprintf("imputed %.0f%% of base price", p.cfg.UnitCostRatio*100))
	logIssues(log, issues)

	negatives, inverted := 0, 0
	for i, raw := range costs {
		cost, ok := parseNumber(raw)
		if !ok {
			continue
		}
		if cost < 0 {
			costs[i] = formatNumber(fallback(i))
			negatives++
			continue
		}
		if price, priceOK := parseNumber(prices[i]); priceOK && cost > price {
			costs[i] = formatNumber(price * p.cfg.UnitCostRatio)
			inverted++
		}
	}
	if negatives > 0 {
		log.Repair(tbl, aggregateID(negatives), IssueNegative(schema.ColUnitCost),
			fmt.Sprintf("%d negative %s value(s)", negatives, schema.ColUnitCost),
			fmt.Sprintf("reset to %.0f%% of base price", p.cfg.UnitCostRatio*100), negatives)
	}
	if inverted > 0 {
		log.Repair(tbl, aggregateID(inverted), IssueCostExceedsPrice,
			fmt.Sprintf("%d row(s) where unit_cost exceeds base_price", inverted),
			fmt.Sprintf("reset to %.0f%% of base price", p.cfg.UnitCostRatio*100), inverted)
	}
	return costs
}
