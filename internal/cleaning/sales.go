package cleaning

import (
	"context"
	"fmt"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// cleanSales validates the transaction log. Field repairs run first, the
// order_id dedup keeps the most recent record, and the referential pass
// against cleaned products and stores comes last.
func (p *Pipeline) cleanSales(ctx context.Context, t *table.Table, skuSet, storeSet map[string]bool, log *Log, stats *Stats) *table.Table {
	tbl := enums.TableSales
	rowsIn := t.Len()
	mark := len(log.Issues)

	t.EnsureColumn(schema.ColDiscountPct, "0")
	t.EnsureColumn(schema.ColReturnFlag, "false")
	trimColumn(t, schema.ColOrderID)
	trimColumn(t, schema.ColSKU)
	trimColumn(t, schema.ColStoreID)

	ids := recordIdentifiers(t, schema.ColOrderID)
	var rejects []rejection

	for i, orderID := range t.Column(schema.ColOrderID) {
		if orderID == "" {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalid(schema.ColOrderID),
				detail:    "empty order_id",
				action:    "row rejected: no safe default for identity/category field",
			})
		}
	}

	qty, issues := imputeWithDefault(tbl, schema.ColQty, t.Column(schema.ColQty), 1)
	_ = t.SetColumn(schema.ColQty, qty)
	logIssues(log, issues)

	prices := t.Column(schema.ColSellingPrice)
	priceMedian, ok := median(numericValues(prices))
	if !ok {
		priceMedian = p.cfg.UnitCostFloor
	}
	prices, issues = imputeNumeric(tbl, schema.ColSellingPrice, prices,
		func(int) float64 { return priceMedian },
		fmt.Sprintf("imputed column median %s", formatNumber(priceMedian)),
	)
	logIssues(log, issues)
	prices, issues = repairNegatives(tbl, schema.ColSellingPrice, prices, negativeToMedian)
	logIssues(log, issues)
	var outliers int
	prices, issues, outliers = capExtremes(tbl, schema.ColSellingPrice, prices, p.cfg.CapMultiplier, p.cfg.ExtremeMultiplier)
	logIssues(log, issues)
	stats.OutlierCounts["sales.selling_price"] = outliers
	_ = t.SetColumn(schema.ColSellingPrice, prices)

	discounts, issues := p.repairDiscounts(t.Column(schema.ColDiscountPct))
	_ = t.SetColumn(schema.ColDiscountPct, discounts)
	logIssues(log, issues)

	if t.HasColumn(schema.ColOrderTime) {
		rejects = append(rejects, validateTimestamps(t.Column(schema.ColOrderTime), p.now(), p.cfg.EpochYear)...)
	}

	if t.HasColumn(schema.ColPaymentStatus) {
		statuses, statusRejects, statusIssues := normalizeEnumColumn(
			tbl, schema.ColPaymentStatus, t.Column(schema.ColPaymentStatus),
			enumNormalizer(enums.NormalizePaymentStatus), enums.PaymentStatuses(),
			p.cfg.FuzzyThreshold, "",
		)
		_ = t.SetColumn(schema.ColPaymentStatus, statuses)
		rejects = append(rejects, statusRejects...)
		logIssues(log, statusIssues)
	}

	flags, issues := coerceBoolean(tbl, schema.ColReturnFlag, t.Column(schema.ColReturnFlag))
	_ = t.SetColumn(schema.ColReturnFlag, flags)
	logIssues(log, issues)

	t = applyRejections(tbl, t, rejects, ids, log)
	t = dedup(tbl, t, []string{schema.ColOrderID}, schema.ColOrderID, schema.ColOrderID, keepMostRecent, log)
	t = referentialPass(tbl, t, skuSet, storeSet, schema.ColOrderID, log)

	p.finishTable(ctx, tbl, log, stats, mark, rowsIn, t.Len())
	return t
}

// repairDiscounts clamps discount_pct into [0,100]; blanks impute to 0.
func (p *Pipeline) repairDiscounts(values []string) ([]string, []Issue) {
	tbl := enums.TableSales
	out, issues := imputeWithDefault(tbl, schema.ColDiscountPct, values, 0)
	over := 0
	for i, raw := range out {
		if v, ok := parseNumber(raw); ok && v > 100 {
			out[i] = formatNumber(100)
			over++
		}
	}
	if over > 0 {
		issues = append(issues, Issue{
			Table:    tbl,
			RecordID: aggregateID(over),
			Type:     IssueInvalid(schema.ColDiscountPct),
			Detail:   fmt.Sprintf("%d discount value(s) above 100", over),
			Action:   "clamped to 100",
			Kind:     ActionRepaired,
			Rows:     over,
		})
	}
	return out, issues
}

// keepMostRecent prefers the candidate duplicate when its order_time is at
// least as recent as the incumbent's. With no usable timestamps the later
// row wins, matching last-write ingestion order.
func keepMostRecent(t *table.Table, candidate, incumbent int) bool {
	candidateTS, candidateOK := ParseTimestamp(t.Cell(candidate, schema.ColOrderTime))
	incumbentTS, incumbentOK := ParseTimestamp(t.Cell(incumbent, schema.ColOrderTime))
	if candidateOK != incumbentOK {
		return candidateOK
	}
	if !candidateOK {
		return true
	}
	return !candidateTS.Before(incumbentTS)
}
