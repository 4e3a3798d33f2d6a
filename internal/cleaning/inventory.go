package cleaning

import (
	"context"
	"strconv"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// cleanInventory validates stock snapshots. Counts and replenishment
// parameters repair to conservative defaults; the (sku, store, snapshot)
// dedup keeps the last record seen so re-uploads supersede earlier rows.
func (p *Pipeline) cleanInventory(ctx context.Context, t *table.Table, skuSet, storeSet map[string]bool, log *Log, stats *Stats) *table.Table {
	tbl := enums.TableInventory
	rowsIn := t.Len()
	mark := len(log.Issues)

	t.EnsureColumn(schema.ColReorderPoint, strconv.Itoa(p.cfg.ReorderPointDefault))
	t.EnsureColumn(schema.ColLeadTimeDays, strconv.Itoa(p.cfg.LeadTimeDaysDefault))
	trimColumn(t, schema.ColSKU)
	trimColumn(t, schema.ColStoreID)
	trimColumn(t, schema.ColSnapshotDate)

	stock, issues := imputeWithDefault(tbl, schema.ColStockOnHand, t.Column(schema.ColStockOnHand), 0)
	logIssues(log, issues)
	var capIssues []Issue
	var outliers int
	stock, capIssues, outliers = capExtremes(tbl, schema.ColStockOnHand, stock, p.cfg.CapMultiplier, p.cfg.ExtremeMultiplier)
	logIssues(log, capIssues)
	stats.OutlierCounts["inventory.stock_on_hand"] = outliers
	_ = t.SetColumn(schema.ColStockOnHand, stock)

	reorder, issues := imputeWithDefault(tbl, schema.ColReorderPoint, t.Column(schema.ColReorderPoint), float64(p.cfg.ReorderPointDefault))
	_ = t.SetColumn(schema.ColReorderPoint, reorder)
	logIssues(log, issues)

	leadTimes, issues := imputeWithDefault(tbl, schema.ColLeadTimeDays, t.Column(schema.ColLeadTimeDays), float64(p.cfg.LeadTimeDaysDefault))
	_ = t.SetColumn(schema.ColLeadTimeDays, leadTimes)
	logIssues(log, issues)

	dedupKeys := []string{schema.ColSKU, schema.ColStoreID}
	keyLabel := "sku_store"
	if t.HasColumn(schema.ColSnapshotDate) {
		dedupKeys = append(dedupKeys, schema.ColSnapshotDate)
		keyLabel = "sku_store_snapshot"
	}
	t = dedup(tbl, t, dedupKeys, keyLabel, schema.ColSKU, keepLast, log)
	t = referentialPass(tbl, t, skuSet, storeSet, schema.ColSKU, log)

	p.finishTable(ctx, tbl, log, stats, mark, rowsIn, t.Len())
	return t
}

// keepLast always prefers the later duplicate.
func keepLast(*table.Table, int, int) bool { return true }
