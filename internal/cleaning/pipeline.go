package cleaning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/logger"
	"github.com/uaepulse/pulse-backend/pkg/metrics"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Pipeline runs the full rule engine over the four datasets. Construction
// owns all policy constants; nothing is read from globals so tests can
// inject their own thresholds and clock.
type Pipeline struct {
	cfg     config.CleaningConfig
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
	now     func() time.Time
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithNow overrides the clock used by the future-date check.
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pipeline. logg and m may be nil (CLI and test callers).
func New(cfg config.CleaningConfig, logg *logger.Logger, m *metrics.PipelineMetrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is one cleaning run's output: the four cleaned tables, the audit
// log, and the aggregate stats.
type Result struct {
	Products  *table.Table
	Stores    *table.Table
	Sales     *table.Table
	Inventory *table.Table
	Issues    *Log
	Stats     *Stats
}

// CleanAll reconciles, validates, repairs, dedups and cross-references the
// four tables. Products and stores are fully cleaned before sales and
// inventory because the final referential pass needs their cleaned key
// sets. Malformed rows never abort the run; only a structurally invalid
// table (required identifier column absent) returns an error, typed with
// the table and column.
func (p *Pipeline) CleanAll(ctx context.Context, products, stores, sales, inventory *table.Table) (*Result, error) {
	started := p.now()
	runID := uuid.NewString()
	if p.logg != nil {
		ctx = p.logg.WithRunID(ctx, runID)
	}

	recProducts := schema.Reconcile(products, enums.TableProducts)
	recStores := schema.Reconcile(stores, enums.TableStores)
	recSales := schema.Reconcile(sales, enums.TableSales)
	recInventory := schema.Reconcile(inventory, enums.TableInventory)

	var structural error
	for _, check := range []struct {
		tbl enums.TableName
		t   *table.Table
	}{
		{enums.TableProducts, recProducts},
		{enums.TableStores, recStores},
		{enums.TableSales, recSales},
		{enums.TableInventory, recInventory},
	} {
		for _, col := range schema.MissingRequired(check.t, check.tbl) {
			structural = multierr.Append(structural, pkgerrors.MissingColumn(string(check.tbl), col))
		}
	}
	if structural != nil {
		p.metrics.ObserveCleanDuration("structural_error", p.now().Sub(started))
		if p.logg != nil {
			p.logg.Error(ctx, "cleaning aborted on structural error", structural)
		}
		return nil, structural
	}

	log := &Log{RunID: runID}
	stats := newStats()

	cleanProducts := p.cleanProducts(ctx, recProducts, log, stats)
	cleanStores := p.cleanStores(ctx, recStores, log, stats)

	skuSet := keySet(cleanProducts, schema.ColSKU)
	storeSet := keySet(cleanStores, schema.ColStoreID)

	cleanSales := p.cleanSales(ctx, recSales, skuSet, storeSet, log, stats)
	cleanInventory := p.cleanInventory(ctx, recInventory, skuSet, storeSet, log, stats)

	log.Finalize()
	p.recordMetrics(stats)
	p.metrics.ObserveCleanDuration("success", p.now().Sub(started))
	if p.logg != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{
			"issues":        len(log.Issues),
			"total_fixed":   stats.TotalFixed,
			"total_dropped": stats.TotalDropped,
		})
		p.logg.Info(ctx, "cleaning run complete")
	}

	return &Result{
		Products:  cleanProducts,
		Stores:    cleanStores,
		Sales:     cleanSales,
		Inventory: cleanInventory,
		Issues:    log,
		Stats:     stats,
	}, nil
}

func (p *Pipeline) recordMetrics(stats *Stats) {
	for tbl, ts := range stats.Tables {
		p.metrics.AddRowsIn(string(tbl), ts.RowsIn)
		p.metrics.AddRowsDropped(string(tbl), ts.RowsDropped)
	}
	for issueType, n := range stats.ByType {
		p.metrics.AddIssues(issueType, n)
	}
}

// finishTable folds everything the table cleaner logged since mark into the
// run stats and emits the per-table log line.
func (p *Pipeline) finishTable(ctx context.Context, tbl enums.TableName, log *Log, stats *Stats, mark, rowsIn, rowsOut int) {
	issues := log.Issues[mark:]
	stats.recordIssues(issues)
	fixed := 0
	for _, issue := range issues {
		if issue.Kind == ActionRepaired {
			fixed += issue.Rows
		}
	}
	stats.setTable(tbl, rowsIn, rowsOut, fixed, rowsIn-rowsOut)
	if p.logg != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{
			"table":    string(tbl),
			"rows_in":  rowsIn,
			"rows_out": rowsOut,
			"fixed":    fixed,
		})
		p.logg.Info(ctx, "table cleaned")
	}
}

func logIssues(log *Log, issues []Issue) {
	for _, issue := range issues {
		log.add(issue)
	}
}

// keySet collects the distinct values of a column.
func keySet(t *table.Table, col string) map[string]bool {
	set := make(map[string]bool, t.Len())
	for _, v := range t.Column(col) {
		set[v] = true
	}
	return set
}

// recordIdentifiers returns a display identifier per row: the natural key
// value when present, otherwise the 1-based row position.
func recordIdentifiers(t *table.Table, idCol string) []string {
	ids := make([]string, t.Len())
	values := t.Column(idCol)
	for i := range ids {
		id := ""
		if values != nil {
			id = strings.TrimSpace(values[i])
		}
		if id == "" {
			id = fmt.Sprintf("row %d", i+1)
		}
		ids[i] = id
	}
	return ids
}

// applyRejections drops every flagged row, logging exactly one rejection
// issue per dropped row in row order. The first policy to flag a row wins.
func applyRejections(tbl enums.TableName, t *table.Table, rejects []rejection, ids []string, log *Log) *table.Table {
	if len(rejects) == 0 {
		return t
	}
	firstByRow := make(map[int]rejection, len(rejects))
	for _, r := range rejects {
		if _, seen := firstByRow[r.row]; !seen {
			firstByRow[r.row] = r
		}
	}
	for i := 0; i < t.Len(); i++ {
		if r, ok := firstByRow[i]; ok {
			log.Reject(tbl, ids[i], r.issueType, r.detail, r.action)
		}
	}
	return t.Filter(func(row int) bool {
		_, drop := firstByRow[row]
		return !drop
	})
}

// dedup removes duplicate rows on the composite key, keeping the incumbent
// unless better prefers the candidate. Removed rows are logged one by one
// as rejections under DUPLICATE_<KEY>.
func dedup(tbl enums.TableName, t *table.Table, keyCols []string, keyLabel, idCol string, better func(t *table.Table, candidate, incumbent int) bool, log *Log) *table.Table {
	ids := recordIdentifiers(t, idCol)
	incumbentByKey := make(map[string]int, t.Len())
	drop := make(map[int]bool)
	for i := 0; i < t.Len(); i++ {
		parts := make([]string, len(keyCols))
		for j, col := range keyCols {
			parts[j] = strings.TrimSpace(t.Cell(i, col))
		}
		key := strings.Join(parts, "\x1f")
		incumbent, seen := incumbentByKey[key]
		if !seen {
			incumbentByKey[key] = i
			continue
		}
		if better != nil && better(t, i, incumbent) {
			drop[incumbent] = true
			incumbentByKey[key] = i
		} else {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return t
	}
	issueType := IssueDuplicate(keyLabel)
	for i := 0; i < t.Len(); i++ {
		if drop[i] {
			log.Reject(tbl, ids[i], issueType, fmt.Sprintf("duplicate %s", keyLabel), "row rejected: duplicate of retained record")
		}
	}
	return t.Filter(func(row int) bool { return !drop[row] })
}

// referentialPass drops rows whose foreign keys are absent from the
// cleaned parent tables. It runs last for sales and inventory, after their
// own field repairs.
func referentialPass(tbl enums.TableName, t *table.Table, skuSet, storeSet map[string]bool, idCol string, log *Log) *table.Table {
	ids := recordIdentifiers(t, idCol)
	var rejects []rejection
	for i := 0; i < t.Len(); i++ {
		sku := strings.TrimSpace(t.Cell(i, schema.ColSKU))
		storeID := strings.TrimSpace(t.Cell(i, schema.ColStoreID))
		if !skuSet[sku] {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalidSKUFK,
				detail:    fmt.Sprintf("sku %q not present in cleaned products", sku),
				action:    "row rejected: dangling foreign key",
			})
			continue
		}
		if !storeSet[storeID] {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalidStoreFK,
				detail:    fmt.Sprintf("store_id %q not present in cleaned stores", storeID),
				action:    "row rejected: dangling foreign key",
			})
		}
	}
	return applyRejections(tbl, t, rejects, ids, log)
}

// trimColumn canonicalizes surrounding whitespace on identifier columns.
func trimColumn(t *table.Table, col string) {
	values := t.Column(col)
	if values == nil {
		return
	}
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	_ = t.SetColumn(col, values)
}
