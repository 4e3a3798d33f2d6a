package cleaning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/uaepulse/pulse-backend/pkg/enums"
)

// Fixed issue types. Field-scoped types are derived with the helpers below
// so the taxonomy stays mechanical: NEGATIVE_QTY, MISSING_UNIT_COST and so
// on.
const (
	IssueNoIssues          = "NO_ISSUES"
	IssueInvalidTimestamp  = "INVALID_TIMESTAMP"
	IssueFutureDateOutlier = "FUTURE_DATE_OUTLIER"
	IssueOldDateOutlier    = "OLD_DATE_OUTLIER"
	IssueCostExceedsPrice  = "COST_EXCEEDS_PRICE"
	IssueInvalidSKUFK      = "INVALID_SKU_FK"
	IssueInvalidStoreFK    = "INVALID_STORE_FK"
)

// IssueInvalid builds the rejection type for a field, e.g. INVALID_CITY.
func IssueInvalid(field string) string { return "INVALID_" + strings.ToUpper(field) }

// IssueNegative builds the negative-repair type for a field.
func IssueNegative(field string) string { return "NEGATIVE_" + strings.ToUpper(field) }

// IssueMissing builds the imputation type for a field.
func IssueMissing(field string) string { return "MISSING_" + strings.ToUpper(field) }

// IssueExtreme builds the outlier-cap type for a field.
func IssueExtreme(field string) string { return "EXTREME_" + strings.ToUpper(field) }

// IssueNonstandard builds the synonym/fuzzy-normalization type for a field.
func IssueNonstandard(field string) string { return "NONSTANDARD_" + strings.ToUpper(field) }

// IssueDuplicate builds the dedup type for a natural key, e.g.
// DUPLICATE_ORDER_ID.
func IssueDuplicate(key string) string { return "DUPLICATE_" + strings.ToUpper(key) }

// ActionKind distinguishes repairs from rejections in stats and audits.
type ActionKind string

const (
	ActionRepaired ActionKind = "repaired"
	ActionRejected ActionKind = "rejected"
)

// Issue is one remediation action taken during a cleaning run. Rejections
// are logged one per dropped row; repairs may aggregate the rows a single
// column-level action touched.
type Issue struct {
	Table    enums.TableName `json:"table"`
	RecordID string          `json:"record_identifier"`
	Type     string          `json:"issue_type"`
	Detail   string          `json:"issue_detail"`
	Action   string          `json:"action_taken"`
	Kind     ActionKind      `json:"-"`
	Rows     int             `json:"-"`
}

// Log is the append-only audit trail for one cleaning run.
type Log struct {
	RunID  string
	Issues []Issue
}

func (l *Log) add(issue Issue) {
	if issue.Rows <= 0 {
		issue.Rows = 1
	}
	l.Issues = append(l.Issues, issue)
}

// Reject records a per-row rejection.
func (l *Log) Reject(tbl enums.TableName, recordID, issueType, detail, action string) {
	l.add(Issue{Table: tbl, RecordID: recordID, Type: issueType, Detail: detail, Action: action, Kind: ActionRejected})
}

// Repair records a repair action covering n rows.
func (l *Log) Repair(tbl enums.TableName, recordID, issueType, detail, action string, n int) {
	l.add(Issue{Table: tbl, RecordID: recordID, Type: issueType, Detail: detail, Action: action, Kind: ActionRepaired, Rows: n})
}

// Finalize appends the sentinel row when the run found nothing, so a
// downloaded log always distinguishes "ran clean" from "never ran".
func (l *Log) Finalize() {
	if len(l.Issues) > 0 {
		return
	}
	l.Issues = append(l.Issues, Issue{
		RecordID: "-",
		Type:     IssueNoIssues,
		Detail:   "no data quality issues detected",
		Action:   "none",
	})
}

// TableStats aggregates one table's outcome.
type TableStats struct {
	RowsIn      int `json:"rows_in"`
	RowsOut     int `json:"rows_out"`
	RowsFixed   int `json:"rows_fixed"`
	RowsDropped int `json:"rows_dropped"`
}

// Stats summarizes a cleaning run for reporting.
type Stats struct {
	Tables map[enums.TableName]TableStats `json:"tables"`
	// ByType counts remediation actions per issue type (row-weighted).
	ByType map[string]int `json:"by_type"`
	// OutlierCounts is the reporting-only 1.5x IQR fence census per
	// table.field; these values are informational and trigger no repair.
	OutlierCounts map[string]int `json:"outlier_counts"`
	TotalFixed    int            `json:"total_fixed"`
	TotalDropped  int            `json:"total_dropped"`
}

func newStats() *Stats {
	return &Stats{
		Tables:        make(map[enums.TableName]TableStats),
		ByType:        make(map[string]int),
		OutlierCounts: make(map[string]int),
	}
}

func (s *Stats) recordIssues(issues []Issue) {
	for _, issue := range issues {
		s.ByType[issue.Type] += issue.Rows
		switch issue.Kind {
		case ActionRepaired:
			s.TotalFixed += issue.Rows
		case ActionRejected:
			s.TotalDropped += issue.Rows
		}
	}
}

func (s *Stats) setTable(tbl enums.TableName, in, out, fixed, dropped int) {
	s.Tables[tbl] = TableStats{RowsIn: in, RowsOut: out, RowsFixed: fixed, RowsDropped: dropped}
}

// IssueTypesSorted returns the per-type counts as stable "type=count"
// pairs for logging.
func (s *Stats) IssueTypesSorted() []string {
	keys := make([]string, 0, len(s.ByType))
	for k := range s.ByType {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s=%d", k, s.ByType[k])
	}
	return out
}
