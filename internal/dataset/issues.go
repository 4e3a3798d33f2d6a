package dataset

import (
	"io"

	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Issue-log export columns. This layout is a downloadable audit artifact;
// renaming or reordering breaks downstream consumers.
var issueColumns = []string{"table", "record_identifier", "issue_type", "issue_detail", "action_taken"}

// IssuesTable flattens a cleaning log into its stable tabular form, one
// row per remediation action.
func IssuesTable(log *cleaning.Log) *table.Table {
	t := table.New(issueColumns...)
	if log == nil {
		return t
	}
	for _, issue := range log.Issues {
		t.AppendRow(string(issue.Table), issue.RecordID, issue.Type, issue.Detail, issue.Action)
	}
	return t
}

// WriteIssuesCSV streams the issue log as CSV.
func WriteIssuesCSV(w io.Writer, log *cleaning.Log) error {
	return EncodeCSV(w, IssuesTable(log))
}
