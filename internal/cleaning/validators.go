package cleaning

import (
	"fmt"
	"strings"
	"time"

	"github.com/uaepulse/pulse-backend/pkg/enums"
)

// rejection marks a row for exclusion. The table cleaner resolves all
// rejections at once so each dropped row is logged exactly once even when
// several policies flag it.
type rejection struct {
	row       int
	issueType string
	detail    string
	action    string
}

func aggregateID(n int) string {
	return fmt.Sprintf("%d row(s)", n)
}

// enumNormalizer adapts a typed Normalize function to the plain string form
// normalizeEnumColumn consumes.
func enumNormalizer[T ~string](fn func(string) (T, bool)) func(string) (string, bool) {
	return func(v string) (string, bool) {
		t, ok := fn(v)
		return string(t), ok
	}
}

// normalizeEnumColumn applies the closed-set policy: synonym/case
// normalization first, then a fuzzy fallback, then rejection. A non-empty
// emptyDefault turns blank cells into an imputation instead of a
// rejection (used for the optional enum fields that have a documented
// default).
func normalizeEnumColumn(
	tbl enums.TableName,
	field string,
	values []string,
	normalize func(string) (string, bool),
	candidates []string,
	fuzzyThreshold float64,
	emptyDefault string,
) ([]string, []rejection, []Issue) {
	out := make([]string, len(values))
	var rejects []rejection
	var issues []Issue
	normalized, fuzzied, defaulted := 0, 0, 0

	for i, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			if emptyDefault != "" {
				out[i] = emptyDefault
				defaulted++
				continue
			}
			out[i] = raw
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalid(field),
				detail:    fmt.Sprintf("empty %s", field),
				action:    "row rejected: no safe default for identity/category field",
			})
			continue
		}
		if canonical, ok := normalize(v); ok {
			out[i] = canonical
			if canonical != raw {
				normalized++
			}
			continue
		}
		if match, _, ok := bestFuzzyMatch(v, candidates, fuzzyThreshold); ok {
			out[i] = match
			fuzzied++
			continue
		}
		out[i] = raw
		rejects = append(rejects, rejection{
			row:       i,
			issueType: IssueInvalid(field),
			detail:    fmt.Sprintf("%s %q not in the closed set", field, v),
			action:    "row rejected: no safe default for identity/category field",
		})
	}

	if normalized+fuzzied > 0 {
		detail := fmt.Sprintf("%d variant spelling(s) mapped to the closed set", normalized+fuzzied)
		if fuzzied > 0 {
			detail += fmt.Sprintf(" (%d via fuzzy match)", fuzzied)
		}
		issues = append(issues, Issue{
			Table:    tbl,
			RecordID: aggregateID(normalized + fuzzied),
			Type:     IssueNonstandard(field),
			Detail:   detail,
			Action:   "value normalized in place",
			Kind:     ActionRepaired,
			Rows:     normalized + fuzzied,
		})
	}
	if defaulted > 0 {
		issues = append(issues, Issue{
			Table:    tbl,
			RecordID: aggregateID(defaulted),
			Type:     IssueMissing(field),
			Detail:   fmt.Sprintf("%d empty %s value(s)", defaulted, field),
			Action:   fmt.Sprintf("defaulted to %q", emptyDefault),
			Kind:     ActionRepaired,
			Rows:     defaulted,
		})
	}
	return out, rejects, issues
}

// imputeNumeric fills blank or unparseable cells using the caller-supplied
// fill rule and logs a single aggregated MISSING_<FIELD> action.
func imputeNumeric(
	tbl enums.TableName,
	field string,
	values []string,
	fill func(row int) float64,
	actionDetail string,
) ([]string, []Issue) {
	out := make([]string, len(values))
	filled := 0
	for i, raw := range values {
		if _, ok := parseNumber(raw); ok {
			out[i] = raw
			continue
		}
		out[i] = formatNumber(fill(i))
		filled++
	}
	if filled == 0 {
		return out, nil
	}
	return out, []Issue{{
		Table:    tbl,
		RecordID: aggregateID(filled),
		Type:     IssueMissing(field),
		Detail:   fmt.Sprintf("%d missing or unparseable %s value(s)", filled, field),
		Action:   actionDetail,
		Kind:     ActionRepaired,
		Rows:     filled,
	}}
}

// imputeWithDefault is the single-default numeric policy: blank or
// unparseable cells and negative values both reset to def, logged under
// separate MISSING_<FIELD> and NEGATIVE_<FIELD> aggregates.
func imputeWithDefault(tbl enums.TableName, field string, values []string, def float64) ([]string, []Issue) {
	out := make([]string, len(values))
	missing, negative := 0, 0
	for i, raw := range values {
		v, ok := parseNumber(raw)
		switch {
		case !ok:
			out[i] = formatNumber(def)
			missing++
		case v < 0:
			out[i] = formatNumber(def)
			negative++
		default:
			out[i] = raw
		}
	}
	var issues []Issue
	if missing > 0 {
		issues = append(issues, Issue{
			Table:    tbl,
			RecordID: aggregateID(missing),
			Type:     IssueMissing(field),
			Detail:   fmt.Sprintf("%d missing or unparseable %s value(s)", missing, field),
			Action:   fmt.Sprintf("defaulted to %s", formatNumber(def)),
			Kind:     ActionRepaired,
			Rows:     missing,
		})
	}
	if negative > 0 {
		issues = append(issues, Issue{
			Table:    tbl,
			RecordID: aggregateID(negative),
			Type:     IssueNegative(field),
			Detail:   fmt.Sprintf("%d negative %s value(s)", negative, field),
			Action:   fmt.Sprintf("reset to %s", formatNumber(def)),
			Kind:     ActionRepaired,
			Rows:     negative,
		})
	}
	return out, issues
}

// negativeRepair selects how a negative value is reset.
type negativeRepair int

const (
	negativeToZero negativeRepair = iota
	negativeToOne
	negativeToMedian
)

// repairNegatives resets negative values per the field policy: a bad sign
// on an otherwise valid transaction repairs in place rather than dropping
// the row.
func repairNegatives(tbl enums.TableName, field string, values []string, mode negativeRepair) ([]string, []Issue) {
	sorted := numericValues(values)
	var nonNegative []float64
	for _, v := range sorted {
		if v >= 0 {
			nonNegative = append(nonNegative, v)
		}
	}
	med, medOK := median(nonNegative)

	out := make([]string, len(values))
	repaired := 0
	var replacement float64
	for i, raw := range values {
		v, ok := parseNumber(raw)
		if !ok || v >= 0 {
			out[i] = raw
			continue
		}
		switch mode {
		case negativeToOne:
			replacement = 1
		case negativeToMedian:
			if medOK {
				replacement = med
			} else {
				replacement = 1
			}
		default:
			replacement = 0
		}
		out[i] = formatNumber(replacement)
		repaired++
	}
	if repaired == 0 {
		return out, nil
	}
	var action string
	switch mode {
	case negativeToOne:
		action = "reset to neutral default 1"
	case negativeToMedian:
		action = fmt.Sprintf("reset to column median %s", formatNumber(replacement))
	default:
		action = "reset to 0"
	}
	return out, []Issue{{
		Table:    tbl,
		RecordID: aggregateID(repaired),
		Type:     IssueNegative(field),
		Detail:   fmt.Sprintf("%d negative %s value(s)", repaired, field),
		Action:   action,
		Kind:     ActionRepaired,
		Rows:     repaired,
	}}
}

// capExtremes applies the wide-bound policy: values beyond
// extremeMult x P95 are capped at capMult x P95. The classic 1.5x IQR
// fence is counted for reporting only and triggers no change.
func capExtremes(tbl enums.TableName, field string, values []string, capMult, extremeMult float64) ([]string, []Issue, int) {
	sorted := numericValues(values)
	out := make([]string, len(values))
	copy(out, values)

	outlierCount := 0
	if lower, upper, ok := iqrFence(sorted); ok {
		for _, v := range sorted {
			if v < lower || v > upper {
				outlierCount++
			}
		}
	}

	p95, ok := percentile(sorted, 95)
	if !ok || p95 <= 0 {
		return out, nil, outlierCount
	}
	extremeBound := extremeMult * p95
	capValue := capMult * p95

	capped := 0
	for i, raw := range values {
		v, parsed := parseNumber(raw)
		if !parsed || v <= extremeBound {
			continue
		}
		out[i] = formatNumber(capValue)
		capped++
	}
	if capped == 0 {
		return out, nil, outlierCount
	}
	return out, []Issue{{
		Table:    tbl,
		RecordID: aggregateID(capped),
		Type:     IssueExtreme(field),
		Detail:   fmt.Sprintf("%d value(s) beyond %s (%.1fx P95)", capped, formatNumber(extremeBound), extremeMult),
		Action:   fmt.Sprintf("capped at %s", formatNumber(capValue)),
		Kind:     ActionRepaired,
		Rows:     capped,
	}}, outlierCount
}

// validateTimestamps rejects rows whose order time is unparseable, in the
// future relative to the run, or before the epoch boundary. The future
// check is the pipeline's only wall-clock dependency.
func validateTimestamps(values []string, now time.Time, epochYear int) []rejection {
	var rejects []rejection
	epoch := time.Date(epochYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, raw := range values {
		ts, ok := ParseTimestamp(raw)
		if !ok {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalidTimestamp,
				detail:    fmt.Sprintf("unparseable timestamp %q", strings.TrimSpace(raw)),
				action:    "row rejected: timestamp required",
			})
			continue
		}
		if ts.After(now) {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueFutureDateOutlier,
				detail:    fmt.Sprintf("order time %s is in the future", ts.Format(time.RFC3339)),
				action:    "row rejected: corrupted source data",
			})
			continue
		}
		if ts.Before(epoch) {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueOldDateOutlier,
				detail:    fmt.Sprintf("order time %s predates %d", ts.Format(time.RFC3339), epochYear),
				action:    "row rejected: corrupted source data",
			})
		}
	}
	return rejects
}

var truthyTokens = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "t": true,
}

var falsyTokens = map[string]bool{
	"false": true, "0": true, "no": true, "n": true, "f": true, "": true,
}

// coerceBoolean maps boolean-ish spellings to canonical true/false.
// Unrecognized tokens coerce to false and are logged; recognized
// spellings (either polarity) are normalized silently.
func coerceBoolean(tbl enums.TableName, field string, values []string) ([]string, []Issue) {
	out := make([]string, len(values))
	invalid := 0
	for i, raw := range values {
		token := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case truthyTokens[token]:
			out[i] = "true"
		case falsyTokens[token]:
			out[i] = "false"
		default:
			out[i] = "false"
			invalid++
		}
	}
	if invalid == 0 {
		return out, nil
	}
	return out, []Issue{{
		Table:    tbl,
		RecordID: aggregateID(invalid),
		Type:     IssueInvalid(field),
		Detail:   fmt.Sprintf("%d unrecognized boolean token(s)", invalid),
		Action:   "coerced to false",
		Kind:     ActionRepaired,
		Rows:     invalid,
	}}
}
