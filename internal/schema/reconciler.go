package schema

import (
	"strings"

	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Detection thresholds: a table classifies as a schema only when at least
// 60% of the schema's required fields are present and the weighted score
// clears the floor. Below that the table is reported as unknown rather
// than guessed at.
const (
	requiredFieldWeight  = 3
	secondaryFieldWeight = 1
	minRequiredCoverage  = 0.6
	minDetectionScore    = 6
)

// normalizeHeader folds case and whitespace so "Product ID", "product_id"
// and "PRODUCT-ID" compare equal.
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// matchField reports whether a normalized header addresses the field by
// canonical name or any alias.
func matchField(f Field, normalized string) bool {
	if normalizeHeader(f.Name) == normalized {
		return true
	}
	for _, alias := range f.Aliases {
		if normalizeHeader(alias) == normalized {
			return true
		}
	}
	return false
}

// Reconcile returns a copy of the table with every recognized column header
// renamed to its canonical name for the target table type. Unrecognized
// columns pass through untouched; reconciling an already-canonical table is
// a no-op. Only the first column matching a canonical field is renamed so a
// duplicate alias cannot clobber an existing canonical column.
func Reconcile(t *table.Table, name enums.TableName) *table.Table {
	out := t.Clone()
	fields := Fields(name)
	if out == nil || fields == nil {
		return out
	}
	// Only an exactly-canonical header claims its field up front; a case or
	// spacing variant of the canonical name still needs the rename below.
	claimed := make(map[string]bool, len(fields))
	for _, col := range out.Columns {
		for _, f := range fields {
			if col == f.Name {
				claimed[f.Name] = true
			}
		}
	}
	for i, col := range out.Columns {
		normalized := normalizeHeader(col)
		for _, f := range fields {
			if claimed[f.Name] && col != f.Name {
				continue
			}
			if matchField(f, normalized) {
				out.Columns[i] = f.Name
				claimed[f.Name] = true
				break
			}
		}
	}
	return out
}

// MissingRequired lists the canonical required columns absent from the
// table after reconciliation against the given type.
func MissingRequired(t *table.Table, name enums.TableName) []string {
	var missing []string
	for _, col := range RequiredColumns(name) {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Detect classifies raw column headers against the four known schemas.
// It is used for operator feedback when a declared upload does not satisfy
// its schema; it never silently substitutes the detected type for the
// declared one. The boolean is false when no schema clears the thresholds.
func Detect(columns []string) (enums.TableName, bool) {
	normalized := make(map[string]bool, len(columns))
	for _, col := range columns {
		normalized[normalizeHeader(col)] = true
	}

	var (
		best      enums.TableName
		bestScore = -1
		bestOK    bool
	)
	for _, name := range enums.TableNames() {
		score, requiredHit, requiredTotal := scoreSchema(Fields(name), normalized)
		coverage := 0.0
		if requiredTotal > 0 {
			coverage = float64(requiredHit) / float64(requiredTotal)
		}
		ok := coverage >= minRequiredCoverage && score >= minDetectionScore
		if score > bestScore {
			best, bestScore, bestOK = name, score, ok
		}
	}
	if !bestOK {
		return "", false
	}
	return best, true
}

func scoreSchema(fields []Field, normalized map[string]bool) (score, requiredHit, requiredTotal int) {
	for _, f := range fields {
		if f.Required {
			requiredTotal++
		}
		hit := false
		for header := range normalized {
			if matchField(f, header) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		if f.Required {
			score += requiredFieldWeight
			requiredHit++
		} else {
			score += secondaryFieldWeight
		}
	}
	return score, requiredHit, requiredTotal
}
