package cleaning

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaepulse/pulse-backend/pkg/enums"
)

func TestNormalizeEnumColumn(t *testing.T) {
	values := []string{"Dubai", "dubayy", "Sharjahh", "Atlantis", ""}
	out, rejects, issues := normalizeEnumColumn(
		enums.TableStores, "city", values,
		enumNormalizer(enums.NormalizeCity), enums.Cities(), 0.85, "",
	)

	assert.Equal(t, "Dubai", out[0])
	assert.Equal(t, "Dubai", out[1], "synonym spelling should map to canonical")
	assert.Equal(t, "Sharjah", out[2], "near-miss should fuzzy match")

	require.Len(t, rejects, 2)
	assert.Equal(t, 3, rejects[0].row)
	assert.Equal(t, "INVALID_CITY", rejects[0].issueType)
	assert.Equal(t, 4, rejects[1].row, "empty value rejects when no default exists")

	require.Len(t, issues, 1)
	assert.Equal(t, "NONSTANDARD_CITY", issues[0].Type)
	assert.Equal(t, 2, issues[0].Rows)
}

func TestNormalizeEnumColumnEmptyDefault(t *testing.T) {
	out, rejects, issues := normalizeEnumColumn(
		enums.TableStores, "fulfillment_type", []string{"", "3pl"},
		enumNormalizer(enums.NormalizeFulfillmentType), enums.FulfillmentTypes(), 0.85, "Own",
	)
	assert.Equal(t, []string{"Own", "3PL"}, out)
	assert.Empty(t, rejects)
	require.Len(t, issues, 2)
	assert.Equal(t, "NONSTANDARD_FULFILLMENT_TYPE", issues[0].Type)
	assert.Equal(t, "MISSING_FULFILLMENT_TYPE", issues[1].Type)
}

func TestImputeWithDefault(t *testing.T) {
	out, issues := imputeWithDefault(enums.TableSales, "qty", []string{"3", "", "-2", "junk"}, 1)
	assert.Equal(t, []string{"3", "1", "1", "1"}, out)
	require.Len(t, issues, 2)
	assert.Equal(t, "MISSING_QTY", issues[0].Type)
	assert.Equal(t, 2, issues[0].Rows)
	assert.Equal(t, "NEGATIVE_QTY", issues[1].Type)
	assert.Equal(t, 1, issues[1].Rows)
}

func TestRepairNegativesMedian(t *testing.T) {
	out, issues := repairNegatives(enums.TableProducts, "base_price", []string{"100", "-5", "80", "120"}, negativeToMedian)
	require.Len(t, issues, 1)
	assert.Equal(t, "NEGATIVE_BASE_PRICE", issues[0].Type)

	repaired, err := strconv.ParseFloat(out[1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 100, repaired, 1e-9, "median of the non-negative values")
}

func TestCapExtremes(t *testing.T) {
	values := make([]string, 0, 21)
	for i := 0; i < 20; i++ {
		values = append(values, "10")
	}
	values = append(values, "1000")

	out, issues, _ := capExtremes(enums.TableSales, "selling_price", values, 2.5, 4)
	require.Len(t, issues, 1)
	assert.Equal(t, "EXTREME_SELLING_PRICE", issues[0].Type)
	assert.Equal(t, "25", out[20], "capped at 2.5x P95")

	// A second pass over the capped column must change nothing.
	again, issues, _ := capExtremes(enums.TableSales, "selling_price", out, 2.5, 4)
	assert.Empty(t, issues)
	assert.Equal(t, out, again)
}

func TestCapExtremesCountsFenceOnly(t *testing.T) {
	// 29 is outside the 1.5x IQR fence of twenty 10s but well under 4x P95:
	// counted, not capped.
	values := []string{"10", "10", "10", "10", "10", "10", "10", "10", "10", "29"}
	out, issues, outliers := capExtremes(enums.TableInventory, "stock_on_hand", values, 2.5, 4)
	assert.Empty(t, issues)
	assert.Equal(t, 1, outliers)
	assert.Equal(t, values, out)
}

func TestValidateTimestamps(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rejects := validateTimestamps([]string{
		"2024-01-15 10:00:00",
		"15/01/2024 09:30:00",
		"not a date",
		"2030-01-01",
		"2015-03-04",
	}, now, 2020)

	require.Len(t, rejects, 3)
	assert.Equal(t, IssueInvalidTimestamp, rejects[0].issueType)
	assert.Equal(t, 2, rejects[0].row)
	assert.Equal(t, IssueFutureDateOutlier, rejects[1].issueType)
	assert.Equal(t, 3, rejects[1].row)
	assert.Equal(t, IssueOldDateOutlier, rejects[2].issueType)
	assert.Equal(t, 4, rejects[2].row)
}

func TestCoerceBoolean(t *testing.T) {
	out, issues := coerceBoolean(enums.TableSales, "return_flag", []string{"TRUE", "no", "1", "", "maybe"})
	assert.Equal(t, []string{"true", "false", "true", "false", "false"}, out)
	require.Len(t, issues, 1)
	assert.Equal(t, "INVALID_RETURN_FLAG", issues[0].Type)
	assert.Equal(t, 1, issues[0].Rows)
}

func TestBestFuzzyMatch(t *testing.T) {
	match, score, ok := bestFuzzyMatch("Electroncs", enums.Categories(), 0.85)
	require.True(t, ok)
	assert.Equal(t, "Electronics", match)
	assert.GreaterOrEqual(t, score, 0.85)

	_, _, ok = bestFuzzyMatch("Furniture", enums.Categories(), 0.85)
	assert.False(t, ok)
}
