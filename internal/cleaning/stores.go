package cleaning

import (
	"context"

	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// cleanStores validates the store directory: identity plus the three
// closed-set fields. City and channel have no safe default, so bad values
// reject the row; fulfillment_type defaults to Own when absent.
func (p *Pipeline) cleanStores(ctx context.Context, t *table.Table, log *Log, stats *Stats) *table.Table {
	tbl := enums.TableStores
	rowsIn := t.Len()
	mark := len(log.Issues)

	t.EnsureColumn(schema.ColFulfillmentType, string(enums.FulfillmentOwn))
	trimColumn(t, schema.ColStoreID)

	ids := recordIdentifiers(t, schema.ColStoreID)
	var rejects []rejection

	for i, storeID := range t.Column(schema.ColStoreID) {
		if storeID == "" {
			rejects = append(rejects, rejection{
				row:       i,
				issueType: IssueInvalid(schema.ColStoreID),
				detail:    "empty store_id",
				action:    "row rejected: no safe default for identity/category field",
			})
		}
	}

	cities, cityRejects, cityIssues := normalizeEnumColumn(
		tbl, schema.ColCity, t.Column(schema.ColCity),
		enumNormalizer(enums.NormalizeCity), enums.Cities(),
		p.cfg.FuzzyThreshold, "",
	)
	_ = t.SetColumn(schema.ColCity, cities)
	rejects = append(rejects, cityRejects...)
	logIssues(log, cityIssues)

	channels, channelRejects, channelIssues := normalizeEnumColumn(
		tbl, schema.ColChannel, t.Column(schema.ColChannel),
		enumNormalizer(enums.NormalizeChannel), enums.Channels(),
		p.cfg.FuzzyThreshold, "",
	)
	_ = t.SetColumn(schema.ColChannel, channels)
	rejects = append(rejects, channelRejects...)
	logIssues(log, channelIssues)

	fulfillments, fulfillmentRejects, fulfillmentIssues := normalizeEnumColumn(
		tbl, schema.ColFulfillmentType, t.Column(schema.ColFulfillmentType),
		enumNormalizer(enums.NormalizeFulfillmentType), enums.FulfillmentTypes(),
		p.cfg.FuzzyThreshold, string(enums.FulfillmentOwn),
	)
	_ = t.SetColumn(schema.ColFulfillmentType, fulfillments)
	rejects = append(rejects, fulfillmentRejects...)
	logIssues(log, fulfillmentIssues)

	t = applyRejections(tbl, t, rejects, ids, log)
	t = dedup(tbl, t, []string{schema.ColStoreID}, schema.ColStoreID, schema.ColStoreID, nil, log)

	p.finishTable(ctx, tbl, log, stats, mark, rowsIn, t.Len())
	return t
}
