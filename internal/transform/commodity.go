package transform

import (
	"sort"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// BinWidth is the size in years of a commodity dominance bin.
const BinWidth = 5

// TopCommodityResult is one mart_top_ag_items row: the commodity with the
// highest mean production index within a (country, 5-year bin).
type TopCommodityResult struct {
	Country   string
	YearBin   int
	Item      string
	MeanIndex float64
}

// BinFor returns the left edge of the 5-year bin containing year. Bins are
// fixed on the calendar, left-closed right-open: [1990,1995), [1995,2000), ...
func BinFor(year int) int {
	offset := year - BaselineYear
	// Floor division: Go truncates toward zero, which is wrong for years
	// before the baseline.
	q := offset / BinWidth
	if offset%BinWidth < 0 {
		q--
	}
	return BaselineYear + q*BinWidth
}

type binKey struct {
	country string
	bin     int
}

type meanAcc struct {
	sum float64
	n   int
}

// TopCommodities selects, for each (country, bin) with at least one
// observation, the item with the maximum mean index value. Ties break by
// ascending alphabetical item name; bins with no records emit nothing.
// Output ordering and tie-breaks are deterministic for identical input.
func TopCommodities(items []staging.CommodityIndexRecord) []TopCommodityResult {
	acc := make(map[binKey]map[string]*meanAcc)
	for _, rec := range items {
		k := binKey{rec.Country, BinFor(rec.Year)}
		byItem := acc[k]
		if byItem == nil {
			byItem = make(map[string]*meanAcc)
			acc[k] = byItem
		}
		a := byItem[rec.Item]
		if a == nil {
			a = &meanAcc{}
			byItem[rec.Item] = a
		}
		a.sum += rec.IndexValue
		a.n++
	}

	keys := make([]binKey, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].bin < keys[j].bin
	})

	results := make([]TopCommodityResult, 0, len(keys))
	for _, k := range keys {
		byItem := acc[k]
		names := make([]string, 0, len(byItem))
		for name := range byItem {
			names = append(names, name)
		}
		sort.Strings(names)

		var top string
		var topMean float64
		for i, name := range names {
			a := byItem[name]
			mean := a.sum / float64(a.n)
			// Strict > keeps the alphabetically first item on ties.
			if i == 0 || mean > topMean {
				top = name
				topMean = mean
			}
		}
		results = append(results, TopCommodityResult{
			Country:   k.country,
			YearBin:   k.bin,
			Item:      top,
			MeanIndex: topMean,
		})
	}
	return results
}
