// Package transform reconciles staging records into mart rows: baseline
// index normalization, percent change, OLS trend slopes, emissions
// intensity, commodity binning, and sector-share renormalization.
//
// Every transform is a pure function over immutable in-memory rows.
// Failures are scoped to the offending (country, gas) or country group and
// returned alongside the results for the groups that succeeded.
package transform

import (
	"sort"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// BaselineYear is the reference year all emissions indices are rebased to.
const BaselineYear = 1990

// EmissionsIndexResult is one mart_emissions_index row. EmissionsPerGdp is
// nil for years with no matching GDP observation; the rest of the row stays
// populated.
type EmissionsIndexResult struct {
	Country         string
	Gas             staging.Gas
	Year            int
	ValueKt         float64
	Index1990       float64
	EmissionsPerGdp *float64
}

// PercentChangeResult is one mart_percent_change row, computed over
// baseline year -> latest available year within a (country, gas) group.
type PercentChangeResult struct {
	Country       string
	Gas           staging.Gas
	ValueBaseline float64
	ValueLatest   float64
	PercentChange float64
	BaselineYear  int
	LatestYear    int
}

// SlopeResult is one mart_index_slopes row: the OLS slope of the 1990-based
// index against year. Groups with fewer than two distinct years are
// omitted, not zeroed.
type SlopeResult struct {
	Country     string
	Gas         staging.Gas
	AnnualSlope float64
}

// IndexOutput bundles the three derived series for all groups that
// succeeded, plus one error per group that failed. A failing group never
// blocks the others.
type IndexOutput struct {
	Index   []EmissionsIndexResult
	Changes []PercentChangeResult
	Slopes  []SlopeResult
	Errors  []error
}

type groupKey struct {
	country string
	gas     staging.Gas
}

// BuildEmissionsIndex derives the 1990-based index, percent change, trend
// slope, and GDP intensity for every (country, gas) group in emissions.
// GDP rows are matched by (country, year); gdp may be nil.
func BuildEmissionsIndex(emissions []staging.EmissionsRecord, gdp []staging.GdpRecord) IndexOutput {
	groups := make(map[groupKey][]staging.EmissionsRecord)
	for _, rec := range emissions {
		k := groupKey{rec.Country, rec.Gas}
		groups[k] = append(groups[k], rec)
	}

	// Deterministic group order regardless of input or map iteration order.
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].gas < keys[j].gas
	})

	gdpByCountryYear := make(map[string]map[int]float64)
	for _, g := range gdp {
		byYear := gdpByCountryYear[g.Country]
		if byYear == nil {
			byYear = make(map[int]float64)
			gdpByCountryYear[g.Country] = byYear
		}
		byYear[g.Year] = g.GdpUSD2015
	}

	var out IndexOutput
	for _, k := range keys {
		rows := groups[k]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

		baseline, ok := findBaseline(rows)
		if !ok {
			out.Errors = append(out.Errors, &MissingBaselineError{Country: k.country, Gas: k.gas})
			continue
		}
		if baseline.ValueKt == 0 {
			out.Errors = append(out.Errors, &ZeroBaselineError{Country: k.country, Gas: k.gas, Year: baseline.Year})
			continue
		}

		for _, rec := range rows {
			res := EmissionsIndexResult{
				Country:   rec.Country,
				Gas:       rec.Gas,
				Year:      rec.Year,
				ValueKt:   rec.ValueKt,
				Index1990: 100 * rec.ValueKt / baseline.ValueKt,
			}
			if byYear, ok := gdpByCountryYear[rec.Country]; ok {
				if v, ok := byYear[rec.Year]; ok {
					intensity := rec.ValueKt / v
					res.EmissionsPerGdp = &intensity
				}
			}
			out.Index = append(out.Index, res)
		}

		latest := rows[len(rows)-1]
		out.Changes = append(out.Changes, PercentChangeResult{
			Country:       k.country,
			Gas:           k.gas,
			ValueBaseline: baseline.ValueKt,
			ValueLatest:   latest.ValueKt,
			PercentChange: 100 * (latest.ValueKt - baseline.ValueKt) / baseline.ValueKt,
			BaselineYear:  baseline.Year,
			LatestYear:    latest.Year,
		})

		if slope, ok := indexSlope(rows, baseline.ValueKt); ok {
			out.Slopes = append(out.Slopes, SlopeResult{Country: k.country, Gas: k.gas, AnnualSlope: slope})
		}
	}
	return out
}

// findBaseline returns the record at BaselineYear, or the earliest record
// at a later year when BaselineYear itself is missing. rows must be sorted
// by year ascending.
func findBaseline(rows []staging.EmissionsRecord) (staging.EmissionsRecord, bool) {
	for _, rec := range rows {
		if rec.Year >= BaselineYear {
			return rec, true
		}
	}
	return staging.EmissionsRecord{}, false
}

// indexSlope fits index = a + b*year by ordinary least squares and returns
// b. Requires at least two distinct years.
func indexSlope(rows []staging.EmissionsRecord, baselineValue float64) (float64, bool) {
	distinct := make(map[int]struct{}, len(rows))
	for _, rec := range rows {
		distinct[rec.Year] = struct{}{}
	}
	if len(distinct) < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for _, rec := range rows {
		sumX += float64(rec.Year)
		sumY += 100 * rec.ValueKt / baselineValue
	}
	n := float64(len(rows))
	meanX, meanY := sumX/n, sumY/n

	var num, den float64
	for _, rec := range rows {
		dx := float64(rec.Year) - meanX
		dy := 100*rec.ValueKt/baselineValue - meanY
		num += dx * dy
		den += dx * dx
	}
	return num / den, true
}
