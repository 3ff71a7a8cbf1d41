package transform

import (
	"sort"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// SectorMapping declares, for one country, how raw sector names map onto
// the canonical taxonomy and which raw names may be dropped outright
// (e.g. a generic "Other" bucket with no canonical counterpart).
// Adding a country to the pipeline means adding one of these, not code.
type SectorMapping struct {
	// Canonical maps raw source sector names to canonical names.
	Canonical map[string]string
	// Exclude lists raw names dropped before renormalization.
	Exclude []string
}

func (m SectorMapping) excludable(raw string) bool {
	for _, name := range m.Exclude {
		if name == raw {
			return true
		}
	}
	return false
}

// SectorShareResult is one mart_sector_shares row. Shares for a country sum
// to 1.0 (within floating tolerance) after exclusions. GasScope is carried
// through unchanged as comparability metadata.
type SectorShareResult struct {
	Country  string
	Sector   string
	Share    float64
	GasScope staging.GasScope
}

// NormalizeSectorShares turns heterogeneous per-country sector records
// (mixed absolute/proportional units) into comparable proportions.
//
// Absolute values are first divided by the country total; proportional
// values are taken as supplied. Excludable sectors are then dropped and the
// remainder rescaled to sum to 1.0 — proportions are never assumed
// pre-normalized. A raw sector with no mapping entry fails the whole
// country with an UnmappedSectorError, and a country whose values sum to
// zero fails with a ZeroSectorTotalError; other countries are unaffected.
func NormalizeSectorShares(records []staging.SectorShareRecord, mappings map[string]SectorMapping) ([]SectorShareResult, []error) {
	byCountry := make(map[string][]staging.SectorShareRecord)
	for _, rec := range records {
		byCountry[rec.Country] = append(byCountry[rec.Country], rec)
	}

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var results []SectorShareResult
	var errs []error
	for _, country := range countries {
		rows, err := normalizeCountry(country, byCountry[country], mappings[country])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, rows...)
	}
	return results, errs
}

func normalizeCountry(country string, recs []staging.SectorShareRecord, mapping SectorMapping) ([]SectorShareResult, error) {
	// Absolute units are expressed relative to the country total across all
	// supplied sectors, including ones later excluded — exclusion happens on
	// proportions, matching the proportional-unit path.
	var absTotal float64
	hasAbsolute := false
	for _, rec := range recs {
		if rec.Unit == staging.UnitAbsolute {
			absTotal += rec.Value
			hasAbsolute = true
		}
	}
	if hasAbsolute && absTotal == 0 {
		return nil, &ZeroSectorTotalError{Country: country}
	}

	type kept struct {
		sector string
		share  float64
		scope  staging.GasScope
	}
	var retained []kept
	var retainedSum float64
	for _, rec := range recs {
		if mapping.excludable(rec.Sector) {
			continue
		}
		canonical, ok := mapping.Canonical[rec.Sector]
		if !ok {
			return nil, &UnmappedSectorError{Country: country, Sector: rec.Sector}
		}
		share := rec.Value
		if rec.Unit == staging.UnitAbsolute {
			share = rec.Value / absTotal
		}
		retained = append(retained, kept{sector: canonical, share: share, scope: rec.GasScope})
		retainedSum += share
	}

	if retainedSum == 0 {
		return nil, &ZeroSectorTotalError{Country: country}
	}

	results := make([]SectorShareResult, 0, len(retained))
	for _, k := range retained {
		results = append(results, SectorShareResult{
			Country:  country,
			Sector:   k.sector,
			Share:    k.share / retainedSum,
			GasScope: k.scope,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Sector < results[j].Sector })
	return results, nil
}
