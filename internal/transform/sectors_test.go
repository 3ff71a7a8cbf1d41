package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// identityMapping maps each name to itself.
func identityMapping(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = n
	}
	return m
}

func sectorRow(country, sector string, value float64, unit staging.Unit, scope staging.GasScope) staging.SectorShareRecord {
	return staging.SectorShareRecord{Country: country, Sector: sector, Value: value, Unit: unit, GasScope: scope}
}

func TestNormalizeSectorShares_SpainExample(t *testing.T) {
	// Raw proportions sum to 1.0 including the unmappable Other bucket, so
	// the retained mass after exclusion is 0.882.
	records := []staging.SectorShareRecord{
		sectorRow("Spain", "Agriculture", 0.138, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Transport", 0.300, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Energy", 0.120, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Industry", 0.150, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Residential", 0.080, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Waste", 0.094, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Other", 0.118, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"Spain": {
			Canonical: identityMapping("Agriculture", "Transport", "Energy", "Industry", "Residential", "Waste"),
			Exclude:   []string{"Other"},
		},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Empty(t, errs)
	require.Len(t, results, 6)

	var sum float64
	byName := make(map[string]SectorShareResult)
	for _, res := range results {
		sum += res.Share
		byName[res.Sector] = res
	}
	assert.InDelta(t, 1.0, sum, 1e-6, "shares must renormalize to 1 after excluding Other")
	assert.InDelta(t, 0.138/0.882, byName["Agriculture"].Share, 1e-9)
	assert.Equal(t, staging.GasScopeFullGHG, byName["Agriculture"].GasScope)
}

func TestNormalizeSectorShares_AbsoluteUnits(t *testing.T) {
	records := []staging.SectorShareRecord{
		sectorRow("Germany", "1_ENERGY", 300, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("Germany", "2_INDUSTRY", 100, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("Germany", "5_WASTE", 100, staging.UnitAbsolute, staging.GasScopeCO2Only),
	}
	mappings := map[string]SectorMapping{
		"Germany": {Canonical: map[string]string{
			"1_ENERGY":   "Energy",
			"2_INDUSTRY": "Industry",
			"5_WASTE":    "Waste",
		}},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Empty(t, errs)
	require.Len(t, results, 3)

	byName := make(map[string]float64)
	for _, res := range results {
		byName[res.Sector] = res.Share
	}
	assert.InDelta(t, 0.6, byName["Energy"], 1e-9)
	assert.InDelta(t, 0.2, byName["Industry"], 1e-9)
	assert.InDelta(t, 0.2, byName["Waste"], 1e-9)
}

func TestNormalizeSectorShares_ProportionsNotAssumedNormalized(t *testing.T) {
	// Supplied proportions sum to 0.9; they must still come out summing to 1.
	records := []staging.SectorShareRecord{
		sectorRow("France", "Transport", 0.6, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("France", "Energy", 0.3, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"France": {Canonical: identityMapping("Transport", "Energy")},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Empty(t, errs)

	var sum float64
	for _, res := range results {
		sum += res.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.InDelta(t, 2.0/3.0, results[1].Share, 1e-9) // Transport
}

func TestNormalizeSectorShares_UnmappedSectorFailsCountryOnly(t *testing.T) {
	records := []staging.SectorShareRecord{
		sectorRow("Italy", "Buildings", 10, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("Italy", "Mystery", 5, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("France", "Transport", 1.0, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"Italy":  {Canonical: map[string]string{"Buildings": "Residential and Commercial"}},
		"France": {Canonical: identityMapping("Transport")},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Len(t, errs, 1)
	var unmapped *UnmappedSectorError
	require.True(t, errors.As(errs[0], &unmapped))
	assert.Equal(t, "Italy", unmapped.Country)
	assert.Equal(t, "Mystery", unmapped.Sector)

	// France still comes through.
	require.Len(t, results, 1)
	assert.Equal(t, "France", results[0].Country)
	assert.InDelta(t, 1.0, results[0].Share, 1e-9)
}

func TestNormalizeSectorShares_ZeroAbsoluteTotalFailsCountryOnly(t *testing.T) {
	records := []staging.SectorShareRecord{
		sectorRow("Germany", "1_ENERGY", 0, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("Germany", "2_INDUSTRY", 0, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("France", "Transport", 1.0, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"Germany": {Canonical: map[string]string{"1_ENERGY": "Energy", "2_INDUSTRY": "Industry"}},
		"France":  {Canonical: identityMapping("Transport")},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Len(t, errs, 1)
	var zero *ZeroSectorTotalError
	require.True(t, errors.As(errs[0], &zero))
	assert.Equal(t, "Germany", zero.Country)

	// No NaN shares leak out; France still comes through.
	require.Len(t, results, 1)
	assert.Equal(t, "France", results[0].Country)
}

func TestNormalizeSectorShares_ZeroRetainedSumFailsCountry(t *testing.T) {
	// All proportional mass sits in the excluded bucket; the retained sum is
	// zero and shares are undefined.
	records := []staging.SectorShareRecord{
		sectorRow("Spain", "Energy", 0, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Other", 1.0, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"Spain": {Canonical: identityMapping("Energy"), Exclude: []string{"Other"}},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	var zero *ZeroSectorTotalError
	require.True(t, errors.As(errs[0], &zero))
	assert.Equal(t, "Spain", zero.Country)
}

func TestNormalizeSectorShares_CanonicalRenames(t *testing.T) {
	records := []staging.SectorShareRecord{
		sectorRow("Italy", "Electricity and heat", 50, staging.UnitAbsolute, staging.GasScopeCO2Only),
		sectorRow("Italy", "Land-use change and forestry", 50, staging.UnitAbsolute, staging.GasScopeCO2Only),
	}
	mappings := map[string]SectorMapping{
		"Italy": {Canonical: map[string]string{
			"Electricity and heat":         "Energy",
			"Land-use change and forestry": "LULUCF",
		}},
	}

	results, errs := NormalizeSectorShares(records, mappings)
	require.Empty(t, errs)
	require.Len(t, results, 2)
	assert.Equal(t, "Energy", results[0].Sector)
	assert.Equal(t, "LULUCF", results[1].Sector)
}

func TestNormalizeSectorShares_Deterministic(t *testing.T) {
	records := []staging.SectorShareRecord{
		sectorRow("Spain", "Waste", 0.1, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Energy", 0.5, staging.UnitProportion, staging.GasScopeFullGHG),
		sectorRow("Spain", "Transport", 0.4, staging.UnitProportion, staging.GasScopeFullGHG),
	}
	mappings := map[string]SectorMapping{
		"Spain": {Canonical: identityMapping("Waste", "Energy", "Transport")},
	}

	first, errs := NormalizeSectorShares(records, mappings)
	require.Empty(t, errs)

	reversed := []staging.SectorShareRecord{records[2], records[1], records[0]}
	second, errs := NormalizeSectorShares(reversed, mappings)
	require.Empty(t, errs)

	assert.Equal(t, first, second)
}
