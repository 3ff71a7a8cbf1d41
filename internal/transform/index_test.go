package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

func emissionsRow(country string, gas staging.Gas, year int, kt float64) staging.EmissionsRecord {
	return staging.EmissionsRecord{Country: country, Gas: gas, Year: year, ValueKt: kt}
}

func TestBuildEmissionsIndex_GermanyExample(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Germany", staging.GasCH4, 1990, 500),
		emissionsRow("Germany", staging.GasCH4, 2021, 290),
	}, nil)

	require.Empty(t, out.Errors)
	require.Len(t, out.Index, 2)
	assert.Equal(t, 100.0, out.Index[0].Index1990, "baseline year must index to exactly 100")
	assert.InDelta(t, 58.0, out.Index[1].Index1990, 1e-9)

	require.Len(t, out.Changes, 1)
	change := out.Changes[0]
	assert.InDelta(t, -42.0, change.PercentChange, 1e-9)
	assert.Equal(t, 1990, change.BaselineYear)
	assert.Equal(t, 2021, change.LatestYear)
	assert.Equal(t, 500.0, change.ValueBaseline)
	assert.Equal(t, 290.0, change.ValueLatest)
}

func TestBuildEmissionsIndex_BaselineExactly100(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("France", staging.GasN2O, 1990, 123.456),
		emissionsRow("France", staging.GasN2O, 1995, 110.0),
		emissionsRow("Italy", staging.GasCO2, 1990, 9000),
		emissionsRow("Italy", staging.GasCO2, 2000, 8000),
	}, nil)

	require.Empty(t, out.Errors)
	for _, res := range out.Index {
		if res.Year == 1990 {
			assert.Equal(t, 100.0, res.Index1990, "%s/%s", res.Country, res.Gas)
		}
	}
}

func TestBuildEmissionsIndex_PercentChangeConsistentWithIndex(t *testing.T) {
	rows := []staging.EmissionsRecord{
		emissionsRow("Spain", staging.GasCO2, 1990, 227.5),
		emissionsRow("Spain", staging.GasCO2, 2000, 260.25),
		emissionsRow("Spain", staging.GasCO2, 2022, 198.125),
	}
	out := BuildEmissionsIndex(rows, nil)
	require.Empty(t, out.Errors)
	require.Len(t, out.Changes, 1)

	// Recomputing percent change from the index series must agree with the
	// value computed from raw kt.
	var baseIdx, latestIdx float64
	for _, res := range out.Index {
		switch res.Year {
		case 1990:
			baseIdx = res.Index1990
		case 2022:
			latestIdx = res.Index1990
		}
	}
	fromIndex := 100 * (latestIdx - baseIdx) / baseIdx
	assert.InDelta(t, out.Changes[0].PercentChange, fromIndex, 1e-9)
}

func TestBuildEmissionsIndex_MissingBaselineYearFallsForward(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Italy", staging.GasCH4, 1992, 400),
		emissionsRow("Italy", staging.GasCH4, 2020, 300),
	}, nil)

	require.Empty(t, out.Errors)
	require.Len(t, out.Changes, 1)
	assert.Equal(t, 1992, out.Changes[0].BaselineYear, "earliest year >= 1990 becomes the baseline")
	assert.Equal(t, 100.0, out.Index[0].Index1990)
}

func TestBuildEmissionsIndex_NoBaselineIsGroupError(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Italy", staging.GasCH4, 1985, 400),
		emissionsRow("Italy", staging.GasCH4, 1989, 410),
		// Healthy group alongside the failing one.
		emissionsRow("France", staging.GasCO2, 1990, 100),
		emissionsRow("France", staging.GasCO2, 2000, 90),
	}, nil)

	require.Len(t, out.Errors, 1)
	var missing *MissingBaselineError
	require.True(t, errors.As(out.Errors[0], &missing))
	assert.Equal(t, "Italy", missing.Country)
	assert.Equal(t, staging.GasCH4, missing.Gas)

	// The failing group must not block the healthy one.
	require.Len(t, out.Changes, 1)
	assert.Equal(t, "France", out.Changes[0].Country)
}

func TestBuildEmissionsIndex_ZeroBaselineIsGroupError(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Spain", staging.GasN2O, 1990, 0),
		emissionsRow("Spain", staging.GasN2O, 2000, 5),
	}, nil)

	require.Len(t, out.Errors, 1)
	var zero *ZeroBaselineError
	require.True(t, errors.As(out.Errors[0], &zero))
	assert.Equal(t, 1990, zero.Year)
	assert.Empty(t, out.Index, "no Inf/NaN rows may leak out of a zero-baseline group")
}

func TestBuildEmissionsIndex_SingleYearGroup(t *testing.T) {
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Germany", staging.GasN2O, 1990, 42),
	}, nil)

	require.Empty(t, out.Errors)
	require.Len(t, out.Index, 1)
	assert.Equal(t, 100.0, out.Index[0].Index1990)

	// baseline == latest, so percent change is 0 and slope is omitted.
	require.Len(t, out.Changes, 1)
	assert.Equal(t, 0.0, out.Changes[0].PercentChange)
	assert.Empty(t, out.Slopes)
}

func TestBuildEmissionsIndex_Slope(t *testing.T) {
	// Index falls exactly 2 points per year: 100, 98, 96.
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("France", staging.GasCO2, 1990, 200),
		emissionsRow("France", staging.GasCO2, 1991, 196),
		emissionsRow("France", staging.GasCO2, 1992, 192),
	}, nil)

	require.Empty(t, out.Errors)
	require.Len(t, out.Slopes, 1)
	assert.InDelta(t, -2.0, out.Slopes[0].AnnualSlope, 1e-9)
}

func TestBuildEmissionsIndex_GdpIntensity(t *testing.T) {
	gdp := []staging.GdpRecord{
		{ISO3: "DEU", Country: "Germany", Year: 1990, GdpUSD2015: 2.0e12},
		// 2021 deliberately missing.
	}
	out := BuildEmissionsIndex([]staging.EmissionsRecord{
		emissionsRow("Germany", staging.GasCO2, 1990, 1000),
		emissionsRow("Germany", staging.GasCO2, 2021, 700),
	}, gdp)

	require.Empty(t, out.Errors)
	require.Len(t, out.Index, 2)
	require.NotNil(t, out.Index[0].EmissionsPerGdp)
	assert.InDelta(t, 1000/2.0e12, *out.Index[0].EmissionsPerGdp, 1e-24)
	assert.Nil(t, out.Index[1].EmissionsPerGdp, "years without GDP omit only the intensity field")
	assert.InDelta(t, 70.0, out.Index[1].Index1990, 1e-9, "other fields stay populated")
}

func TestBuildEmissionsIndex_Deterministic(t *testing.T) {
	rows := []staging.EmissionsRecord{
		emissionsRow("Italy", staging.GasCO2, 1995, 80),
		emissionsRow("France", staging.GasCH4, 1990, 50),
		emissionsRow("Italy", staging.GasCO2, 1990, 100),
		emissionsRow("France", staging.GasCH4, 2000, 45),
	}
	first := BuildEmissionsIndex(rows, nil)

	reversed := make([]staging.EmissionsRecord, len(rows))
	for i, rec := range rows {
		reversed[len(rows)-1-i] = rec
	}
	second := BuildEmissionsIndex(reversed, nil)

	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, first.Changes, second.Changes)
	assert.Equal(t, first.Slopes, second.Slopes)
}
