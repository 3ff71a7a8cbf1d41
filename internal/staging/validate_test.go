package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmissions(t *testing.T) {
	valid, report := ValidateEmissions([]EmissionsRecord{
		{Country: "Germany", Gas: GasCH4, Year: 1990, ValueKt: 500},
		{Country: "Germany", Gas: "SF6", Year: 1990, ValueKt: 1},
		{Country: "Italy", Gas: GasCO2, Year: 1850, ValueKt: 1},
		{Country: "Italy", Gas: GasCO2, Year: 1990, ValueKt: -3},
		{Country: "", Gas: GasCO2, Year: 1990, ValueKt: 1},
	})

	require.Len(t, valid, 1)
	assert.Equal(t, "Germany", valid[0].Country)

	require.Len(t, report.Violations, 4)
	assert.False(t, report.Valid())
	assert.Equal(t, "gas", report.Violations[0].Field)
	assert.Equal(t, 1, report.Violations[0].Row)
	assert.Equal(t, "year", report.Violations[1].Field)
	assert.Equal(t, "value_kt", report.Violations[2].Field)
	assert.Equal(t, "country", report.Violations[3].Field)
}

func TestValidateSectorShares(t *testing.T) {
	valid, report := ValidateSectorShares([]SectorShareRecord{
		{Country: "Spain", Sector: "Transport", Value: 0.368, Unit: UnitProportion, GasScope: GasScopeFullGHG},
		{Country: "Spain", Sector: "Energy", Value: 1.5, Unit: UnitProportion, GasScope: GasScopeFullGHG},
		{Country: "Germany", Sector: "1_ENERGY", Value: 300, Unit: UnitAbsolute, GasScope: GasScopeCO2Only},
		{Country: "Germany", Sector: "2_INDUSTRY", Value: 10, Unit: "tonnes", GasScope: GasScopeCO2Only},
	})

	require.Len(t, valid, 2)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, "value", report.Violations[0].Field, "proportion above 1 is rejected")
	assert.Equal(t, "unit", report.Violations[1].Field)
}

func TestValidateGdp(t *testing.T) {
	valid, report := ValidateGdp([]GdpRecord{
		{ISO3: "DEU", Country: "Germany", Year: 1990, GdpUSD2015: 2.0e12},
		{ISO3: "DE", Country: "Germany", Year: 1990, GdpUSD2015: 2.0e12},
		{ISO3: "ITA", Country: "Italy", Year: 1990, GdpUSD2015: 0},
	})

	require.Len(t, valid, 1)
	require.Len(t, report.Violations, 2)
	assert.Equal(t, "iso3", report.Violations[0].Field)
	assert.Equal(t, "gdp_usd_2015", report.Violations[1].Field)
}

func TestReportValid(t *testing.T) {
	_, report := ValidateEmissions([]EmissionsRecord{
		{Country: "France", Gas: GasN2O, Year: 2000, ValueKt: 10},
	})
	assert.True(t, report.Valid())
}
