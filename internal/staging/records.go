// Package staging defines the typed staging records the pipeline ingests
// and the loaders/validators that produce them from raw sources.
//
// Records are immutable value rows: loaders create them once per run and
// the transform layer only ever reads them.
package staging

// Gas identifies a greenhouse gas series.
type Gas string

// Greenhouse gases present in the emissions source.
const (
	GasCH4 Gas = "CH4"
	GasCO2 Gas = "CO2"
	GasN2O Gas = "N2O"
)

// Valid reports whether g is one of the known gases.
func (g Gas) Valid() bool {
	switch g {
	case GasCH4, GasCO2, GasN2O:
		return true
	}
	return false
}

// Unit describes how a sector value is expressed.
type Unit string

const (
	// UnitProportion means the value is already a fraction of the country total.
	UnitProportion Unit = "proportion"
	// UnitAbsolute means the value is an absolute quantity (e.g. kt CO2).
	UnitAbsolute Unit = "absolute"
)

// GasScope flags which gas basket a sector dataset covers. It never changes
// numeric values; it only marks cross-country comparability for downstream
// consumers.
type GasScope string

const (
	GasScopeCO2Only GasScope = "CO2_only"
	GasScopeFullGHG GasScope = "full_GHG"
)

// EmissionsRecord is one (country, gas, year) emissions observation in kt.
type EmissionsRecord struct {
	Country string
	Gas     Gas
	Year    int
	ValueKt float64
}

// ProductionIndexRecord is a gross production index observation
// (base period 2014-2016 = 100). Spain is structurally absent from this
// series; that is a known source gap, not an error.
type ProductionIndexRecord struct {
	Country    string
	Year       int
	IndexValue float64
}

// CommodityIndexRecord is a per-commodity production index observation.
type CommodityIndexRecord struct {
	Country     string
	ItemCodeCPC string
	Item        string
	Year        int
	IndexValue  float64
}

// SectorShareRecord is one sector's emissions contribution for a country,
// either as an absolute quantity or a pre-computed proportion.
type SectorShareRecord struct {
	Country  string
	Sector   string
	Value    float64
	Unit     Unit
	GasScope GasScope
}

// GdpRecord is a World Bank GDP observation in constant 2015 USD.
type GdpRecord struct {
	ISO3       string
	Country    string
	Year       int
	GdpUSD2015 float64
}
