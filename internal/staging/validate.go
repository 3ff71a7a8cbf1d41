package staging

import "fmt"

// Year bounds accepted at the staging boundary. FAOSTAT series start in
// 1961; anything outside this window is a malformed source row.
const (
	minYear = 1961
	maxYear = 2100
)

// Violation locates one rejected staging row.
type Violation struct {
	Row     int // 0-based position in the input slice
	Field   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("row %d: %s: %s", v.Row, v.Field, v.Message)
}

// Report is the structured outcome of a validation pass: the rows that
// passed plus one violation per rejected row. Transforms consume only the
// valid rows and never re-validate.
type Report struct {
	Violations []Violation
}

// Valid reports whether every row passed.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

func (r *Report) reject(row int, field, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Row: row, Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateEmissions screens emissions rows: known gas, sane year,
// non-negative physical quantity, non-empty country.
func ValidateEmissions(recs []EmissionsRecord) ([]EmissionsRecord, Report) {
	var report Report
	valid := make([]EmissionsRecord, 0, len(recs))
	for i, rec := range recs {
		switch {
		case rec.Country == "":
			report.reject(i, "country", "empty")
		case !rec.Gas.Valid():
			report.reject(i, "gas", "unknown gas %q", rec.Gas)
		case rec.Year < minYear || rec.Year > maxYear:
			report.reject(i, "year", "%d outside [%d, %d]", rec.Year, minYear, maxYear)
		case rec.ValueKt < 0:
			report.reject(i, "value_kt", "negative value %g", rec.ValueKt)
		default:
			valid = append(valid, rec)
		}
	}
	return valid, report
}

// ValidateProductionIndex screens production index rows.
func ValidateProductionIndex(recs []ProductionIndexRecord) ([]ProductionIndexRecord, Report) {
	var report Report
	valid := make([]ProductionIndexRecord, 0, len(recs))
	for i, rec := range recs {
		switch {
		case rec.Country == "":
			report.reject(i, "country", "empty")
		case rec.Year < minYear || rec.Year > maxYear:
			report.reject(i, "year", "%d outside [%d, %d]", rec.Year, minYear, maxYear)
		case rec.IndexValue < 0:
			report.reject(i, "index_value", "negative value %g", rec.IndexValue)
		default:
			valid = append(valid, rec)
		}
	}
	return valid, report
}

// ValidateCommodityItems screens commodity index rows.
func ValidateCommodityItems(recs []CommodityIndexRecord) ([]CommodityIndexRecord, Report) {
	var report Report
	valid := make([]CommodityIndexRecord, 0, len(recs))
	for i, rec := range recs {
		switch {
		case rec.Country == "":
			report.reject(i, "country", "empty")
		case rec.Item == "":
			report.reject(i, "item", "empty")
		case rec.Year < minYear || rec.Year > maxYear:
			report.reject(i, "year", "%d outside [%d, %d]", rec.Year, minYear, maxYear)
		case rec.IndexValue < 0:
			report.reject(i, "index_value", "negative value %g", rec.IndexValue)
		default:
			valid = append(valid, rec)
		}
	}
	return valid, report
}

// ValidateSectorShares screens sector rows: known unit and scope,
// non-negative value, proportions no greater than 1.
func ValidateSectorShares(recs []SectorShareRecord) ([]SectorShareRecord, Report) {
	var report Report
	valid := make([]SectorShareRecord, 0, len(recs))
	for i, rec := range recs {
		switch {
		case rec.Country == "":
			report.reject(i, "country", "empty")
		case rec.Sector == "":
			report.reject(i, "sector", "empty")
		case rec.Unit != UnitProportion && rec.Unit != UnitAbsolute:
			report.reject(i, "unit", "unknown unit %q", rec.Unit)
		case rec.GasScope != GasScopeCO2Only && rec.GasScope != GasScopeFullGHG:
			report.reject(i, "gas_scope", "unknown scope %q", rec.GasScope)
		case rec.Value < 0:
			report.reject(i, "value", "negative value %g", rec.Value)
		case rec.Unit == UnitProportion && rec.Value > 1:
			report.reject(i, "value", "proportion %g exceeds 1", rec.Value)
		default:
			valid = append(valid, rec)
		}
	}
	return valid, report
}

// ValidateGdp screens GDP rows.
func ValidateGdp(recs []GdpRecord) ([]GdpRecord, Report) {
	var report Report
	valid := make([]GdpRecord, 0, len(recs))
	for i, rec := range recs {
		switch {
		case len(rec.ISO3) != 3:
			report.reject(i, "iso3", "bad code %q", rec.ISO3)
		case rec.Year < minYear || rec.Year > maxYear:
			report.reject(i, "year", "%d outside [%d, %d]", rec.Year, minYear, maxYear)
		case rec.GdpUSD2015 <= 0:
			report.reject(i, "gdp_usd_2015", "non-positive value %g", rec.GdpUSD2015)
		default:
			valid = append(valid, rec)
		}
	}
	return valid, report
}
