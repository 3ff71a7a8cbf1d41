package staging

import (
	"fmt"
	"log/slog"
	"regexp"
)

// FAOSTAT column names shared by the source CSVs.
const (
	colArea    = "Area"
	colElement = "Element"
	colYear    = "Year"
	colValue   = "Value"
	colItem    = "Item"
	colItemCPC = "Item Code (CPC)"
)

// elementWrapper matches the FAOSTAT "Emissions (CH4)" element form.
var elementWrapper = regexp.MustCompile(`^Emissions \((CH4|CO2|N2O)\)$`)

// LoadEmissionsCSV loads the FAOSTAT emissions CSV, unwraps
// "Emissions (X)" element names into gas codes, and filters to countries.
// Rows with an empty Value cell are skipped (FAOSTAT marks gaps that way).
func LoadEmissionsCSV(path string, countries []string, logger *slog.Logger) ([]EmissionsRecord, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	table, err := readCSV(path, colArea, colElement, colYear, colValue)
	if err != nil {
		return nil, err
	}

	keep := inCountries(countries)
	var recs []EmissionsRecord
	for i, row := range table.rows {
		table.rowNum = i + 1
		country := table.field(row, colArea)
		if !keep[country] {
			continue
		}
		if table.field(row, colValue) == "" {
			continue
		}

		element := table.field(row, colElement)
		m := elementWrapper.FindStringSubmatch(element)
		if m == nil {
			return nil, fmt.Errorf("%s row %d: unexpected element %q", path, table.rowNum, element)
		}

		year, err := table.intField(row, colYear)
		if err != nil {
			return nil, err
		}
		value, err := table.floatField(row, colValue)
		if err != nil {
			return nil, err
		}
		recs = append(recs, EmissionsRecord{
			Country: country,
			Gas:     Gas(m[1]),
			Year:    year,
			ValueKt: value,
		})
	}

	logMissingCountries(logger, path, countries, recs, func(r EmissionsRecord) string { return r.Country })
	return recs, nil
}

// LoadProductionCSV loads one or more FAOSTAT production index CSVs that
// share the same schema, concatenates them, and deduplicates rows that
// appear in more than one regional file.
func LoadProductionCSV(paths []string, countries []string, logger *slog.Logger) ([]ProductionIndexRecord, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keep := inCountries(countries)

	type key struct {
		country string
		year    int
	}
	seen := make(map[key]bool)
	var recs []ProductionIndexRecord
	for _, path := range paths {
		table, err := readCSV(path, colArea, colYear, colValue)
		if err != nil {
			return nil, err
		}
		for i, row := range table.rows {
			table.rowNum = i + 1
			country := table.field(row, colArea)
			if !keep[country] || table.field(row, colValue) == "" {
				continue
			}
			year, err := table.intField(row, colYear)
			if err != nil {
				return nil, err
			}
			value, err := table.floatField(row, colValue)
			if err != nil {
				return nil, err
			}
			k := key{country, year}
			if seen[k] {
				continue
			}
			seen[k] = true
			recs = append(recs, ProductionIndexRecord{Country: country, Year: year, IndexValue: value})
		}
	}

	// Spain is structurally absent from this series; absence here is a known
	// source gap, not an ingestion failure.
	logMissingCountries(logger, fmt.Sprintf("%v", paths), countries, recs, func(r ProductionIndexRecord) string { return r.Country })
	return recs, nil
}

// LoadCommodityCSV loads the all-items FAOSTAT production index CSV,
// keeping the commodity code and name columns.
func LoadCommodityCSV(path string, countries []string, logger *slog.Logger) ([]CommodityIndexRecord, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	table, err := readCSV(path, colArea, colItemCPC, colItem, colYear, colValue)
	if err != nil {
		return nil, err
	}

	keep := inCountries(countries)
	var recs []CommodityIndexRecord
	for i, row := range table.rows {
		table.rowNum = i + 1
		country := table.field(row, colArea)
		if !keep[country] || table.field(row, colValue) == "" {
			continue
		}
		year, err := table.intField(row, colYear)
		if err != nil {
			return nil, err
		}
		value, err := table.floatField(row, colValue)
		if err != nil {
			return nil, err
		}
		recs = append(recs, CommodityIndexRecord{
			Country:     country,
			ItemCodeCPC: table.field(row, colItemCPC),
			Item:        table.field(row, colItem),
			Year:        year,
			IndexValue:  value,
		})
	}
	logMissingCountries(logger, path, countries, recs, func(r CommodityIndexRecord) string { return r.Country })
	return recs, nil
}

// LoadSectorCSV loads a normalized per-country sector file with columns
// sector,value and stamps every row with the country's declared unit and
// gas scope.
func LoadSectorCSV(path, country string, unit Unit, scope GasScope) ([]SectorShareRecord, error) {
	table, err := readCSV(path, "sector", "value")
	if err != nil {
		return nil, err
	}

	var recs []SectorShareRecord
	for i, row := range table.rows {
		table.rowNum = i + 1
		sector := table.field(row, "sector")
		if sector == "" {
			continue
		}
		value, err := table.floatField(row, "value")
		if err != nil {
			return nil, err
		}
		recs = append(recs, SectorShareRecord{
			Country:  country,
			Sector:   sector,
			Value:    value,
			Unit:     unit,
			GasScope: scope,
		})
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: no sector rows for %s", path, country)
	}
	return recs, nil
}

// logMissingCountries debug-logs requested countries that produced no rows.
func logMissingCountries[T any](logger *slog.Logger, source string, countries []string, recs []T, countryOf func(T) string) {
	present := make(map[string]bool)
	for _, rec := range recs {
		present[countryOf(rec)] = true
	}
	for _, c := range countries {
		if !present[c] {
			logger.Debug("country absent from source", "source", source, "country", c)
		}
	}
}
