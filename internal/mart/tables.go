// Package mart declares the canonical staging and mart table schemas and
// writes rows to them. Every write is a full replace inside a transaction:
// readers observe either the complete prior version or the complete new
// version, never a mix.
package mart

import "fmt"

// Column is one declared column of a pipeline table.
type Column struct {
	Name string
	Type string // DuckDB type: VARCHAR, INTEGER, DOUBLE
}

// Staging table names.
const (
	TableStgEmissions    = "stg_emissions"
	TableStgAgProduction = "stg_ag_production"
	TableStgFvProduction = "stg_fv_production"
	TableStgAgItems      = "stg_ag_items"
	TableStgSectorShares = "stg_sector_shares"
	TableStgGdp          = "stg_gdp"
)

// Mart table names.
const (
	TableEmissionsIndex = "mart_emissions_index"
	TablePercentChange  = "mart_percent_change"
	TableIndexSlopes    = "mart_index_slopes"
	TableTopAgItems     = "mart_top_ag_items"
	TableSectorShares   = "mart_sector_shares"
)

// Schemas maps every table name to its declared column set. Writes are
// validated against this before any SQL runs.
var Schemas = map[string][]Column{
	TableStgEmissions: {
		{"country", "VARCHAR"},
		{"gas", "VARCHAR"},
		{"year", "INTEGER"},
		{"value_kt", "DOUBLE"},
	},
	TableStgAgProduction: {
		{"country", "VARCHAR"},
		{"year", "INTEGER"},
		{"index_value", "DOUBLE"},
	},
	TableStgFvProduction: {
		{"country", "VARCHAR"},
		{"year", "INTEGER"},
		{"index_value", "DOUBLE"},
	},
	TableStgAgItems: {
		{"country", "VARCHAR"},
		{"item_code_cpc", "VARCHAR"},
		{"item", "VARCHAR"},
		{"year", "INTEGER"},
		{"index_value", "DOUBLE"},
	},
	TableStgSectorShares: {
		{"country", "VARCHAR"},
		{"sector", "VARCHAR"},
		{"value", "DOUBLE"},
		{"unit", "VARCHAR"},
		{"gas_scope", "VARCHAR"},
	},
	TableStgGdp: {
		{"iso3", "VARCHAR"},
		{"country", "VARCHAR"},
		{"year", "INTEGER"},
		{"gdp_usd_2015", "DOUBLE"},
	},
	TableEmissionsIndex: {
		{"country", "VARCHAR"},
		{"gas", "VARCHAR"},
		{"year", "INTEGER"},
		{"value_kt", "DOUBLE"},
		{"index_1990", "DOUBLE"},
		{"emissions_per_gdp", "DOUBLE"},
	},
	TablePercentChange: {
		{"country", "VARCHAR"},
		{"gas", "VARCHAR"},
		{"value_baseline", "DOUBLE"},
		{"value_latest", "DOUBLE"},
		{"percent_change", "DOUBLE"},
		{"baseline_year", "INTEGER"},
		{"latest_year", "INTEGER"},
	},
	TableIndexSlopes: {
		{"country", "VARCHAR"},
		{"gas", "VARCHAR"},
		{"annual_slope", "DOUBLE"},
	},
	TableTopAgItems: {
		{"country", "VARCHAR"},
		{"year_bin", "INTEGER"},
		{"item", "VARCHAR"},
		{"mean_index", "DOUBLE"},
	},
	TableSectorShares: {
		{"country", "VARCHAR"},
		{"sector", "VARCHAR"},
		{"share", "DOUBLE"},
		{"gas_scope", "VARCHAR"},
	},
}

// createDDL builds the CREATE TABLE statement for a declared table.
func createDDL(table string, cols []Column) string {
	ddl := "CREATE TABLE " + table + " ("
	for i, col := range cols {
		if i > 0 {
			ddl += ", "
		}
		ddl += col.Name + " " + col.Type
	}
	return ddl + ")"
}

// insertSQL builds the parameterized INSERT statement for a declared table.
func insertSQL(table string, cols []Column) string {
	stmt := "INSERT INTO " + table + " VALUES ("
	for i := range cols {
		if i > 0 {
			stmt += ", "
		}
		stmt += "?"
	}
	return stmt + ")"
}

// schemaFor looks up a declared table schema.
func schemaFor(table string) ([]Column, error) {
	cols, ok := Schemas[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}
