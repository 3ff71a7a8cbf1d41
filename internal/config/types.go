// Package config loads pipeline configuration: database paths, source file
// locations, the World Bank indicator, and the per-country registry that
// drives the sector-share transform. Adding a country to the pipeline is a
// configuration change only — one more Country entry, no code.
package config

import (
	"fmt"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// Config is the full pipeline configuration.
type Config struct {
	// Database is the DuckDB path ("" or ":memory:" for in-memory).
	Database string `koanf:"database"`
	// StatePath is the SQLite run-history database path.
	StatePath string `koanf:"state"`
	// CachePath is the SQLite reference-data cache path.
	CachePath string `koanf:"cache"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"` // table, markdown, csv, json

	Countries []Country `koanf:"countries"`

	Emissions   EmissionsSource   `koanf:"emissions"`
	Agriculture AgricultureSource `koanf:"agriculture"`
	WorldBank   WorldBank         `koanf:"worldbank"`
}

// EmissionsSource locates the FAOSTAT emissions CSV.
type EmissionsSource struct {
	Path string `koanf:"path"`
}

// AgricultureSource locates the FAOSTAT production index CSVs.
type AgricultureSource struct {
	// GrossPaths are regional gross-production files sharing one schema.
	GrossPaths []string `koanf:"gross_paths"`
	// FruitVegPath is the fruit & vegetable production index file.
	FruitVegPath string `koanf:"fruit_veg_path"`
	// ItemsPath is the commodity-level (all items) production index file.
	ItemsPath string `koanf:"items_path"`
}

// WorldBank configures the GDP fetch.
type WorldBank struct {
	Indicator string `koanf:"indicator"`
	DateRange string `koanf:"date_range"`
	// BaseURL overrides the API endpoint (empty for the production API).
	BaseURL string `koanf:"base_url"`
	// Refresh bypasses the reference cache and refetches.
	Refresh bool `koanf:"refresh"`
}

// Country is one analysis country: its World Bank identity plus its sector
// dataset declaration.
type Country struct {
	Name    string       `koanf:"name"`
	ISO3    string       `koanf:"iso3"`
	Sectors SectorSource `koanf:"sectors"`
}

// SectorSource declares where a country's sector data comes from and how
// its raw sector names map onto the canonical taxonomy. Exactly one of
// Values (inline) or Path (CSV file with sector,value columns) is set.
type SectorSource struct {
	GasScope string             `koanf:"gas_scope"` // CO2_only | full_GHG
	Unit     string             `koanf:"unit"`      // proportion | absolute
	Values   map[string]float64 `koanf:"values"`
	Path     string             `koanf:"path"`
	Mapping  map[string]string  `koanf:"mapping"`
	Exclude  []string           `koanf:"exclude"`
}

// CountryNames returns the configured country names in declaration order.
func (c *Config) CountryNames() []string {
	names := make([]string, 0, len(c.Countries))
	for _, country := range c.Countries {
		names = append(names, country.Name)
	}
	return names
}

// CountryByISO3 maps ISO3 codes to configured country names.
func (c *Config) CountryByISO3() map[string]string {
	m := make(map[string]string, len(c.Countries))
	for _, country := range c.Countries {
		m[country.ISO3] = country.Name
	}
	return m
}

// Validate checks structural soundness of the configuration.
func (c *Config) Validate() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("no countries configured")
	}
	seen := make(map[string]bool)
	for _, country := range c.Countries {
		if country.Name == "" {
			return fmt.Errorf("country with empty name")
		}
		if seen[country.Name] {
			return fmt.Errorf("duplicate country %q", country.Name)
		}
		seen[country.Name] = true
		if len(country.ISO3) != 3 {
			return fmt.Errorf("country %s: bad ISO3 code %q", country.Name, country.ISO3)
		}
		if err := country.Sectors.validate(country.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s SectorSource) validate(country string) error {
	switch staging.GasScope(s.GasScope) {
	case staging.GasScopeCO2Only, staging.GasScopeFullGHG:
	default:
		return fmt.Errorf("country %s: unknown gas scope %q", country, s.GasScope)
	}
	switch staging.Unit(s.Unit) {
	case staging.UnitProportion, staging.UnitAbsolute:
	default:
		return fmt.Errorf("country %s: unknown sector unit %q", country, s.Unit)
	}
	if len(s.Values) == 0 && s.Path == "" {
		return fmt.Errorf("country %s: sector source needs inline values or a path", country)
	}
	if len(s.Values) > 0 && s.Path != "" {
		return fmt.Errorf("country %s: sector source has both inline values and a path", country)
	}
	if len(s.Mapping) == 0 {
		return fmt.Errorf("country %s: sector mapping is empty", country)
	}
	return nil
}
