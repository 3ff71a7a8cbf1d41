package config

// Default file locations. All are overridable via ghgmart.yaml, env vars,
// or flags.
const (
	DefaultDatabase  = "ghgmart.duckdb"
	DefaultStatePath = "ghgmart_state.db"
	DefaultCachePath = "ghgmart_cache.db"

	// DefaultGdpIndicator is GDP in constant 2015 USD.
	DefaultGdpIndicator = "NY.GDP.MKTP.KD"
	DefaultGdpDateRange = "1990:2024"
)

// defaults is the lowest-precedence configuration layer: the four-country
// European analysis the pipeline ships with. Spain and France supply
// full-GHG proportions inline; Germany and Italy supply CO2-only absolute
// quantities from normalized CSV extracts.
func defaults() map[string]any {
	return map[string]any{
		"database": DefaultDatabase,
		"state":    DefaultStatePath,
		"cache":    DefaultCachePath,
		"output":   "table",
		"emissions": map[string]any{
			"path": "data/emissions.csv",
		},
		"agriculture": map[string]any{
			"gross_paths":    []string{"data/faostat_western_europe.csv", "data/faostat_southern_europe.csv"},
			"fruit_veg_path": "data/faostat_fruit_veg.csv",
			"items_path":     "data/faostat_all_items.csv",
		},
		"worldbank": map[string]any{
			"indicator":  DefaultGdpIndicator,
			"date_range": DefaultGdpDateRange,
		},
		"countries": []map[string]any{
			{
				"name": "Italy",
				"iso3": "ITA",
				"sectors": map[string]any{
					"gas_scope": "CO2_only",
					"unit":      "absolute",
					"path":      "data/sectors_italy.csv",
					"mapping": map[string]string{
						"Buildings":                      "Residential and Commercial",
						"Industry":                       "Industry",
						"Land-use change and forestry":   "LULUCF",
						"Other fuel combustion":          "Other Fuel Combustion",
						"Transport":                      "Transport",
						"Manufacturing and construction": "Manufacturing",
						"Fugitive emissions":             "Fugitive Emissions",
						"Electricity and heat":           "Energy",
						"Aviation and shipping":          "Aviation and Shipping",
					},
				},
			},
			{
				"name": "Spain",
				"iso3": "ESP",
				"sectors": map[string]any{
					"gas_scope": "full_GHG",
					"unit":      "proportion",
					"values": map[string]float64{
						"Transport":                  0.325,
						"Industry":                   0.186,
						"Agriculture":                0.122,
						"Energy":                     0.114,
						"Residential and Commercial": 0.085,
						"Waste":                      0.051,
					},
					"mapping": map[string]string{
						"Transport":                  "Transport",
						"Industry":                   "Industry",
						"Agriculture":                "Agriculture",
						"Energy":                     "Energy",
						"Residential and Commercial": "Residential and Commercial",
						"Waste":                      "Waste",
					},
				},
			},
			{
				"name": "France",
				"iso3": "FRA",
				"sectors": map[string]any{
					"gas_scope": "full_GHG",
					"unit":      "proportion",
					"values": map[string]float64{
						"Transport":                  0.34,
						"Industry":                   0.17,
						"Residential and Commercial": 0.15,
						"Agriculture":                0.21,
						"Energy":                     0.09,
						"Waste":                      0.04,
					},
					"mapping": map[string]string{
						"Transport":                  "Transport",
						"Industry":                   "Industry",
						"Residential and Commercial": "Residential and Commercial",
						"Agriculture":                "Agriculture",
						"Energy":                     "Energy",
						"Waste":                      "Waste",
					},
				},
			},
			{
				"name": "Germany",
				"iso3": "DEU",
				"sectors": map[string]any{
					"gas_scope": "CO2_only",
					"unit":      "absolute",
					"path":      "data/sectors_germany.csv",
					"mapping": map[string]string{
						"1_ENERGY":      "Energy",
						"2_INDUSTRY":    "Industry",
						"3_AGRICULTURE": "Agriculture",
						"4_LULUCF":      "LULUCF",
						"5_WASTE":       "Waste",
					},
				},
			},
		},
	}
}
