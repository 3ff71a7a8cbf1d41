// Package report renders a narrative summary of the mart tables: emissions
// trends, top agricultural commodities, and sector shares.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/greenstack-labs/ghgmart/internal/mart"
)

// gasScopeNote accompanies the sector-share section. Shares are comparable
// within a country; the gas scope column qualifies cross-country reads.
const gasScopeNote = "Note: gas_scope marks whether a country's shares cover " +
	"CO2 only or the full GHG basket. Shares sum to 1.0 within a country; " +
	"across countries, compare only within the same scope."

// section is one reported mart table.
type section struct {
	Title string
	Table string
	Query string
}

var sections = []section{
	{
		Title: "Emissions change, baseline to latest year",
		Table: mart.TablePercentChange,
		Query: `SELECT country, gas, baseline_year, latest_year,
			ROUND(value_baseline, 1) AS value_baseline,
			ROUND(value_latest, 1) AS value_latest,
			ROUND(percent_change, 1) AS percent_change
		FROM ` + mart.TablePercentChange + `
		ORDER BY country, gas`,
	},
	{
		Title: "Emissions index trend (index points per year)",
		Table: mart.TableIndexSlopes,
		Query: `SELECT country, gas, ROUND(annual_slope, 2) AS annual_slope
		FROM ` + mart.TableIndexSlopes + `
		ORDER BY country, gas`,
	},
	{
		Title: "Top agricultural commodity per five-year period",
		Table: mart.TableTopAgItems,
		Query: `SELECT country, year_bin, item, ROUND(mean_index, 1) AS mean_index
		FROM ` + mart.TableTopAgItems + `
		ORDER BY country, year_bin`,
	},
	{
		Title: "Emissions shares by sector",
		Table: mart.TableSectorShares,
		Query: `SELECT country, sector, ROUND(share, 3) AS share, gas_scope
		FROM ` + mart.TableSectorShares + `
		ORDER BY country, sector`,
	},
}

// Reporter reads mart tables and renders the summary.
type Reporter struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a reporter over an open analytical database.
func New(db *sql.DB, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reporter{db: db, logger: logger}
}

// Write renders every section to w. format is "markdown" (or "md") for
// Markdown tables, anything else for bordered text tables. Sections whose
// mart table has not been built yet are noted and skipped.
func (r *Reporter) Write(ctx context.Context, w io.Writer, format string) error {
	existing, err := r.existingTables(ctx)
	if err != nil {
		return err
	}

	markdown := format == "markdown" || format == "md"
	heading := func(title string) {
		if markdown {
			_, _ = fmt.Fprintf(w, "## %s\n\n", title)
		} else {
			_, _ = fmt.Fprintf(w, "%s\n\n", title)
		}
	}

	if markdown {
		_, _ = fmt.Fprintf(w, "# Emissions and agriculture summary\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "Emissions and agriculture summary\n\n")
	}

	for _, s := range sections {
		heading(s.Title)
		if !existing[s.Table] {
			_, _ = fmt.Fprintf(w, "(table %s not built yet; run `ghgmart run` first)\n\n", s.Table)
			continue
		}
		if err := r.renderQuery(ctx, w, s.Query, markdown); err != nil {
			return fmt.Errorf("failed to render %s: %w", s.Table, err)
		}
		if s.Table == mart.TableSectorShares {
			_, _ = fmt.Fprintf(w, "%s\n", gasScopeNote)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func (r *Reporter) existingTables(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'main'")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = true
	}
	return existing, rows.Err()
}

func (r *Reporter) renderQuery(ctx context.Context, w io.Writer, query string, markdown bool) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	count := 0
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		row := make(table.Row, len(cols))
		for i, val := range values {
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			if val == nil {
				val = "NULL"
			}
			row[i] = val
		}
		t.AppendRow(row)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if count == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	if markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	return nil
}
