package mart

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/greenstack-labs/ghgmart/internal/staging"
	"github.com/greenstack-labs/ghgmart/internal/transform"
)

// Writer persists staging and mart rows as full-replace table writes.
type Writer struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWriter creates a writer over an open database connection.
func NewWriter(db *sql.DB, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{db: db, logger: logger}
}

// Replace drops and recreates table, then inserts rows, all in one
// transaction. Row width is validated against the declared schema.
func (w *Writer) Replace(ctx context.Context, table string, rows [][]any) error {
	cols, err := schemaFor(table)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("table %s: row %d has %d values, schema declares %d columns",
				table, i, len(row), len(cols))
		}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createDDL(table, cols)); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, cols))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	w.logger.Info("wrote table", "table", table, "rows", len(rows))
	return nil
}

// --- Staging rows ---

// WriteEmissions replaces stg_emissions.
func (w *Writer) WriteEmissions(ctx context.Context, recs []staging.EmissionsRecord) error {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.Country, string(r.Gas), r.Year, r.ValueKt})
	}
	return w.Replace(ctx, TableStgEmissions, rows)
}

// WriteProductionIndex replaces one of the production index staging tables
// (stg_ag_production or stg_fv_production).
func (w *Writer) WriteProductionIndex(ctx context.Context, table string, recs []staging.ProductionIndexRecord) error {
	if table != TableStgAgProduction && table != TableStgFvProduction {
		return fmt.Errorf("table %q is not a production index table", table)
	}
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.Country, r.Year, r.IndexValue})
	}
	return w.Replace(ctx, table, rows)
}

// WriteCommodityItems replaces stg_ag_items.
func (w *Writer) WriteCommodityItems(ctx context.Context, recs []staging.CommodityIndexRecord) error {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.Country, r.ItemCodeCPC, r.Item, r.Year, r.IndexValue})
	}
	return w.Replace(ctx, TableStgAgItems, rows)
}

// WriteSectorShares replaces stg_sector_shares.
func (w *Writer) WriteSectorShares(ctx context.Context, recs []staging.SectorShareRecord) error {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.Country, r.Sector, r.Value, string(r.Unit), string(r.GasScope)})
	}
	return w.Replace(ctx, TableStgSectorShares, rows)
}

// WriteGdp replaces stg_gdp.
func (w *Writer) WriteGdp(ctx context.Context, recs []staging.GdpRecord) error {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.ISO3, r.Country, r.Year, r.GdpUSD2015})
	}
	return w.Replace(ctx, TableStgGdp, rows)
}

// --- Mart rows ---

// WriteEmissionsIndex replaces mart_emissions_index. A nil intensity maps
// to SQL NULL.
func (w *Writer) WriteEmissionsIndex(ctx context.Context, results []transform.EmissionsIndexResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		var intensity any
		if r.EmissionsPerGdp != nil {
			intensity = *r.EmissionsPerGdp
		}
		rows = append(rows, []any{r.Country, string(r.Gas), r.Year, r.ValueKt, r.Index1990, intensity})
	}
	return w.Replace(ctx, TableEmissionsIndex, rows)
}

// WritePercentChange replaces mart_percent_change.
func (w *Writer) WritePercentChange(ctx context.Context, results []transform.PercentChangeResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{r.Country, string(r.Gas), r.ValueBaseline, r.ValueLatest, r.PercentChange, r.BaselineYear, r.LatestYear})
	}
	return w.Replace(ctx, TablePercentChange, rows)
}

// WriteIndexSlopes replaces mart_index_slopes.
func (w *Writer) WriteIndexSlopes(ctx context.Context, results []transform.SlopeResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{r.Country, string(r.Gas), r.AnnualSlope})
	}
	return w.Replace(ctx, TableIndexSlopes, rows)
}

// WriteTopCommodities replaces mart_top_ag_items.
func (w *Writer) WriteTopCommodities(ctx context.Context, results []transform.TopCommodityResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{r.Country, r.YearBin, r.Item, r.MeanIndex})
	}
	return w.Replace(ctx, TableTopAgItems, rows)
}

// WriteSectorShareResults replaces mart_sector_shares.
func (w *Writer) WriteSectorShareResults(ctx context.Context, results []transform.SectorShareResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{r.Country, r.Sector, r.Share, string(r.GasScope)})
	}
	return w.Replace(ctx, TableSectorShares, rows)
}
