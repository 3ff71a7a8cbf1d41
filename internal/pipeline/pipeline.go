// Package pipeline orchestrates the staging-to-mart run: load source CSVs,
// fetch reference data, apply transforms, and persist every table through
// the full-replace writer, recording run history along the way.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greenstack-labs/ghgmart/internal/config"
	"github.com/greenstack-labs/ghgmart/internal/duck"
	"github.com/greenstack-labs/ghgmart/internal/fetch"
	"github.com/greenstack-labs/ghgmart/internal/mart"
	"github.com/greenstack-labs/ghgmart/internal/staging"
	"github.com/greenstack-labs/ghgmart/internal/state"
	"github.com/greenstack-labs/ghgmart/internal/transform"
)

// Step names, in execution order.
const (
	StepAgriculture = "ag"
	StepEmissions   = "emissions"
	StepSectors     = "sectors"
)

// AllSteps lists every step in canonical order.
var AllSteps = []string{StepAgriculture, StepEmissions, StepSectors}

// StepOutcome is the result of one executed step. Err is fatal for the
// step; GroupErrors are per-group transform failures the step survived.
type StepOutcome struct {
	Step        string
	Err         error
	GroupErrors []error
	Duration    time.Duration
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID string
	Steps []StepOutcome
}

// Failed reports whether any step failed fatally.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Err summarizes failed steps, or returns nil when all succeeded.
func (r *Result) Err() error {
	var failed []string
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", s.Step, s.Err))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("steps failed: %s", strings.Join(failed, "; "))
}

// Pipeline wires the loaders, the transforms, and the writers together.
type Pipeline struct {
	cfg       *config.Config
	db        *duck.DB
	writer    *mart.Writer
	state     *state.Store
	worldBank *fetch.WorldBankClient
	logger    *slog.Logger
}

// New creates a pipeline over an open analytical database, a run-history
// store, and a World Bank client.
func New(cfg *config.Config, db *duck.DB, store *state.Store, wb *fetch.WorldBankClient, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		writer:    mart.NewWriter(db.SQL(), logger),
		state:     store,
		worldBank: wb,
		logger:    logger,
	}
}

// Run executes the selected steps (all of them when only is empty). One
// step failing does not stop the others; the aggregate error is recorded
// against the run and surfaced through the Result.
func (p *Pipeline) Run(ctx context.Context, only []string, parallel bool) (*Result, error) {
	steps, err := selectSteps(only)
	if err != nil {
		return nil, err
	}

	run, err := p.state.CreateRun()
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	p.logger.Info("pipeline run started", "run_id", run.ID, "steps", steps, "parallel", parallel)

	result := &Result{RunID: run.ID, Steps: make([]StepOutcome, len(steps))}
	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, step := range steps {
			g.Go(func() error {
				result.Steps[i] = p.runStep(gctx, run.ID, step)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, step := range steps {
			result.Steps[i] = p.runStep(ctx, run.ID, step)
		}
	}

	if err := p.state.CompleteRun(run.ID, result.Err()); err != nil {
		return result, fmt.Errorf("failed to record run completion: %w", err)
	}
	p.logger.Info("pipeline run finished", "run_id", run.ID, "failed", result.Failed())
	return result, nil
}

// Ingest loads and validates every source into its staging table without
// building any mart. Useful for inspecting inputs before a full run.
func (p *Pipeline) Ingest(ctx context.Context) error {
	countries := p.cfg.CountryNames()

	emissions, err := staging.LoadEmissionsCSV(p.cfg.Emissions.Path, countries, p.logger)
	if err != nil {
		return err
	}
	emissions, report := staging.ValidateEmissions(emissions)
	p.logViolations("emissions", report)
	if err := p.writer.WriteEmissions(ctx, emissions); err != nil {
		return err
	}

	gross, err := staging.LoadProductionCSV(p.cfg.Agriculture.GrossPaths, countries, p.logger)
	if err != nil {
		return err
	}
	gross, report = staging.ValidateProductionIndex(gross)
	p.logViolations("gross production", report)
	if err := p.writer.WriteProductionIndex(ctx, mart.TableStgAgProduction, gross); err != nil {
		return err
	}

	fruitVeg, err := staging.LoadProductionCSV([]string{p.cfg.Agriculture.FruitVegPath}, countries, p.logger)
	if err != nil {
		return err
	}
	fruitVeg, report = staging.ValidateProductionIndex(fruitVeg)
	p.logViolations("fruit and vegetable production", report)
	if err := p.writer.WriteProductionIndex(ctx, mart.TableStgFvProduction, fruitVeg); err != nil {
		return err
	}

	items, err := staging.LoadCommodityCSV(p.cfg.Agriculture.ItemsPath, countries, p.logger)
	if err != nil {
		return err
	}
	items, report = staging.ValidateCommodityItems(items)
	p.logViolations("commodity items", report)
	if err := p.writer.WriteCommodityItems(ctx, items); err != nil {
		return err
	}

	var sectors []staging.SectorShareRecord
	for _, country := range p.cfg.Countries {
		recs, err := sectorRecords(country)
		if err != nil {
			return err
		}
		sectors = append(sectors, recs...)
	}
	sectors, report = staging.ValidateSectorShares(sectors)
	p.logViolations("sector shares", report)
	if err := p.writer.WriteSectorShares(ctx, sectors); err != nil {
		return err
	}

	gdp, err := p.fetchGdp(ctx)
	if err != nil {
		return err
	}
	return p.writer.WriteGdp(ctx, gdp)
}

func selectSteps(only []string) ([]string, error) {
	if len(only) == 0 {
		return AllSteps, nil
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		known := false
		for _, step := range AllSteps {
			if step == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown step %q (valid: %s)", name, strings.Join(AllSteps, ", "))
		}
		wanted[name] = true
	}
	var steps []string
	for _, step := range AllSteps {
		if wanted[step] {
			steps = append(steps, step)
		}
	}
	return steps, nil
}

func (p *Pipeline) runStep(ctx context.Context, runID, step string) StepOutcome {
	started := time.Now()
	var groupErrs []error
	var err error
	switch step {
	case StepAgriculture:
		err = p.runAgriculture(ctx)
	case StepEmissions:
		groupErrs, err = p.runEmissions(ctx)
	case StepSectors:
		groupErrs, err = p.runSectors(ctx)
	default:
		err = fmt.Errorf("unknown step %q", step)
	}
	elapsed := time.Since(started)

	status := state.RunStatusCompleted
	errMsg := ""
	if err != nil {
		status = state.RunStatusFailed
		errMsg = err.Error()
		p.logger.Error("step failed", "step", step, "error", err)
	} else {
		p.logger.Info("step completed", "step", step, "duration", elapsed)
	}
	for _, gerr := range groupErrs {
		p.logger.Warn("group skipped", "step", step, "error", gerr)
	}

	if recErr := p.state.RecordStep(state.StepResult{
		RunID:      runID,
		Step:       step,
		Status:     status,
		StartedAt:  started,
		DurationMs: elapsed.Milliseconds(),
		Error:      errMsg,
	}); recErr != nil {
		p.logger.Error("failed to record step", "step", step, "error", recErr)
	}

	return StepOutcome{Step: step, Err: err, GroupErrors: groupErrs, Duration: elapsed}
}

// runAgriculture stages the production index series and derives the
// top-commodity bins.
func (p *Pipeline) runAgriculture(ctx context.Context) error {
	countries := p.cfg.CountryNames()

	gross, err := staging.LoadProductionCSV(p.cfg.Agriculture.GrossPaths, countries, p.logger)
	if err != nil {
		return err
	}
	gross, report := staging.ValidateProductionIndex(gross)
	p.logViolations("gross production", report)
	if err := p.writer.WriteProductionIndex(ctx, mart.TableStgAgProduction, gross); err != nil {
		return err
	}

	fruitVeg, err := staging.LoadProductionCSV([]string{p.cfg.Agriculture.FruitVegPath}, countries, p.logger)
	if err != nil {
		return err
	}
	fruitVeg, report = staging.ValidateProductionIndex(fruitVeg)
	p.logViolations("fruit and vegetable production", report)
	if err := p.writer.WriteProductionIndex(ctx, mart.TableStgFvProduction, fruitVeg); err != nil {
		return err
	}

	items, err := staging.LoadCommodityCSV(p.cfg.Agriculture.ItemsPath, countries, p.logger)
	if err != nil {
		return err
	}
	items, report = staging.ValidateCommodityItems(items)
	p.logViolations("commodity items", report)
	if err := p.writer.WriteCommodityItems(ctx, items); err != nil {
		return err
	}

	return p.writer.WriteTopCommodities(ctx, transform.TopCommodities(items))
}

// runEmissions stages emissions and GDP, then derives the index, percent
// change, and slope marts. Per-group transform failures are survivable.
func (p *Pipeline) runEmissions(ctx context.Context) ([]error, error) {
	countries := p.cfg.CountryNames()

	emissions, err := staging.LoadEmissionsCSV(p.cfg.Emissions.Path, countries, p.logger)
	if err != nil {
		return nil, err
	}
	emissions, report := staging.ValidateEmissions(emissions)
	p.logViolations("emissions", report)
	if err := p.writer.WriteEmissions(ctx, emissions); err != nil {
		return nil, err
	}

	gdp, err := p.fetchGdp(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.writer.WriteGdp(ctx, gdp); err != nil {
		return nil, err
	}

	out := transform.BuildEmissionsIndex(emissions, gdp)
	if err := p.writer.WriteEmissionsIndex(ctx, out.Index); err != nil {
		return out.Errors, err
	}
	if err := p.writer.WritePercentChange(ctx, out.Changes); err != nil {
		return out.Errors, err
	}
	if err := p.writer.WriteIndexSlopes(ctx, out.Slopes); err != nil {
		return out.Errors, err
	}
	return out.Errors, nil
}

// fetchGdp retrieves the configured GDP series and narrows it to the
// configured countries, rekeying World Bank names onto the country names
// the emissions source uses so the intensity join matches.
func (p *Pipeline) fetchGdp(ctx context.Context) ([]staging.GdpRecord, error) {
	all, err := p.worldBank.FetchGDP(ctx, p.cfg.WorldBank.Indicator, p.cfg.WorldBank.DateRange)
	if err != nil {
		return nil, err
	}
	byISO3 := p.cfg.CountryByISO3()
	var gdp []staging.GdpRecord
	for _, rec := range all {
		name, ok := byISO3[rec.ISO3]
		if !ok {
			continue
		}
		rec.Country = name
		gdp = append(gdp, rec)
	}
	gdp, report := staging.ValidateGdp(gdp)
	p.logViolations("gdp", report)
	return gdp, nil
}

// runSectors assembles each country's sector records from its configured
// source and derives comparable shares. A country with an unmapped sector
// fails alone.
func (p *Pipeline) runSectors(ctx context.Context) ([]error, error) {
	var records []staging.SectorShareRecord
	for _, country := range p.cfg.Countries {
		recs, err := sectorRecords(country)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	records, report := staging.ValidateSectorShares(records)
	p.logViolations("sector shares", report)
	if err := p.writer.WriteSectorShares(ctx, records); err != nil {
		return nil, err
	}

	results, groupErrs := transform.NormalizeSectorShares(records, sectorMappings(p.cfg))
	if err := p.writer.WriteSectorShareResults(ctx, results); err != nil {
		return groupErrs, err
	}
	return groupErrs, nil
}

// sectorRecords materializes one country's sector rows from either its
// inline values or its normalized CSV extract.
func sectorRecords(country config.Country) ([]staging.SectorShareRecord, error) {
	src := country.Sectors
	unit := staging.Unit(src.Unit)
	scope := staging.GasScope(src.GasScope)

	if src.Path != "" {
		return staging.LoadSectorCSV(src.Path, country.Name, unit, scope)
	}

	sectors := make([]string, 0, len(src.Values))
	for sector := range src.Values {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	recs := make([]staging.SectorShareRecord, 0, len(sectors))
	for _, sector := range sectors {
		recs = append(recs, staging.SectorShareRecord{
			Country:  country.Name,
			Sector:   sector,
			Value:    src.Values[sector],
			Unit:     unit,
			GasScope: scope,
		})
	}
	return recs, nil
}

// sectorMappings converts the per-country configuration into transform
// mappings.
func sectorMappings(cfg *config.Config) map[string]transform.SectorMapping {
	m := make(map[string]transform.SectorMapping, len(cfg.Countries))
	for _, country := range cfg.Countries {
		m[country.Name] = transform.SectorMapping{
			Canonical: country.Sectors.Mapping,
			Exclude:   country.Sectors.Exclude,
		}
	}
	return m
}

func (p *Pipeline) logViolations(source string, report staging.Report) {
	for _, v := range report.Violations {
		p.logger.Warn("dropped invalid row", "source", source, "violation", v.String())
	}
}
