package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenstack-labs/ghgmart/internal/config"
	"github.com/greenstack-labs/ghgmart/internal/duck"
	"github.com/greenstack-labs/ghgmart/internal/fetch"
	"github.com/greenstack-labs/ghgmart/internal/pipeline"
	"github.com/greenstack-labs/ghgmart/internal/state"
)

// createPipeline wires the analytical database, the run-history store, and
// the World Bank client into a pipeline. The returned closer releases all
// three.
func createPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	db, err := duck.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to open state database: %w", err)
	}

	cacheStore, err := fetch.OpenSQLiteStore(cfg.CachePath)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	policy := fetch.PolicyReuse
	if cfg.WorldBank.Refresh {
		policy = fetch.PolicyRefresh
	}
	wb := fetch.NewWorldBankClient(cfg.WorldBank.BaseURL, fetch.NewCache(cacheStore, policy, logger), logger)

	closer := func() {
		_ = cacheStore.Close()
		_ = store.Close()
		_ = db.Close()
	}
	return pipeline.New(cfg, db, store, wb, logger), closer, nil
}

// openDatabase opens just the analytical database for read-side commands.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*duck.DB, error) {
	db, err := duck.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
