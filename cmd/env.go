package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobpilot/internal/provider"
	"github.com/sells-group/jobpilot/internal/store"
)

// pipelineEnv holds the store and provider shared by the pipeline commands.
type pipelineEnv struct {
	Store    store.Store
	Provider *provider.LLM
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initEnv opens the configured store, runs migrations, and builds the
// provider. Callers should defer env.Close().
func initEnv(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	llm, err := provider.New(ctx, cfg.Provider)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{Store: st, Provider: llm}, nil
}

// initStore opens the configured database backend without migrating.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
