package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/agent"
	"github.com/sells-group/esg-advisor/internal/blob"
	"github.com/sells-group/esg-advisor/internal/chat"
	"github.com/sells-group/esg-advisor/internal/report"
	"github.com/sells-group/esg-advisor/internal/schema"
	"github.com/sells-group/esg-advisor/internal/sqlgate"
	"github.com/sells-group/esg-advisor/internal/store"
	"github.com/sells-group/esg-advisor/internal/tools"
	"github.com/sells-group/esg-advisor/pkg/llm"
)

// appEnv holds the wired application: store, blob storage, model client,
// run machinery, tool registry, chat orchestrator, and report generator.
// Callers should defer env.Close().
type appEnv struct {
	Store        store.Store
	Blobs        *blob.LocalStore
	Runner       *agent.Runner
	Registry     *tools.Registry
	Orchestrator *chat.Orchestrator
	Reports      *report.Generator
}

func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, runs migrations, and wires every component.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	blobs, err := blob.NewLocal(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	catalog, err := schema.Load()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := llm.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RPS)
	pipeline := agent.NewPipeline(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
	runner := agent.NewRunner(st, pipeline, time.Duration(cfg.Agent.TimeoutSecs)*time.Second)
	registry := tools.New(st, blobs, runner, sqlgate.NewExecutor(st), catalog)

	zap.L().Info("environment initialized",
		zap.String("driver", cfg.Store.Driver),
		zap.String("model", cfg.Anthropic.Model),
	)

	return &appEnv{
		Store:        st,
		Blobs:        blobs,
		Runner:       runner,
		Registry:     registry,
		Orchestrator: chat.NewOrchestrator(client, registry, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens), cfg.Agent.MaxToolTurns),
		Reports:      report.NewGenerator(st),
	}, nil
}
