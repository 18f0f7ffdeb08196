package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/ai"
	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/classifier"
	"github.com/hrygo/coursebot/ai/configloader"
	"github.com/hrygo/coursebot/ai/core/llm"
	"github.com/hrygo/coursebot/ai/experts"
	"github.com/hrygo/coursebot/ai/metrics"
	"github.com/hrygo/coursebot/ai/routing"
	"github.com/hrygo/coursebot/ai/session"
	"github.com/hrygo/coursebot/internal/profile"
	"github.com/hrygo/coursebot/store"
	"github.com/hrygo/coursebot/store/db"
)

// app holds the wired collaborators shared by the serve and ask commands.
type app struct {
	store    *store.Store
	router   *routing.Service
	exporter *metrics.PrometheusExporter
}

// openStore connects and migrates the document store, or returns nil when none is configured.
func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	if !p.HasDocumentStore() {
		return nil, nil
	}
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return s, nil
}

func newApp(ctx context.Context, p *profile.Profile) (*app, error) {
	cfg := ai.NewConfigFromProfile(p)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ai config")
	}

	cat, err := catalog.Load(configloader.NewLoader("."), p.RoutesFile)
	if err != nil {
		return nil, err
	}

	embedder, err := ai.NewEmbeddingService(&cfg.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedding service")
	}

	clsCfg := classifier.DefaultConfig()
	clsCfg.Threshold = cfg.Classifier.Threshold
	clsCfg.TopK = cfg.Classifier.TopK
	cls, err := classifier.NewSemanticClassifier(ctx, embedder, cat, clsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build classifier")
	}
	slog.Info("classifier ready", "routes", len(cat.Names()), "utterances", cls.Size())

	docStore, err := openStore(ctx, p)
	if err != nil {
		return nil, err
	}

	dispatcher := experts.NewDispatcher()
	if docStore != nil {
		llmService, err := llm.NewService(&llm.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		})
		if err != nil {
			_ = docStore.Close()
			return nil, errors.Wrap(err, "failed to create llm service")
		}
		llmService.Warmup(ctx)
		rag, err := experts.NewRAGHandler(experts.RAGConfig{
			Embedder:   embedder,
			Store:      docStore,
			Generator:  experts.NewLLMGenerator(llmService),
			Collection: cfg.Retrieval.Collection,
			TopK:       cfg.Retrieval.TopK,
		})
		if err != nil {
			_ = docStore.Close()
			return nil, err
		}
		dispatcher.Register(catalog.RouteMaterialInfo, rag)
	}

	relevance, err := routing.NewRelevancePolicy(p.RelevanceRule)
	if err != nil {
		if docStore != nil {
			_ = docStore.Close()
		}
		return nil, errors.Wrap(err, "invalid relevance rule")
	}

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	sessions := session.NewStore(p.ContextSize)
	router, err := routing.NewService(routing.Config{
		Classifier:  cls,
		Dispatcher:  dispatcher,
		Sessions:    sessions,
		Relevance:   relevance,
		Recorder:    exporter,
		MaxReroutes: routerMaxReroutes(p.MaxReroutes),
	})
	if err != nil {
		if docStore != nil {
			_ = docStore.Close()
		}
		return nil, err
	}
	exporter.RegisterSessionGauge(sessions.Len)
	exporter.RegisterEmbeddingCache(cls.CacheStats)

	return &app{
		store:    docStore,
		router:   router,
		exporter: exporter,
	}, nil
}

// routerMaxReroutes maps the profile setting to routing.Config, where zero selects the
// default. A configured zero disables rerouting.
func routerMaxReroutes(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}
