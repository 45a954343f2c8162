// Package app assembles the pipeline components selected by configuration.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/db"
	"feedsight/internal/domain"
	"feedsight/internal/embedding"
	"feedsight/internal/emotion"
	"feedsight/internal/feedback"
	"feedsight/internal/ingest"
	"feedsight/internal/logger"
	"feedsight/internal/retrieval"
	"feedsight/internal/service"
	"feedsight/internal/summarizer"
	"feedsight/internal/synthesis"
	"feedsight/internal/topics"
)

// App holds the long-lived components shared by every request.
type App struct {
	Config  *config.AppConfig
	Log     logger.Logger
	DB      *sqlx.DB
	Index   *retrieval.Index
	Service *service.AnalysisService
}

// Build wires every component once at startup. Close releases what it opened.
func Build(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	conn, err := db.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "opening database failed")
	}
	a := &App{Config: cfg, Log: log, DB: conn}

	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		_ = a.Close()
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "embedder init failed")
	}
	store, err := retrieval.NewStorage(cfg.VectorStore, conn)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Index = retrieval.NewIndex(emb, store, cfg.VectorStore.IDStrategy, log)
	if err := a.Index.Open(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	scorer, err := emotion.New(cfg.Scorer)
	if err != nil {
		_ = a.Close()
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "scorer init failed")
	}
	sum, err := summarizer.New(cfg.Summarizer.Type)
	if err != nil {
		_ = a.Close()
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "summarizer init failed")
	}

	// remote embeddings are batch independent and worth reusing for topics;
	// local ones are refit per batch by the extractor
	var factory topics.EmbedderFactory
	if cfg.Embedder.Type == "openai" {
		factory = func() domain.Embedder { return emb }
	}

	a.Service = service.NewAnalysisService(service.Deps{
		Validator:   ingest.NewValidator(ingest.PolicyFrom(cfg.Ingest)),
		Scorer:      scorer,
		Extractor:   topics.NewExtractor(factory, cfg.Topics, log),
		Synthesizer: synthesis.NewSynthesizer(sum, synthesis.ThresholdsFrom(cfg.Thresholds), cfg.Summarizer, log),
		Index:       a.Index,
		Repo:        feedback.NewRepository(conn),
		Timeout:     time.Duration(cfg.Server.AnalysisTimeoutSec) * time.Second,
		Log:         log,
	})
	log.Info("app", "components ready", map[string]interface{}{
		"embedder":     emb.Name(),
		"vector_store": cfg.VectorStore.Type,
		"scorer":       cfg.Scorer.Type,
		"summarizer":   cfg.Summarizer.Type,
	})
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Index != nil {
		errs = append(errs, a.Index.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
