package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/engine"
	"github.com/ewise123/insurance-pricing-engine/internal/insight"
	"github.com/ewise123/insurance-pricing-engine/internal/scoring"
	"github.com/ewise123/insurance-pricing-engine/pkg/anthropic"
)

// pipelineEnv bundles the wired assessment pipeline and its closeable parts.
type pipelineEnv struct {
	Store    *cohort.Store
	Cache    *insight.FileCache
	Pipeline *engine.Pipeline
}

func (e *pipelineEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close cohort store", zap.Error(err))
		}
	}
}

// initPipeline loads the historical book and wires the scorer, pricing, and
// optional analyzer. A missing historical file is not fatal; the engine
// degrades to formula-only estimates.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	store, err := cohort.Open()
	if err != nil {
		return nil, eris.Wrap(err, "init: open cohort store")
	}

	env := &pipelineEnv{Store: store}

	f, err := os.Open(cfg.Data.HistoricalPath)
	if err != nil {
		if !os.IsNotExist(err) {
			env.Close()
			return nil, eris.Wrapf(err, "init: open %s", cfg.Data.HistoricalPath)
		}
		zap.L().Warn("init: historical data not found, cohort lookups disabled",
			zap.String("path", cfg.Data.HistoricalPath),
		)
	} else {
		n, err := store.Load(ctx, f)
		f.Close()
		if err != nil {
			env.Close()
			return nil, eris.Wrapf(err, "init: load %s", cfg.Data.HistoricalPath)
		}
		zap.L().Info("init: historical data loaded",
			zap.String("path", cfg.Data.HistoricalPath),
			zap.Int("records", n),
		)
	}

	// Interfaces must stay nil when the book is empty so consumers skip
	// cohort lookups instead of querying an empty database.
	var cohortSrc *cohort.Store
	if store.Loaded() {
		cohortSrc = store
	}

	scorer, err := newScorer(cohortSrc)
	if err != nil {
		env.Close()
		return nil, err
	}

	var analyzer *insight.Analyzer
	if cfg.Analysis.Enabled {
		cache, err := insight.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL())
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "init: insight cache")
		}
		env.Cache = cache

		fp := insight.FingerprintConfig{
			AgeBucketYears: cfg.Cache.AgeBucketYears,
			BMIBucketUnits: cfg.Cache.BMIBucketUnits,
		}

		var insightStore insight.Store
		if cohortSrc != nil {
			insightStore = cohortSrc
		}

		analyzer = insight.New(anthropic.NewClient(cfg.Analysis.Key), insightStore, cache, fp, insight.Options{
			Model:             cfg.Analysis.Model,
			MaxTokens:         cfg.Analysis.MaxTokens,
			Temperature:       cfg.Analysis.Temperature,
			Timeout:           cfg.Analysis.Timeout(),
			RequestsPerMinute: cfg.Analysis.RequestsPerMin,
		})
	}

	env.Pipeline = engine.New(cohortSrc, scorer, analyzer, cfg.Batch.MaxConcurrent)
	return env, nil
}

func newScorer(src *cohort.Store) (*scoring.Engine, error) {
	if src == nil {
		eng, err := scoring.New(nil)
		if err != nil {
			return nil, eris.Wrap(err, "init: scorer")
		}
		return eng, nil
	}
	eng, err := scoring.New(src)
	if err != nil {
		return nil, eris.Wrap(err, "init: scorer")
	}
	return eng, nil
}
