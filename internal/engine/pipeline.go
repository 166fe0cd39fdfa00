// Package engine orchestrates one assessment: deterministic scoring, premium
// band derivation, optional pattern insight, and the policy tenure estimate.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/insight"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
	"github.com/ewise123/insurance-pricing-engine/internal/pricing"
	"github.com/ewise123/insurance-pricing-engine/internal/scoring"
)

// Pipeline runs assessments. The analyzer is optional; without it the
// assessment carries no pattern insight and the math recommendation stands.
type Pipeline struct {
	store    *cohort.Store
	scorer   *scoring.Engine
	analyzer *insight.Analyzer

	maxConcurrent int
}

// New wires the pipeline. analyzer may be nil.
func New(store *cohort.Store, scorer *scoring.Engine, analyzer *insight.Analyzer, maxConcurrent int) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Pipeline{
		store:         store,
		scorer:        scorer,
		analyzer:      analyzer,
		maxConcurrent: maxConcurrent,
	}
}

// Assess scores and prices a single applicant. An invalid profile is the only
// hard failure; insight and tenure degradation are absorbed.
func (pl *Pipeline) Assess(ctx context.Context, p *model.CustomerProfile) (*model.Assessment, error) {
	start := time.Now()

	res, err := pl.scorer.Score(ctx, p)
	if err != nil {
		return nil, err
	}

	band, err := pricing.Band(p.Age, res.Score, p.CoverageRequested)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: price %s", p.CustomerID)
	}

	a := &model.Assessment{
		CustomerID:    p.CustomerID,
		Scoring:       res,
		Price:         band,
		InsightSource: model.InsightNone,
	}

	if pl.analyzer != nil {
		ins, source, err := pl.analyzer.Analyze(ctx, p, &res)
		if err != nil {
			return nil, eris.Wrapf(err, "engine: analyze %s", p.CustomerID)
		}
		a.Insight = ins
		a.InsightSource = source
		if ins != nil {
			// The insight nudges the recommended premium inside the band;
			// the boundaries themselves are actuarial and never move.
			a.Price = pricing.Reposition(a.Price, ins.SuggestedPricePosition)
		}
	}

	a.PolicyEstimate = pl.policyEstimate(ctx, p, res.Score)
	a.Summary = scoring.Summary(p, &res, a.Price)

	zap.L().Info("engine: assessment complete",
		zap.String("customer_id", p.CustomerID),
		zap.Float64("score", res.Score),
		zap.String("tier", string(res.Tier)),
		zap.Float64("recommended_premium", a.Price.Recommended),
		zap.String("insight_source", string(a.InsightSource)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

// policyEstimate prefers realized tenure from the historical cohort and
// falls back to the risk-score formula when the cohort can't answer.
func (pl *Pipeline) policyEstimate(ctx context.Context, p *model.CustomerProfile, score float64) model.PolicyEstimate {
	if pl.store != nil && pl.store.Loaded() {
		est, err := pl.store.TenureMetrics(ctx, p)
		if err != nil {
			zap.L().Warn("engine: tenure query failed", zap.Error(err))
		} else if est != nil {
			return *est
		}
	}
	return model.PolicyEstimate{
		PredictedDurationYears: clamp(12.0-score*6.0, 3.0, 20.0),
		AttritionLikelihood:    clamp(0.12+score*0.25, 0.05, 0.6),
	}
}

// BatchItem pairs one profile's assessment with its error. Exactly one of
// the two fields is set.
type BatchItem struct {
	Assessment *model.Assessment
	Err        error
}

// AssessBatch runs assessments concurrently, bounded by the configured
// limit. Results are returned in input order; a failed profile occupies its
// slot with an error and never aborts the rest.
func (pl *Pipeline) AssessBatch(ctx context.Context, profiles []model.CustomerProfile) []BatchItem {
	items := make([]BatchItem, len(profiles))

	var succeeded, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.maxConcurrent)

	for i := range profiles {
		i := i
		g.Go(func() error {
			a, err := pl.Assess(ctx, &profiles[i])
			if err != nil {
				failed.Add(1)
				items[i] = BatchItem{Err: err}
				zap.L().Warn("engine: batch item failed",
					zap.String("customer_id", profiles[i].CustomerID),
					zap.Error(err),
				)
				return nil
			}
			succeeded.Add(1)
			items[i] = BatchItem{Assessment: a}
			return nil
		})
	}
	g.Wait()

	zap.L().Info("engine: batch complete",
		zap.Int("total", len(profiles)),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return items
}

// Health reports the readiness of the pipeline's dependencies.
type Health struct {
	Status          string `json:"status"`
	RecordsLoaded   bool   `json:"historical_data_loaded"`
	RecordCount     int    `json:"record_count"`
	AnalysisEnabled bool   `json:"ai_enabled"`
}

// Health returns the current readiness snapshot.
func (pl *Pipeline) Health() Health {
	h := Health{
		Status:          "healthy",
		AnalysisEnabled: pl.analyzer != nil,
	}
	if pl.store != nil {
		h.RecordsLoaded = pl.store.Loaded()
		h.RecordCount = pl.store.Count()
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
