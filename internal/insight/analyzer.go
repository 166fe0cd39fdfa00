package insight

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
	"github.com/ewise123/insurance-pricing-engine/internal/resilience"
	"github.com/ewise123/insurance-pricing-engine/pkg/anthropic"
)

// Store is the cohort query surface the analyzer needs.
type Store interface {
	SimilarCohort(ctx context.Context, p *model.CustomerProfile) (*cohort.CohortStats, error)
	SubPatterns(ctx context.Context, p *model.CustomerProfile) ([]cohort.SubPattern, error)
	Baseline() cohort.BaselineStats
	Count() int
}

// Options tune the external call. Zero values fall back to sane defaults.
type Options struct {
	Model             string
	MaxTokens         int64
	Temperature       float64
	Timeout           time.Duration
	RequestsPerMinute int
}

// Analyzer asks the model for a multi-attribute pattern read over the
// applicant's cohort. Every path returns an insight: model, cache, or the
// deterministic fallback. Analysis never fails an assessment.
type Analyzer struct {
	client  anthropic.Client
	store   Store
	cache   *FileCache
	fp      FingerprintConfig
	opts    Options
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// New builds an analyzer. A nil client disables the external call; the
// analyzer then always answers from cache or fallback.
func New(client anthropic.Client, store Store, cache *FileCache, fp FingerprintConfig, opts Options) *Analyzer {
	if opts.Model == "" {
		opts.Model = "claude-sonnet-4-5-20250929"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), opts.RequestsPerMinute)
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "pattern_analysis")

	return &Analyzer{
		client:  client,
		store:   store,
		cache:   cache,
		fp:      fp,
		opts:    opts,
		limiter: limiter,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		retry:   retry,
	}
}

// Analyze returns the pattern insight for a scored profile and where it came
// from. The error return exists only for context cancellation; degraded
// analysis is reported through the source, not an error.
func (a *Analyzer) Analyze(ctx context.Context, p *model.CustomerProfile, res *model.ScoringResult) (*model.PatternInsight, model.InsightSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.InsightNone, err
	}

	key := a.fp.Fingerprint(p, res.Score)
	if a.cache != nil {
		if cached := a.cache.Get(key); cached != nil {
			zap.L().Debug("insight: cache hit",
				zap.String("customer_id", p.CustomerID),
				zap.String("key", key),
			)
			return cached, model.InsightCached, nil
		}
	}

	actx := a.gatherContext(ctx, p, res)

	if a.client == nil {
		return a.fallback(actx), model.InsightFallback, nil
	}

	insight, err := a.callModel(ctx, actx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, model.InsightNone, ctx.Err()
		}
		zap.L().Warn("insight: pattern analysis degraded to fallback",
			zap.String("customer_id", p.CustomerID),
			zap.Error(err),
		)
		return a.fallback(actx), model.InsightFallback, nil
	}

	// Only genuine model output is worth an hour of reuse; fallbacks are
	// cheap to recompute.
	if a.cache != nil {
		a.cache.Set(key, insight)
	}
	return insight, model.InsightModel, nil
}

func (a *Analyzer) gatherContext(ctx context.Context, p *model.CustomerProfile, res *model.ScoringResult) *analysisContext {
	actx := &analysisContext{
		profile:    p,
		score:      res.Score,
		topFactors: res.TopFactors(3),
	}
	if a.store == nil {
		return actx
	}

	actx.baseline = a.store.Baseline()
	actx.totalRecords = a.store.Count()

	cs, err := a.store.SimilarCohort(ctx, p)
	if err != nil {
		zap.L().Warn("insight: similar cohort query failed", zap.Error(err))
	} else {
		actx.cohortStats = cs
	}

	patterns, err := a.store.SubPatterns(ctx, p)
	if err != nil {
		zap.L().Warn("insight: sub-pattern query failed", zap.Error(err))
	} else {
		actx.subPatterns = patterns
	}
	return actx
}

func (a *Analyzer) callModel(ctx context.Context, actx *analysisContext) (*model.PatternInsight, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "insight: rate limit wait")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	req := anthropic.MessageRequest{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		System:      systemPrompt,
		Temperature: &a.opts.Temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(actx)},
		},
	}

	resp, err := resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return a.client.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(a.opts.Model, "pattern_analysis")
	return a.parseResponse(resp.Text(), actx)
}

// rawInsight is the loosely-typed shape the model answers with.
type rawInsight struct {
	PatternDescription      string                  `json:"pattern_description"`
	CohortSize              int                     `json:"cohort_size"`
	ClaimRate               float64                 `json:"claim_rate"`
	RiskMultiplier          *float64                `json:"risk_multiplier"`
	Confidence              string                  `json:"confidence"`
	KeyFactors              []string                `json:"key_factors"`
	KeyFactorsSentiment     []model.SentimentFactor `json:"key_factors_with_sentiment"`
	Recommendation          string                  `json:"recommendation"`
	StatisticalSignificance string                  `json:"statistical_significance"`
	SuggestedPricePosition  *float64                `json:"suggested_price_position"`
}

// parseResponse extracts the JSON object from the model's answer. The model
// may wrap it in prose or a markdown fence, so we take everything between the
// first '{' and the last '}'.
func (a *Analyzer) parseResponse(text string, actx *analysisContext) (*model.PatternInsight, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, eris.New("insight: no JSON object in model response")
	}

	var raw rawInsight
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "insight: parse model response")
	}

	multiplier := 1.0
	if raw.RiskMultiplier != nil {
		multiplier = *raw.RiskMultiplier
	}

	position := positionFromMultiplier(multiplier)
	if raw.SuggestedPricePosition != nil {
		position = clamp01(*raw.SuggestedPricePosition)
	}

	confidence := raw.Confidence
	if confidence == "" {
		confidence = "medium"
	}

	detailed := raw.KeyFactorsSentiment
	if len(detailed) == 0 {
		for _, f := range raw.KeyFactors {
			detailed = append(detailed, model.SentimentFactor{Text: f, Sentiment: classifyFactor(f)})
		}
	}

	return &model.PatternInsight{
		PatternDescription:      raw.PatternDescription,
		CohortSize:              raw.CohortSize,
		ClaimRate:               raw.ClaimRate,
		BaselineClaimRate:       actx.baseline.OverallClaimRate,
		RiskMultiplier:          multiplier,
		Confidence:              confidence,
		KeyFactors:              raw.KeyFactors,
		KeyFactorsDetailed:      detailed,
		Recommendation:          raw.Recommendation,
		StatisticalSignificance: raw.StatisticalSignificance,
		SuggestedPricePosition:  position,
	}, nil
}

// fallback derives a deterministic insight from the cohort numbers alone.
func (a *Analyzer) fallback(actx *analysisContext) *model.PatternInsight {
	baseline := actx.baseline.OverallClaimRate

	var cohortClaimRate float64
	var cohortSize int
	if actx.cohortStats != nil {
		cohortClaimRate = actx.cohortStats.ClaimRate
		cohortSize = actx.cohortStats.Size
	}

	multiplier := 1.0
	if baseline > 0 {
		multiplier = cohortClaimRate / baseline
	}

	confidence := "low"
	if cohortSize > 100 {
		confidence = "medium"
	}

	return &model.PatternInsight{
		PatternDescription:      "Similar demographic and health profile customers",
		CohortSize:              cohortSize,
		ClaimRate:               cohortClaimRate,
		BaselineClaimRate:       baseline,
		RiskMultiplier:          multiplier,
		Confidence:              confidence,
		KeyFactors:              []string{"Age", "Gender", "BMI", "Smoking Status"},
		Recommendation:          "Standard underwriting procedures apply",
		StatisticalSignificance: usd.Sprintf("Based on %d similar customers in historical data", cohortSize),
		SuggestedPricePosition:  positionFromMultiplier(multiplier),
	}
}

// positionFromMultiplier maps a claim-rate multiplier to a price position in
// the band when the model didn't suggest one.
func positionFromMultiplier(multiplier float64) float64 {
	switch {
	case multiplier > 1.5:
		return 0.75
	case multiplier < 0.9:
		return 0.45
	default:
		return 0.6
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var factorPositives = []string{
	"protective", "reduces", "lower", "favorable", "preferred",
	"active", "fit", "good", "strong", "improves", "healthy", "exercise",
	"benefit",
}

var factorNegatives = []string{
	"risk", "high", "elevated", "smoker", "smoking", "obese",
	"overweight", "dangerous", "chronic", "poor", "unfavorable",
	"heavy", "claims", "adverse", "hypertension", "cardiovascular",
	"metabolic", "sedentary", "obesity", "diabetes",
}

// classifyFactor is the keyword heuristic used when the model names key
// factors without sentiment labels. Positives win ties.
func classifyFactor(text string) string {
	t := strings.ToLower(text)
	for _, w := range factorPositives {
		if strings.Contains(t, w) {
			return "positive"
		}
	}
	for _, w := range factorNegatives {
		if strings.Contains(t, w) {
			return "negative"
		}
	}
	return "neutral"
}
