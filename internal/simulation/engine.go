package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"reqcast/internal/errs"
)

// chunkSize is the number of trials handled by one worker batch. Each chunk
// owns a generator seeded from the run seed plus the chunk index, so results
// are identical no matter how many workers execute the chunks.
const chunkSize = 128

// Config holds the Monte Carlo engine tunables.
type Config struct {
	Trials int   `json:"trials"`
	Seed   int64 `json:"seed"` // 0 = derive from wall clock

	// Productivity divides the baseline per trial; Delay adds per-trial days
	// scaled by the count of High/Critical risk items.
	Productivity Distribution `json:"productivity"`
	Delay        Distribution `json:"delay"`

	// MaxFailureFraction is the tolerated share of non-finite trials before
	// the whole forecast is marked unavailable.
	MaxFailureFraction float64 `json:"max_failure_fraction"`

	Workers int `json:"-"`
}

// DefaultConfig returns the standard simulation configuration.
func DefaultConfig() Config {
	return Config{
		Trials:             800,
		Productivity:       Triangular(0.7, 1.0, 1.3),
		Delay:              Triangular(0, 1, 3),
		MaxFailureFraction: 0.05,
	}
}

// ScenarioCase labels the three reported outcomes.
type ScenarioCase string

const (
	CaseBest     ScenarioCase = "best"
	CaseExpected ScenarioCase = "expected"
	CaseWorst    ScenarioCase = "worst"
)

// ScenarioResult is a single percentile outcome of the trial distribution.
type ScenarioResult struct {
	Case               ScenarioCase `json:"case"`
	Percentile         string       `json:"percentile"`
	DurationDays       float64      `json:"duration_days"`
	SlipVsBaselineDays float64      `json:"schedule_slip_vs_baseline"`
}

// Forecast holds the full simulation output.
type Forecast struct {
	BaselineDays float64          `json:"baseline_days"`
	Trials       int              `json:"trials"`
	FailedTrials int              `json:"failed_trials"`
	Seed         int64            `json:"seed"`
	P10          float64          `json:"p10"`
	P50          float64          `json:"p50"`
	P90          float64          `json:"p90"`
	Scenarios    []ScenarioResult `json:"scenarios"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// Engine runs seeded Monte Carlo timeline simulations.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling unset config fields with defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Trials <= 0 {
		cfg.Trials = def.Trials
	}
	if cfg.Productivity.Kind == "" {
		cfg.Productivity = def.Productivity
	}
	if cfg.Delay.Kind == "" {
		cfg.Delay = def.Delay
	}
	if cfg.MaxFailureFraction <= 0 {
		cfg.MaxFailureFraction = def.MaxFailureFraction
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{cfg: cfg}
}

// Run simulates cfg.Trials independent delivery timelines around the baseline.
// Each trial samples a productivity factor and a delay factor (scaled by the
// severe risk count) and computes
//
//	duration = baseline / productivity + delay, clamped to >= 0
//
// Trials that produce a non-positive productivity or a non-finite duration
// are counted as failed. If the failed share exceeds MaxFailureFraction the
// whole run fails with a simulation error; otherwise failed trials are
// dropped from the percentile pool and reported as a warning.
//
// With a fixed Seed the full trial set, and therefore P10/P50/P90, is
// bit-reproducible regardless of worker count: aggregation is sort-then-index
// over the complete pool.
func (e *Engine) Run(ctx context.Context, baselineDays float64, severeRisks int) (Forecast, error) {
	var fc Forecast

	if baselineDays < 0 || math.IsNaN(baselineDays) || math.IsInf(baselineDays, 0) {
		return fc, goerr.New("baseline duration must be finite and non-negative",
			goerr.V("baseline_days", baselineDays), goerr.T(errs.TagInvalidInput))
	}
	if err := e.cfg.Productivity.Validate(); err != nil {
		return fc, goerr.Wrap(err, "invalid productivity distribution")
	}
	if err := e.cfg.Delay.Validate(); err != nil {
		return fc, goerr.Wrap(err, "invalid delay distribution")
	}
	if severeRisks < 0 {
		severeRisks = 0
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		log.Debug().Int64("seed", seed).Msg("No seed configured, derived from wall clock")
	}

	trials := e.cfg.Trials
	durations := make([]float64, trials)
	chunks := (trials + chunkSize - 1) / chunkSize
	failed := make([]int, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for c := 0; c < chunks; c++ {
		from := c * chunkSize
		to := from + chunkSize
		if to > trials {
			to = trials
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed + int64(from)))
			for i := from; i < to; i++ {
				durations[i] = e.trial(rng, baselineDays, severeRisks)
				if math.IsNaN(durations[i]) {
					failed[from/chunkSize]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fc, goerr.Wrap(err, "simulation cancelled")
	}

	failedTotal := 0
	for _, n := range failed {
		failedTotal += n
	}
	if frac := float64(failedTotal) / float64(trials); frac > e.cfg.MaxFailureFraction {
		return fc, goerr.New("too many trials produced non-finite durations",
			goerr.V("failed", failedTotal), goerr.V("trials", trials), goerr.V("fraction", frac),
			goerr.T(errs.TagSimulation))
	}

	// Deterministic, order-independent reduction: drop failures, sort, index.
	pool := make([]float64, 0, trials-failedTotal)
	for _, d := range durations {
		if !math.IsNaN(d) {
			pool = append(pool, d)
		}
	}
	sort.Float64s(pool)

	fc.BaselineDays = baselineDays
	fc.Trials = trials
	fc.FailedTrials = failedTotal
	fc.Seed = seed
	fc.P10 = percentile(pool, 0.10)
	fc.P50 = percentile(pool, 0.50)
	fc.P90 = percentile(pool, 0.90)
	fc.Scenarios = []ScenarioResult{
		{Case: CaseBest, Percentile: "P10", DurationDays: fc.P10, SlipVsBaselineDays: fc.P10 - baselineDays},
		{Case: CaseExpected, Percentile: "P50", DurationDays: fc.P50, SlipVsBaselineDays: fc.P50 - baselineDays},
		{Case: CaseWorst, Percentile: "P90", DurationDays: fc.P90, SlipVsBaselineDays: fc.P90 - baselineDays},
	}
	if failedTotal > 0 {
		fc.Warnings = append(fc.Warnings,
			fmt.Sprintf("%d of %d trials produced non-finite durations and were excluded", failedTotal, trials))
	}
	return fc, nil
}

// trial runs a single scenario. Failed trials are reported as NaN.
func (e *Engine) trial(rng *rand.Rand, baseline float64, severeRisks int) float64 {
	productivity := e.cfg.Productivity.Sample(rng)
	delay := e.cfg.Delay.Sample(rng) * float64(severeRisks)

	if productivity <= 0 || math.IsNaN(productivity) || math.IsInf(productivity, 0) {
		return math.NaN()
	}

	d := baseline/productivity + delay
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return math.NaN()
	}
	if d < 0 {
		return 0
	}
	return d
}

// percentile extracts the p-quantile from a sorted slice using linear
// interpolation between order statistics at rank (n-1)*p.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	k := float64(n-1) * p
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}
	return sorted[int(f)]*(c-k) + sorted[int(c)]*(k-f)
}
