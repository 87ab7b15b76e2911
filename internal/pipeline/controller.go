package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/zerolog/log"

	"reqcast/internal/errs"
	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

// Options is the full configuration surface of a pipeline run. Values are
// read-only once a run starts.
type Options struct {
	QualityThreshold    float64
	MaxIterations       int
	CollaboratorTimeout time.Duration

	Complexity scoring.ComplexityConfig
	Risk       scoring.RiskConfig
	Baseline   simulation.BaselineConfig
	Simulation simulation.Config
}

// DefaultOptions returns the standard pipeline configuration.
func DefaultOptions() Options {
	return Options{
		QualityThreshold:    7.0,
		MaxIterations:       3,
		CollaboratorTimeout: 60 * time.Second,
		Complexity:          scoring.DefaultComplexityConfig(),
		Risk:                scoring.DefaultRiskConfig(),
		Baseline:            simulation.DefaultBaselineConfig(),
		Simulation:          simulation.DefaultConfig(),
	}
}

// Analysis is the deterministic portion of one cycle: scoring, estimation,
// and simulation, with no collaborator involvement.
type Analysis struct {
	Complexity scoring.ComplexityScore     `json:"complexity"`
	Risks      scoring.RiskAssessment      `json:"risks"`
	Baseline   simulation.BaselineEstimate `json:"baseline"`
	Forecast   *simulation.Forecast        `json:"forecast,omitempty"`
	Warnings   []string                    `json:"warnings,omitempty"`
}

// Analyze runs the scoring chain once: complexity, risks, baseline, Monte
// Carlo. A simulation that exceeds its failure budget does not abort the
// analysis; the forecast is left nil and a warning is attached.
func Analyze(ctx context.Context, brief project.Brief, signals scoring.SignalSource, opts Options) (Analysis, error) {
	var a Analysis

	complexity, err := scoring.ScoreComplexity(brief, opts.Complexity)
	if err != nil {
		return a, err
	}

	risks, err := scoring.AssessRisks(ctx, brief, signals, opts.Risk)
	if err != nil {
		return a, err
	}

	baseline, err := simulation.EstimateBaseline(brief, complexity.Value, opts.Baseline)
	if err != nil {
		return a, err
	}

	a.Complexity = complexity
	a.Risks = risks
	a.Baseline = baseline

	engine := simulation.NewEngine(opts.Simulation)
	forecast, err := engine.Run(ctx, baseline.DurationDays, risks.SevereCount())
	switch {
	case err == nil:
		a.Forecast = &forecast
		a.Warnings = append(a.Warnings, forecast.Warnings...)
	case errs.IsSimulation(err):
		log.Warn().Err(err).Msg("Simulation unavailable, continuing with scoring results only")
		a.Warnings = append(a.Warnings, "timeline simulation unavailable: "+err.Error())
	default:
		return a, err
	}

	return a, nil
}

// Controller runs the bounded quality-gated refinement loop. Cycles execute
// strictly sequentially; no state is shared across concurrent runs.
type Controller struct {
	opts    Options
	judge   Judge
	refiner Refiner
	signals scoring.SignalSource
}

// NewController wires a controller. judge must be non-nil; refiner may be nil
// when MaxIterations is 1 (no refinement possible anyway).
func NewController(opts Options, judge Judge, refiner Refiner, signals scoring.SignalSource) *Controller {
	if opts.QualityThreshold <= 0 {
		opts.QualityThreshold = 7.0
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 3
	}
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = 60 * time.Second
	}
	return &Controller{opts: opts, judge: judge, refiner: refiner, signals: signals}
}

// Run executes the validation loop on the brief and returns the final bundle.
// Termination is guaranteed within MaxIterations judgment cycles regardless
// of the quality-score sequence. Collaborator failures end the run in the
// Failed state with the last good results tagged unvalidated; cancellation
// returns whatever was computed tagged incomplete.
//
// Invalid input is the only condition reported as a Go error: it is raised
// before any simulation runs.
func (c *Controller) Run(ctx context.Context, brief project.Brief) (Bundle, error) {
	bundle := Bundle{
		RunID: uuid.NewString(),
		Brief: brief,
		Loop:  LoopState{Status: StatusRunning},
	}

	if err := brief.Validate(); err != nil {
		return bundle, err
	}
	if c.judge == nil {
		return bundle, goerr.New("judge collaborator is required", goerr.T(errs.TagInvalidInput))
	}

	for {
		if ctx.Err() != nil {
			return c.abandon(&bundle, "run cancelled"), nil
		}

		// 1. Re-run the scoring chain: the bundle may have changed since the
		// previous iteration, so nothing is cached.
		analysis, err := Analyze(ctx, bundle.Brief, c.signals, c.opts)
		if err != nil {
			if ctx.Err() != nil {
				return c.abandon(&bundle, "run cancelled during analysis"), nil
			}
			return bundle, err
		}
		bundle.Complexity = analysis.Complexity
		bundle.Risks = analysis.Risks
		bundle.Baseline = analysis.Baseline
		bundle.Forecast = analysis.Forecast
		bundle.Warnings = append(bundle.Warnings, analysis.Warnings...)

		if ctx.Err() != nil {
			return c.abandon(&bundle, "run cancelled"), nil
		}

		// 2. External quality judgment, bounded by the collaborator timeout.
		var scenarios []simulation.ScenarioResult
		if bundle.Forecast != nil {
			scenarios = bundle.Forecast.Scenarios
		}
		judgment, err := c.callJudge(ctx, bundle.Brief.Requirements, bundle.Risks.Items, scenarios)
		if err != nil {
			log.Error().Err(err).Int("iteration", bundle.Loop.Iteration).Msg("Quality judge failed, abandoning loop")
			return c.fail(&bundle, "quality judge unreachable: "+err.Error()), nil
		}

		judgment.QualityScore = clampScore(judgment.QualityScore)
		bundle.Judgments = append(bundle.Judgments, judgment)
		bundle.Loop.QualityScore = &judgment.QualityScore

		log.Info().
			Int("iteration", bundle.Loop.Iteration).
			Float64("quality_score", judgment.QualityScore).
			Float64("threshold", c.opts.QualityThreshold).
			Msg("Quality gate evaluated")

		// 3. Gate decision.
		switch gate(judgment.QualityScore, bundle.Loop.Iteration, c.opts.MaxIterations, c.opts.QualityThreshold) {
		case decidePass:
			bundle.Loop.Status = StatusPassed
			bundle.finalize()
			return bundle, nil

		case decideStop:
			bundle.Loop.Status = StatusMaxIterationsReached
			bundle.BelowThreshold = true
			bundle.finalize()
			return bundle, nil

		case decideRefine:
			refined, err := c.callRefiner(ctx, bundle.Brief.Requirements, judgment.Feedback)
			if err != nil {
				log.Error().Err(err).Int("iteration", bundle.Loop.Iteration).Msg("Refiner failed, abandoning loop")
				return c.fail(&bundle, "refiner unreachable: "+err.Error()), nil
			}

			next := project.Brief{Requirements: refined, Metadata: bundle.Brief.Metadata}
			if err := next.Validate(); err != nil {
				log.Error().Err(err).Msg("Refiner returned an invalid requirement set")
				return c.fail(&bundle, "refiner returned invalid requirements: "+err.Error()), nil
			}

			bundle.Brief = next
			bundle.Loop.Iteration++
		}
	}
}

func (c *Controller) callJudge(ctx context.Context, reqs []project.Requirement, risks []scoring.RiskItem, scenarios []simulation.ScenarioResult) (Judgment, error) {
	jctx, cancel := context.WithTimeout(ctx, c.opts.CollaboratorTimeout)
	defer cancel()

	judgment, err := c.judge.Judge(jctx, reqs, risks, scenarios)
	if err != nil {
		return judgment, goerr.Wrap(err, "judge call failed", goerr.T(errs.TagCollaborator))
	}
	return judgment, nil
}

func (c *Controller) callRefiner(ctx context.Context, reqs []project.Requirement, feedback string) ([]project.Requirement, error) {
	if c.refiner == nil {
		return nil, goerr.New("no refiner collaborator configured", goerr.T(errs.TagCollaborator))
	}

	rctx, cancel := context.WithTimeout(ctx, c.opts.CollaboratorTimeout)
	defer cancel()

	refined, err := c.refiner.Refine(rctx, reqs, feedback)
	if err != nil {
		return nil, goerr.Wrap(err, "refiner call failed", goerr.T(errs.TagCollaborator))
	}
	return refined, nil
}

// fail terminates the loop in the Failed state, keeping the last good results
// tagged unvalidated.
func (c *Controller) fail(bundle *Bundle, warning string) Bundle {
	bundle.Loop.Status = StatusFailed
	bundle.Unvalidated = true
	bundle.Warnings = append(bundle.Warnings, warning)
	bundle.finalize()
	return *bundle
}

// abandon terminates a cancelled run, returning whatever was computed.
func (c *Controller) abandon(bundle *Bundle, warning string) Bundle {
	bundle.Loop.Status = StatusFailed
	bundle.Incomplete = true
	bundle.Warnings = append(bundle.Warnings, warning)
	bundle.finalize()
	return *bundle
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
