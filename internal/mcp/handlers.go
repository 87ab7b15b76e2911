package mcp

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"reqcast/internal/errs"
	"reqcast/internal/llm"
	"reqcast/internal/pipeline"
	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
	"reqcast/internal/visuals"
)

// briefArgs is the common tool input: a brief plus optional simulation knobs.
type briefArgs struct {
	Requirements []project.Requirement `json:"requirements"`
	Metadata     project.Metadata      `json:"metadata"`
	Trials       int                   `json:"trials,omitempty"`
	Seed         int64                 `json:"seed,omitempty"`
}

// decodeBrief parses tool arguments and fills metadata gaps from the
// configured defaults.
func (s *Server) decodeBrief(raw json.RawMessage) (project.Brief, briefArgs, error) {
	var args briefArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return project.Brief{}, args, goerr.Wrap(err, "invalid tool arguments", goerr.T(errs.TagInvalidInput))
	}

	meta := args.Metadata
	if meta.TeamSize == 0 {
		meta.TeamSize = s.cfg.DefaultTeamSize
	}
	if meta.WorkingDaysPerWeek == 0 {
		meta.WorkingDaysPerWeek = s.cfg.DefaultWorkingDaysPerWeek
	}

	brief := project.Brief{Requirements: args.Requirements, Metadata: meta}
	if err := brief.Validate(); err != nil {
		return brief, args, err
	}
	return brief, args, nil
}

// options clones the configured pipeline options with per-call overrides.
func (s *Server) options(args briefArgs) pipeline.Options {
	opts := s.cfg.Pipeline
	if args.Trials > 0 {
		opts.Simulation.Trials = args.Trials
	}
	if args.Seed != 0 {
		opts.Simulation.Seed = args.Seed
	}
	return opts
}

func (s *Server) handleScoreComplexity(raw json.RawMessage) (interface{}, error) {
	brief, args, err := s.decodeBrief(raw)
	if err != nil {
		return nil, err
	}
	return scoring.ScoreComplexity(brief, s.options(args).Complexity)
}

func (s *Server) handleAssessRisks(raw json.RawMessage) (interface{}, error) {
	brief, args, err := s.decodeBrief(raw)
	if err != nil {
		return nil, err
	}

	assessment, err := scoring.AssessRisks(context.Background(), brief, nil, s.options(args).Risk)
	if err != nil {
		return nil, err
	}

	return struct {
		scoring.RiskAssessment
		Chart string `json:"chart,omitempty"`
	}{assessment, visuals.GenerateSeverityPie(assessment)}, nil
}

func (s *Server) handleForecastTimeline(raw json.RawMessage) (interface{}, error) {
	brief, args, err := s.decodeBrief(raw)
	if err != nil {
		return nil, err
	}

	analysis, err := pipeline.Analyze(context.Background(), brief, nil, s.options(args))
	if err != nil {
		return nil, err
	}

	out := struct {
		Baseline simulation.BaselineEstimate `json:"baseline"`
		Forecast *simulation.Forecast        `json:"forecast,omitempty"`
		Warnings []string                    `json:"warnings,omitempty"`
		Chart    string                      `json:"chart,omitempty"`
	}{
		Baseline: analysis.Baseline,
		Forecast: analysis.Forecast,
		Warnings: analysis.Warnings,
	}
	if analysis.Forecast != nil {
		out.Chart = visuals.GenerateScenarioChart(*analysis.Forecast)
	}
	return out, nil
}

func (s *Server) handleRunPipeline(raw json.RawMessage) (interface{}, error) {
	if s.llm == nil {
		return nil, goerr.New("no LLM configured: set REQCAST_GEMINI_PROJECT to enable the judged pipeline",
			goerr.T(errs.TagInvalidInput))
	}

	brief, args, err := s.decodeBrief(raw)
	if err != nil {
		return nil, err
	}

	ctrl := pipeline.NewController(s.options(args), llm.NewQualityJudge(s.llm), llm.NewRefiner(s.llm), nil)
	return ctrl.Run(context.Background(), brief)
}
