package pipeline

import (
	"context"

	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

// Judgment is the quality verdict returned by the judge collaborator.
type Judgment struct {
	QualityScore    float64            `json:"quality_score"` // 0-10
	Feedback        string             `json:"feedback"`
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty"`
}

// Judge evaluates a scored bundle and returns a quality verdict. The call is
// blocking I/O from the core's perspective; the controller bounds it with a
// deadline. Implementations must behave as pure functions of their inputs so
// scripted stubs can stand in during tests.
type Judge interface {
	Judge(ctx context.Context, reqs []project.Requirement, risks []scoring.RiskItem, scenarios []simulation.ScenarioResult) (Judgment, error)
}

// Refiner rewrites the requirement set in response to judge feedback. It may
// add, edit, or remove requirements; the core does not inspect the semantics
// of the edit, it only re-scores the result.
type Refiner interface {
	Refine(ctx context.Context, reqs []project.Requirement, feedback string) ([]project.Requirement, error)
}
