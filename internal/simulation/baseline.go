package simulation

import (
	"math"

	"github.com/m-mizutani/goerr/v2"

	"reqcast/internal/errs"
	"reqcast/internal/project"
)

// BaselineConfig holds the deterministic estimation constants.
type BaselineConfig struct {
	ProductivityFactor float64 // story points per person per working day
	BaseBuffer         float64 // buffer fraction applied regardless of complexity
	BufferCoefficient  float64 // additional buffer per complexity point
}

// DefaultBaselineConfig returns the standard estimation constants.
func DefaultBaselineConfig() BaselineConfig {
	return BaselineConfig{
		ProductivityFactor: 1.0,
		BaseBuffer:         0.10,
		BufferCoefficient:  0.02,
	}
}

// BaselineEstimate is the risk-unadjusted delivery estimate.
type BaselineEstimate struct {
	TotalEffort    float64 `json:"total_effort"`
	Velocity       float64 `json:"velocity"` // story points per week
	BufferFraction float64 `json:"buffer_fraction"`
	DurationDays   float64 `json:"duration_days"`
}

// EstimateBaseline converts aggregate effort and team parameters into a
// baseline duration:
//
//	velocity = team_size × working_days_per_week × productivity_factor
//	buffer   = base_buffer + complexity_score × buffer_coefficient
//	duration = total_effort / velocity × (1 + buffer)
//
// Division is guarded: a non-positive velocity raises an invalid-input error
// instead of flowing a non-finite duration downstream.
func EstimateBaseline(brief project.Brief, complexityScore float64, cfg BaselineConfig) (BaselineEstimate, error) {
	var est BaselineEstimate

	if err := brief.Validate(); err != nil {
		return est, err
	}

	velocity := float64(brief.Metadata.TeamSize) * float64(brief.Metadata.WorkingDaysPerWeek) * cfg.ProductivityFactor
	if velocity <= 0 || math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		return est, goerr.New("velocity must be positive and finite",
			goerr.V("velocity", velocity),
			goerr.V("team_size", brief.Metadata.TeamSize),
			goerr.V("productivity_factor", cfg.ProductivityFactor),
			goerr.T(errs.TagInvalidInput))
	}

	effort := brief.TotalEffort()
	if math.IsNaN(effort) || math.IsInf(effort, 0) {
		return est, goerr.New("total effort must be finite", goerr.V("effort", effort), goerr.T(errs.TagInvalidInput))
	}

	buffer := cfg.BaseBuffer + complexityScore*cfg.BufferCoefficient
	duration := effort / velocity * (1 + buffer)
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return est, goerr.New("baseline duration must be finite and non-negative",
			goerr.V("duration", duration), goerr.T(errs.TagInvalidInput))
	}

	est.TotalEffort = effort
	est.Velocity = velocity
	est.BufferFraction = buffer
	est.DurationDays = duration
	return est, nil
}
