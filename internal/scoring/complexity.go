package scoring

import (
	"math"

	"github.com/m-mizutani/goerr/v2"

	"reqcast/internal/errs"
	"reqcast/internal/project"
)

// ComplexityWeights holds the fixed weights of the five sub-metrics.
// They must sum to 1 for a run.
type ComplexityWeights struct {
	Volume     float64 `json:"volume"`
	NFRRatio   float64 `json:"nfr_ratio"`
	Effort     float64 `json:"effort"`
	Density    float64 `json:"density"`
	Constraint float64 `json:"constraint"`
}

// ComplexityConfig holds the saturation thresholds and weights of the
// complexity scorer. Values are read-only once a run starts.
type ComplexityConfig struct {
	VolumeThreshold     float64 // requirement count at which the volume metric saturates
	NFRRatioThreshold   float64 // non-functional share at which the ratio metric saturates
	EffortThreshold     float64 // total story points at which the effort metric saturates
	DensityThreshold    float64 // mean dependencies per requirement at saturation
	ConstraintThreshold float64 // priority-weighted constraint share at saturation
	Weights             ComplexityWeights
}

// DefaultComplexityConfig returns the standard thresholds with equal weights.
func DefaultComplexityConfig() ComplexityConfig {
	return ComplexityConfig{
		VolumeThreshold:     40,
		NFRRatioThreshold:   0.5,
		EffortThreshold:     200,
		DensityThreshold:    3,
		ConstraintThreshold: 0.75,
		Weights: ComplexityWeights{
			Volume:     0.2,
			NFRRatio:   0.2,
			Effort:     0.2,
			Density:    0.2,
			Constraint: 0.2,
		},
	}
}

// Validate checks that all thresholds are positive and the weights sum to 1.
func (c ComplexityConfig) Validate() error {
	for name, v := range map[string]float64{
		"volume":     c.VolumeThreshold,
		"nfr_ratio":  c.NFRRatioThreshold,
		"effort":     c.EffortThreshold,
		"density":    c.DensityThreshold,
		"constraint": c.ConstraintThreshold,
	} {
		if v <= 0 {
			return goerr.New("complexity threshold must be positive",
				goerr.V("threshold", name), goerr.V("value", v), goerr.T(errs.TagInvalidInput))
		}
	}

	w := c.Weights
	sum := w.Volume + w.NFRRatio + w.Effort + w.Density + w.Constraint
	if math.Abs(sum-1.0) > 1e-9 {
		return goerr.New("complexity weights must sum to 1",
			goerr.V("sum", sum), goerr.T(errs.TagInvalidInput))
	}
	return nil
}

// ScoreComplexity computes the composite 0-10 complexity score of a brief.
// The mapping is pure: identical inputs always produce identical scores.
func ScoreComplexity(brief project.Brief, cfg ComplexityConfig) (ComplexityScore, error) {
	var score ComplexityScore

	if err := brief.Validate(); err != nil {
		return score, err
	}
	if err := cfg.Validate(); err != nil {
		return score, err
	}

	count := float64(len(brief.Requirements))

	nfrCount := 0.0
	totalDeps := 0.0
	constraintWeight := 0.0
	for _, r := range brief.Requirements {
		if r.Category == project.CategoryNonFunctional {
			nfrCount++
		}
		totalDeps += float64(len(r.DependencyIDs))
		if r.Category == project.CategoryConstraint || r.Category == project.CategoryPolicy {
			constraintWeight += float64(r.Priority.Weight())
		}
	}

	sub := map[string]float64{
		MetricRequirementVolume:  saturate(count, cfg.VolumeThreshold),
		MetricNFRRatio:           saturate(nfrCount/count, cfg.NFRRatioThreshold),
		MetricEffort:             saturate(brief.TotalEffort(), cfg.EffortThreshold),
		MetricDependencyDensity:  saturate(totalDeps/count, cfg.DensityThreshold),
		MetricConstraintSeverity: saturate(constraintWeight/(3*count), cfg.ConstraintThreshold),
	}

	w := cfg.Weights
	value := sub[MetricRequirementVolume]*w.Volume +
		sub[MetricNFRRatio]*w.NFRRatio +
		sub[MetricEffort]*w.Effort +
		sub[MetricDependencyDensity]*w.Density +
		sub[MetricConstraintSeverity]*w.Constraint

	score.Value = clamp(value, 0, 10)
	score.Level = complexityLevel(score.Value)
	score.SubMetrics = sub
	return score, nil
}

// saturate normalizes a raw value into [0,10], saturating at the threshold.
func saturate(raw, threshold float64) float64 {
	return clamp(raw/threshold*10, 0, 10)
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

func complexityLevel(value float64) string {
	switch {
	case value < 4:
		return "Low"
	case value < 7:
		return "Medium"
	default:
		return "High"
	}
}
