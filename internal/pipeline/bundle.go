package pipeline

import (
	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

// Summary is the compact dashboard block attached to every bundle.
type Summary struct {
	TeamSize          int                      `json:"team_size"`
	DeadlineWeeks     float64                  `json:"deadline_weeks,omitempty"`
	RequirementCounts map[project.Category]int `json:"requirement_counts"`
	TotalRisks        int                      `json:"total_risks"`
	SevereRisks       int                      `json:"severe_risks"`
	ComplexityScore   float64                  `json:"complexity_score"`
	ComplexityLevel   string                   `json:"complexity_level"`
	Iterations        int                      `json:"iterations"`
	FinalQualityScore float64                  `json:"final_quality_score"`
	Status            Status                   `json:"status"`
}

// Bundle is everything a pipeline run hands to the downstream consumer.
// The core has no opinion on presentation.
type Bundle struct {
	RunID string        `json:"run_id"`
	Brief project.Brief `json:"brief"`

	Complexity scoring.ComplexityScore     `json:"complexity"`
	Risks      scoring.RiskAssessment      `json:"risks"`
	Baseline   simulation.BaselineEstimate `json:"baseline"`
	Forecast   *simulation.Forecast        `json:"forecast,omitempty"` // nil when simulation was unavailable

	Loop      LoopState  `json:"loop"`
	Judgments []Judgment `json:"judgments,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`

	// Unvalidated: the quality judge or refiner failed, the bundle carries
	// the last good results. BelowThreshold: the iteration budget ran out
	// before the quality gate passed. Incomplete: the run was cancelled and
	// the bundle holds whatever was computed up to that point.
	Unvalidated    bool `json:"unvalidated,omitempty"`
	BelowThreshold bool `json:"below_threshold,omitempty"`
	Incomplete     bool `json:"incomplete,omitempty"`

	Summary Summary `json:"summary"`
}

// finalize fills the summary block from the bundle's current contents.
func (b *Bundle) finalize() {
	b.Summary = Summary{
		TeamSize:          b.Brief.Metadata.TeamSize,
		DeadlineWeeks:     b.Brief.Metadata.DeadlineWeeks,
		RequirementCounts: b.Brief.CountByCategory(),
		TotalRisks:        b.Risks.Summary.Total,
		SevereRisks:       b.Risks.SevereCount(),
		ComplexityScore:   b.Complexity.Value,
		ComplexityLevel:   b.Complexity.Level,
		Iterations:        len(b.Judgments),
		Status:            b.Loop.Status,
	}
	if b.Loop.QualityScore != nil {
		b.Summary.FinalQualityScore = *b.Loop.QualityScore
	}
}
