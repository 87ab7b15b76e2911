package scoring

// Severity buckets a probability×impact score into a discrete risk class.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityThresholds defines the lower bound of each bucket above Low on the
// 1-25 probability×impact scale.
type SeverityThresholds struct {
	MediumMin   int `json:"medium_min"`
	HighMin     int `json:"high_min"`
	CriticalMin int `json:"critical_min"`
}

// DefaultSeverityThresholds returns the standard bucketing:
// Low 1-5, Medium 6-12, High 13-19, Critical 20-25.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{MediumMin: 6, HighMin: 13, CriticalMin: 20}
}

// Classify maps a score onto its severity bucket. The mapping is a
// non-decreasing step function of the score.
func (t SeverityThresholds) Classify(score int) Severity {
	switch {
	case score >= t.CriticalMin:
		return SeverityCritical
	case score >= t.HighMin:
		return SeverityHigh
	case score >= t.MediumMin:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsSevere reports whether the severity is High or Critical.
func (s Severity) IsSevere() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// RiskItem is the scored risk record for a single requirement.
type RiskItem struct {
	RequirementID string   `json:"requirement_id"`
	Probability   int      `json:"probability"` // 1-5
	Impact        int      `json:"impact"`      // 1-5
	Score         int      `json:"score"`       // probability × impact
	Severity      Severity `json:"severity"`
	Mitigation    string   `json:"mitigation"`
	Owner         string   `json:"owner"`
}

// RAIDSummary aggregates the risk landscape across the requirement set.
type RAIDSummary struct {
	Total        int              `json:"total"`
	BySeverity   map[Severity]int `json:"by_severity"`
	SevereShare  float64          `json:"severe_share"` // share of High+Critical items
	Dependencies int              `json:"dependencies"` // total declared dependency references
}

// RiskAssessment is the full output of the risk scorer.
type RiskAssessment struct {
	Items   []RiskItem  `json:"items"`   // one per requirement, input order
	Top     []RiskItem  `json:"top"`     // highest scores first, ties by requirement ID
	Posture string      `json:"posture"` // overall risk posture label
	Summary RAIDSummary `json:"summary"`
}

// SevereCount returns the number of High/Critical items, which scales the
// delay distribution in the Monte Carlo simulation.
func (a RiskAssessment) SevereCount() int {
	n := 0
	for _, item := range a.Items {
		if item.Severity.IsSevere() {
			n++
		}
	}
	return n
}

// ComplexityScore is the 0-10 composite complexity value with its sub-metric
// breakdown.
type ComplexityScore struct {
	Value      float64            `json:"value"` // clamped to [0,10]
	Level      string             `json:"level"` // Low / Medium / High
	SubMetrics map[string]float64 `json:"sub_metrics"`
}

// Sub-metric names of the complexity breakdown.
const (
	MetricRequirementVolume  = "requirement_volume"
	MetricNFRRatio           = "nfr_ratio"
	MetricEffort             = "effort"
	MetricDependencyDensity  = "dependency_density"
	MetricConstraintSeverity = "constraint_severity"
)
