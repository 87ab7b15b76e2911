package scoring

import (
	"context"
	"sort"
	"strings"

	"reqcast/internal/project"
)

// SignalSource supplies externally derived probability/impact signals for a
// requirement, e.g. from a historical incident database. Implementations may
// block on I/O; callers bound them with a context deadline. A requirement
// without external signals returns ok=false and falls back to the
// deterministic derivation.
type SignalSource interface {
	Signals(ctx context.Context, r project.Requirement) (probability, impact int, ok bool, err error)
}

// RiskConfig holds the tunables of the risk scorer.
type RiskConfig struct {
	Thresholds SeverityThresholds
	TopN       int
	// Posture share boundaries over High+Critical items.
	HighPostureShare     float64
	ElevatedPostureShare float64
}

// DefaultRiskConfig returns the standard risk scoring configuration.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		Thresholds:           DefaultSeverityThresholds(),
		TopN:                 5,
		HighPostureShare:     0.30,
		ElevatedPostureShare: 0.10,
	}
}

// Keyword groups flagged as risk signals in requirement text.
var (
	realtimeKeywords    = []string{"real-time", "realtime", "real time", "live", "gps", "stream"}
	aiKeywords          = []string{"ai", "machine learning", "ml", "recommendation"}
	paymentKeywords     = []string{"payment", "credit card", "stripe", "paypal", "billing"}
	integrationKeywords = []string{"api", "integration", "third-party", "vendor", "webhook"}
)

// AssessRisks scores every requirement on the 1-5 probability/impact scale,
// buckets severities, and aggregates the RAID-style posture. When src is
// non-nil it is consulted first; requirements it has no signals for use the
// deterministic derivation from category, priority, dependencies, and
// keyword flags.
func AssessRisks(ctx context.Context, brief project.Brief, src SignalSource, cfg RiskConfig) (RiskAssessment, error) {
	var out RiskAssessment

	if err := brief.Validate(); err != nil {
		return out, err
	}

	items := make([]RiskItem, 0, len(brief.Requirements))
	totalDeps := 0

	for _, r := range brief.Requirements {
		totalDeps += len(r.DependencyIDs)

		prob, impact := deriveSignals(r)
		if src != nil {
			p, i, ok, err := src.Signals(ctx, r)
			if err != nil {
				return out, err
			}
			if ok {
				prob, impact = clampSignal(p), clampSignal(i)
			}
		}

		score := prob * impact
		severity := cfg.Thresholds.Classify(score)
		items = append(items, RiskItem{
			RequirementID: r.ID,
			Probability:   prob,
			Impact:        impact,
			Score:         score,
			Severity:      severity,
			Mitigation:    defaultMitigation(severity),
			Owner:         defaultOwner(severity),
		})
	}

	out.Items = items
	out.Top = topRisks(items, cfg.TopN)
	out.Summary = summarize(items, totalDeps)
	out.Posture = posture(out.Summary.SevereShare, out.Summary.BySeverity, cfg)
	return out, nil
}

// deriveSignals maps declared requirement attributes onto the 1-5 scales.
func deriveSignals(r project.Requirement) (probability, impact int) {
	text := r.Text()

	prob := 2
	switch r.Category {
	case project.CategoryNonFunctional, project.CategoryConstraint:
		prob = 3
	}
	switch n := len(r.DependencyIDs); {
	case n >= 3:
		prob += 2
	case n >= 1:
		prob++
	}
	if containsAny(text, realtimeKeywords) || containsAny(text, aiKeywords) {
		prob++
	}

	impact = r.Priority.Weight() + 1
	if containsAny(text, paymentKeywords) || containsAny(text, integrationKeywords) {
		impact++
	}

	return clampSignal(prob), clampSignal(impact)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func clampSignal(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// topRisks returns the n highest-scoring items, ties broken by requirement ID
// ascending so the ordering is deterministic.
func topRisks(items []RiskItem, n int) []RiskItem {
	top := make([]RiskItem, len(items))
	copy(top, items)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score != top[j].Score {
			return top[i].Score > top[j].Score
		}
		return top[i].RequirementID < top[j].RequirementID
	})
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return top
}

func summarize(items []RiskItem, totalDeps int) RAIDSummary {
	summary := RAIDSummary{
		Total:        len(items),
		BySeverity:   make(map[Severity]int, 4),
		Dependencies: totalDeps,
	}
	severe := 0
	for _, item := range items {
		summary.BySeverity[item.Severity]++
		if item.Severity.IsSevere() {
			severe++
		}
	}
	if summary.Total > 0 {
		summary.SevereShare = float64(severe) / float64(summary.Total)
	}
	return summary
}

func posture(severeShare float64, bySeverity map[Severity]int, cfg RiskConfig) string {
	switch {
	case severeShare > cfg.HighPostureShare:
		return "High risk posture"
	case severeShare > cfg.ElevatedPostureShare:
		return "Elevated risk posture"
	case bySeverity[SeverityHigh]+bySeverity[SeverityCritical] > 0:
		return "Moderate risk posture"
	default:
		return "Low risk posture"
	}
}

func defaultMitigation(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Immediate mitigation required before committing to the plan."
	case SeverityHigh:
		return "Prepare a mitigation plan before execution starts."
	case SeverityMedium:
		return "Prepare a mitigation plan."
	default:
		return "Monitor periodically."
	}
}

func defaultOwner(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Project Sponsor"
	case SeverityHigh:
		return "Tech Lead"
	default:
		return "Project Manager"
	}
}
