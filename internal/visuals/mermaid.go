package visuals

import (
	"fmt"
	"math"
	"strings"

	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

// GenerateSeverityPie creates a Mermaid pie chart of the risk severity
// distribution. Presentation-neutral text for the downstream consumer.
func GenerateSeverityPie(assessment scoring.RiskAssessment) string {
	if assessment.Summary.Total == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie showData\n")
	sb.WriteString("    title \"Risk Severity Distribution\"\n")

	// Fixed order keeps the chart deterministic across runs.
	for _, sev := range []scoring.Severity{scoring.SeverityLow, scoring.SeverityMedium, scoring.SeverityHigh, scoring.SeverityCritical} {
		if n := assessment.Summary.BySeverity[sev]; n > 0 {
			label := strings.ToUpper(string(sev[:1])) + string(sev[1:])
			sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", label, n))
		}
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateScenarioChart creates a Mermaid bar chart of the forecast scenarios
// against the baseline.
func GenerateScenarioChart(fc simulation.Forecast) string {
	if len(fc.Scenarios) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxY := fc.BaselineDays
	for _, s := range fc.Scenarios {
		labels = append(labels, fmt.Sprintf("\"%s (%s)\"", s.Case, s.Percentile))
		values = append(values, fmt.Sprintf("%.1f", s.DurationDays))
		if s.DurationDays > maxY {
			maxY = s.DurationDays
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Delivery Timeline Forecast\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))

	// Give breathing room above the worst case.
	sb.WriteString(fmt.Sprintf("    y-axis \"Duration (Days)\" 0 --> %d\n", int(math.Ceil(maxY*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(baselineSeries(fc.BaselineDays, len(values)), ", ")))
	sb.WriteString("```")
	return sb.String()
}

func baselineSeries(baseline float64, n int) []string {
	series := make([]string, n)
	for i := range series {
		series[i] = fmt.Sprintf("%.1f", baseline)
	}
	return series
}
