package scoring

import (
	"fmt"
	"math"
	"testing"

	"reqcast/internal/errs"
	"reqcast/internal/project"
)

func testBrief(n int) project.Brief {
	reqs := make([]project.Requirement, 0, n)
	for i := 0; i < n; i++ {
		reqs = append(reqs, project.Requirement{
			ID:          fmt.Sprintf("REQ-%03d", i+1),
			Title:       "Requirement",
			Category:    project.CategoryFunctional,
			Priority:    project.PriorityMedium,
			StoryPoints: 3,
		})
	}
	return project.Brief{
		Requirements: reqs,
		Metadata:     project.Metadata{TeamSize: 4, WorkingDaysPerWeek: 5},
	}
}

func TestScoreComplexity_Range(t *testing.T) {
	for _, n := range []int{1, 5, 40, 200} {
		score, err := ScoreComplexity(testBrief(n), DefaultComplexityConfig())
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if score.Value < 0 || score.Value > 10 {
			t.Errorf("n=%d: value %f out of [0,10]", n, score.Value)
		}
		for name, v := range score.SubMetrics {
			if v < 0 || v > 10 {
				t.Errorf("n=%d: sub-metric %s = %f out of [0,10]", n, name, v)
			}
		}
	}
}

func TestScoreComplexity_Deterministic(t *testing.T) {
	brief := testBrief(12)
	brief.Requirements[3].Category = project.CategoryNonFunctional
	brief.Requirements[5].DependencyIDs = []string{"REQ-001", "REQ-002"}

	first, err := ScoreComplexity(brief, DefaultComplexityConfig())
	if err != nil {
		t.Fatal(err)
	}
	second, err := ScoreComplexity(brief, DefaultComplexityConfig())
	if err != nil {
		t.Fatal(err)
	}
	if first.Value != second.Value {
		t.Errorf("same input produced different values: %f vs %f", first.Value, second.Value)
	}
	for name, v := range first.SubMetrics {
		if second.SubMetrics[name] != v {
			t.Errorf("sub-metric %s differs: %f vs %f", name, v, second.SubMetrics[name])
		}
	}
}

func TestScoreComplexity_Saturation(t *testing.T) {
	// 80 requirements is double the volume threshold; the volume metric must
	// sit exactly at 10, not beyond.
	score, err := ScoreComplexity(testBrief(80), DefaultComplexityConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := score.SubMetrics[MetricRequirementVolume]; got != 10 {
		t.Errorf("volume metric = %f, want 10 (saturated)", got)
	}
}

func TestScoreComplexity_KnownValue(t *testing.T) {
	// 8 functional medium-priority requirements, 3 points each, no deps:
	// volume 8/40*10 = 2, nfr 0, effort 24/200*10 = 1.2, density 0,
	// constraint 0. Equal weights: (2+0+1.2+0+0)/5 = 0.64.
	score, err := ScoreComplexity(testBrief(8), DefaultComplexityConfig())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score.Value-0.64) > 1e-9 {
		t.Errorf("value = %f, want 0.64", score.Value)
	}
	if score.Level != "Low" {
		t.Errorf("level = %q, want Low", score.Level)
	}
}

func TestScoreComplexity_Levels(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, "Low"},
		{3.99, "Low"},
		{4, "Medium"},
		{6.99, "Medium"},
		{7, "High"},
		{10, "High"},
	}
	for _, tc := range cases {
		if got := complexityLevel(tc.value); got != tc.want {
			t.Errorf("complexityLevel(%f) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestScoreComplexity_InvalidInput(t *testing.T) {
	cfg := DefaultComplexityConfig()

	empty := project.Brief{Metadata: project.Metadata{TeamSize: 4, WorkingDaysPerWeek: 5}}
	if _, err := ScoreComplexity(empty, cfg); err == nil || !errs.IsInvalidInput(err) {
		t.Errorf("empty set: expected invalid-input error, got %v", err)
	}

	noTeam := testBrief(3)
	noTeam.Metadata.TeamSize = 0
	if _, err := ScoreComplexity(noTeam, cfg); err == nil || !errs.IsInvalidInput(err) {
		t.Errorf("zero team: expected invalid-input error, got %v", err)
	}
}

func TestComplexityConfig_Validate(t *testing.T) {
	bad := DefaultComplexityConfig()
	bad.Weights.Volume = 0.5
	if err := bad.Validate(); err == nil || !errs.IsInvalidInput(err) {
		t.Errorf("weights not summing to 1: expected invalid-input error, got %v", err)
	}

	zeroThresh := DefaultComplexityConfig()
	zeroThresh.EffortThreshold = 0
	if err := zeroThresh.Validate(); err == nil || !errs.IsInvalidInput(err) {
		t.Errorf("zero threshold: expected invalid-input error, got %v", err)
	}
}
