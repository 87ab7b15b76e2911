package project

import (
	"os"
	"path/filepath"
	"testing"

	"reqcast/internal/errs"
)

func sampleBrief() Brief {
	return Brief{
		Requirements: []Requirement{
			{ID: "REQ-001", Title: "User login", Category: CategoryFunctional, Priority: PriorityHigh, StoryPoints: 5},
			{ID: "REQ-002", Title: "Audit log", Category: CategoryPolicy, Priority: PriorityMedium, StoryPoints: 3, DependencyIDs: []string{"REQ-001"}},
		},
		Metadata: Metadata{TeamSize: 4, WorkingDaysPerWeek: 5},
	}
}

func TestBriefValidate(t *testing.T) {
	if err := sampleBrief().Validate(); err != nil {
		t.Fatalf("valid brief rejected: %v", err)
	}

	t.Run("empty requirement set", func(t *testing.T) {
		b := sampleBrief()
		b.Requirements = nil
		if err := b.Validate(); err == nil || !errs.IsInvalidInput(err) {
			t.Errorf("expected invalid-input error, got %v", err)
		}
	})

	t.Run("duplicate IDs", func(t *testing.T) {
		b := sampleBrief()
		b.Requirements[1].ID = "REQ-001"
		if err := b.Validate(); err == nil || !errs.IsInvalidInput(err) {
			t.Errorf("expected invalid-input error, got %v", err)
		}
	})

	t.Run("zero team size", func(t *testing.T) {
		b := sampleBrief()
		b.Metadata.TeamSize = 0
		if err := b.Validate(); err == nil || !errs.IsInvalidInput(err) {
			t.Errorf("expected invalid-input error, got %v", err)
		}
	})

	t.Run("unknown dependency reference tolerated", func(t *testing.T) {
		b := sampleBrief()
		b.Requirements[0].DependencyIDs = []string{"REQ-999"}
		if err := b.Validate(); err != nil {
			t.Errorf("unknown dependency reference should be tolerated, got %v", err)
		}
	})
}

func TestBriefAggregates(t *testing.T) {
	b := sampleBrief()

	if got := b.TotalEffort(); got != 8 {
		t.Errorf("TotalEffort() = %f, want 8", got)
	}

	counts := b.CountByCategory()
	if counts[CategoryFunctional] != 1 || counts[CategoryPolicy] != 1 {
		t.Errorf("CountByCategory() = %v", counts)
	}
}

func TestLoadBrief_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.json")
	data := `{
		"requirements": [
			{"id": "REQ-001", "title": "User login", "category": "functional", "priority": "high", "story_points": 5}
		],
		"metadata": {"team_size": 3, "working_days_per_week": 5}
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBrief(path)
	if err != nil {
		t.Fatalf("LoadBrief failed: %v", err)
	}
	if len(brief.Requirements) != 1 || brief.Requirements[0].ID != "REQ-001" {
		t.Errorf("unexpected brief: %+v", brief)
	}
	if brief.Metadata.TeamSize != 3 {
		t.Errorf("team_size = %d, want 3", brief.Metadata.TeamSize)
	}
}

func TestLoadBrief_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.yaml")
	data := `requirements:
  - id: REQ-001
    title: Payment integration
    category: functional
    priority: high
    story_points: 8
  - id: REQ-002
    title: Service uptime of 99.9%
    category: non_functional
    priority: medium
    story_points: 3
metadata:
  team_size: 5
  working_days_per_week: 5
  deadline_weeks: 6
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	brief, err := LoadBrief(path)
	if err != nil {
		t.Fatalf("LoadBrief failed: %v", err)
	}
	if len(brief.Requirements) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(brief.Requirements))
	}
	if brief.Requirements[1].Category != CategoryNonFunctional {
		t.Errorf("category = %q, want non_functional", brief.Requirements[1].Category)
	}
	if brief.Metadata.DeadlineWeeks != 6 {
		t.Errorf("deadline_weeks = %f, want 6", brief.Metadata.DeadlineWeeks)
	}
}

func TestLoadBrief_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBrief(path); err == nil {
		t.Error("expected parse error, got nil")
	}

	if _, err := LoadBrief(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected read error for missing file, got nil")
	}
}
