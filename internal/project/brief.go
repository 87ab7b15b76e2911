package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"reqcast/internal/errs"
)

// Metadata carries the project parameters that accompany a requirement set.
type Metadata struct {
	TeamSize           int     `json:"team_size" yaml:"team_size"`
	WorkingDaysPerWeek int     `json:"working_days_per_week" yaml:"working_days_per_week"`
	DeadlineWeeks      float64 `json:"deadline_weeks,omitempty" yaml:"deadline_weeks,omitempty"` // 0 = no deadline
}

// Validate checks metadata invariants.
func (m Metadata) Validate() error {
	if m.TeamSize <= 0 {
		return goerr.New("team_size must be positive", goerr.V("team_size", m.TeamSize), goerr.T(errs.TagInvalidInput))
	}
	if m.WorkingDaysPerWeek <= 0 {
		return goerr.New("working_days_per_week must be positive",
			goerr.V("working_days_per_week", m.WorkingDaysPerWeek), goerr.T(errs.TagInvalidInput))
	}
	if m.DeadlineWeeks < 0 {
		return goerr.New("deadline_weeks must not be negative",
			goerr.V("deadline_weeks", m.DeadlineWeeks), goerr.T(errs.TagInvalidInput))
	}
	return nil
}

// Brief is the ordered requirement set plus project metadata supplied by the
// ingestion collaborator. It is the sole input of a pipeline run.
type Brief struct {
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
	Metadata     Metadata      `json:"metadata" yaml:"metadata"`
}

// Validate checks the whole brief: non-empty requirement set, unique IDs,
// valid per-requirement fields and metadata. Dependency references to unknown
// IDs are tolerated; the dependency graph is not checked for cycles.
func (b Brief) Validate() error {
	if len(b.Requirements) == 0 {
		return goerr.New("requirement set must not be empty", goerr.T(errs.TagInvalidInput))
	}
	if err := b.Metadata.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(b.Requirements))
	for _, r := range b.Requirements {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return goerr.New("duplicate requirement ID", goerr.V("id", r.ID), goerr.T(errs.TagInvalidInput))
		}
		seen[r.ID] = true
	}
	return nil
}

// TotalEffort sums story points across the requirement set.
func (b Brief) TotalEffort() float64 {
	total := 0.0
	for _, r := range b.Requirements {
		total += r.StoryPoints
	}
	return total
}

// CountByCategory tallies requirements per category for the summary block.
func (b Brief) CountByCategory() map[Category]int {
	counts := make(map[Category]int, 4)
	for _, r := range b.Requirements {
		counts[r.Category]++
	}
	return counts
}

// LoadBrief reads a brief from a JSON or YAML file, chosen by extension,
// and validates it.
func LoadBrief(path string) (Brief, error) {
	var brief Brief

	data, err := os.ReadFile(path)
	if err != nil {
		return brief, goerr.Wrap(err, "failed to read brief file", goerr.V("path", path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &brief); err != nil {
			return brief, goerr.Wrap(err, "failed to parse YAML brief", goerr.V("path", path), goerr.T(errs.TagInvalidInput))
		}
	default:
		if err := json.Unmarshal(data, &brief); err != nil {
			return brief, goerr.Wrap(err, "failed to parse JSON brief", goerr.V("path", path), goerr.T(errs.TagInvalidInput))
		}
	}

	if err := brief.Validate(); err != nil {
		return brief, err
	}
	return brief, nil
}
