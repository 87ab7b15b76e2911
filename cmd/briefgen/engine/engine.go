// Package engine generates synthetic requirement briefs for demos and
// adversarial testing of the scoring and simulation pipeline.
package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"reqcast/internal/project"
)

// GeneratorConfig controls the synthetic brief shape.
type GeneratorConfig struct {
	Scenario string // "mild", "chaos", or "heavy"
	Count    int
	Seed     int64
	TeamSize int
}

var titles = []string{
	"User registration and login",
	"Role-based access control",
	"Real-time order tracking dashboard",
	"Payment provider integration",
	"Recommendation engine for catalog items",
	"Nightly data export to the warehouse",
	"Audit log retention",
	"Responsive mobile layout",
	"GDPR data deletion workflow",
	"Third-party shipping API integration",
	"Live chat support widget",
	"Search with autocomplete",
	"Invoice PDF generation",
	"Multi-currency billing",
	"Service uptime of 99.9%",
	"Page load under 2 seconds",
}

// Generate produces a deterministic synthetic brief for the given config.
func Generate(cfg GeneratorConfig) project.Brief {
	if cfg.Count <= 0 {
		cfg.Count = 12
	}
	if cfg.TeamSize <= 0 {
		cfg.TeamSize = 4
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Scenario knobs: share of constraint-ish records, dependency fan-out,
	// and story point spread.
	nfrShare := 0.2
	constraintShare := 0.1
	maxDeps := 1
	maxPoints := 8
	switch cfg.Scenario {
	case "chaos":
		nfrShare = 0.35
		constraintShare = 0.25
		maxDeps = 4
		maxPoints = 21
	case "heavy":
		cfg.Count *= 3
		maxDeps = 2
		maxPoints = 13
	}

	priorities := []project.Priority{project.PriorityLow, project.PriorityMedium, project.PriorityHigh}

	reqs := make([]project.Requirement, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		category := project.CategoryFunctional
		roll := rng.Float64()
		switch {
		case roll < constraintShare/2:
			category = project.CategoryPolicy
		case roll < constraintShare:
			category = project.CategoryConstraint
		case roll < constraintShare+nfrShare:
			category = project.CategoryNonFunctional
		}

		id := fmt.Sprintf("REQ-%03d", i+1)
		deps := make([]string, 0, maxDeps)
		if i > 0 {
			for d := rng.Intn(maxDeps + 1); d > 0 && len(deps) < i; d-- {
				deps = append(deps, fmt.Sprintf("REQ-%03d", rng.Intn(i)+1))
			}
		}

		reqs = append(reqs, project.Requirement{
			ID:            id,
			Title:         titles[rng.Intn(len(titles))],
			Category:      category,
			Priority:      priorities[rng.Intn(len(priorities))],
			StoryPoints:   float64(rng.Intn(maxPoints) + 1),
			DependencyIDs: deps,
		})
	}

	return project.Brief{
		Requirements: reqs,
		Metadata: project.Metadata{
			TeamSize:           cfg.TeamSize,
			WorkingDaysPerWeek: 5,
		},
	}
}

// Save writes the brief as indented JSON into outDir.
func Save(outDir, name string, brief project.Brief) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(outDir, name+".json"), data, 0644)
}
