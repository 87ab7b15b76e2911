package project

import (
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"reqcast/internal/errs"
)

// Category classifies what kind of demand a requirement represents.
type Category string

const (
	CategoryFunctional    Category = "functional"
	CategoryNonFunctional Category = "non_functional"
	CategoryConstraint    Category = "constraint"
	CategoryPolicy        Category = "policy"
)

// ParseCategory converts a raw string into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryFunctional:
		return CategoryFunctional, nil
	case CategoryNonFunctional:
		return CategoryNonFunctional, nil
	case CategoryConstraint:
		return CategoryConstraint, nil
	case CategoryPolicy:
		return CategoryPolicy, nil
	}
	return "", goerr.New("unknown requirement category", goerr.V("category", s), goerr.T(errs.TagInvalidInput))
}

// Priority expresses how important a requirement is to the project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts a raw string into a Priority, rejecting unknown values.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	}
	return "", goerr.New("unknown requirement priority", goerr.V("priority", s), goerr.T(errs.TagInvalidInput))
}

// Weight maps the priority onto a 1..3 scale used by scoring.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Requirement is a single structured project requirement.
// Records are owned by the pipeline run that created them; only the refiner
// collaborator replaces them wholesale, nothing mutates fields in place.
type Requirement struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category      Category `json:"category" yaml:"category"`
	Priority      Priority `json:"priority" yaml:"priority"`
	StoryPoints   float64  `json:"story_points" yaml:"story_points"`
	DependencyIDs []string `json:"dependency_ids,omitempty" yaml:"dependency_ids,omitempty"`
}

// Validate checks the structural invariants of a single requirement.
func (r Requirement) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return goerr.New("requirement ID must not be empty", goerr.T(errs.TagInvalidInput))
	}
	if _, err := ParseCategory(string(r.Category)); err != nil {
		return goerr.Wrap(err, "requirement has invalid category", goerr.V("id", r.ID))
	}
	if _, err := ParsePriority(string(r.Priority)); err != nil {
		return goerr.Wrap(err, "requirement has invalid priority", goerr.V("id", r.ID))
	}
	if r.StoryPoints < 0 || math.IsNaN(r.StoryPoints) || math.IsInf(r.StoryPoints, 0) {
		return goerr.New("story points must be a finite non-negative number",
			goerr.V("id", r.ID), goerr.V("story_points", r.StoryPoints), goerr.T(errs.TagInvalidInput))
	}
	return nil
}

// Text returns the searchable text of the requirement for keyword scanning.
func (r Requirement) Text() string {
	return strings.ToLower(r.Title + " " + r.Description)
}
