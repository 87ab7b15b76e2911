package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"reqcast/internal/errs"
	"reqcast/internal/project"
)

//go:embed prompt/refiner.md
var refinerPromptTmpl string

var refinerPrompt = template.Must(template.New("refiner").Parse(refinerPromptTmpl))

// Refiner implements pipeline.Refiner on top of a gollem LLM client. The core
// does not inspect the semantics of the edit; it only re-validates and
// re-scores the returned set.
type Refiner struct {
	client gollem.LLMClient
}

// NewRefiner wires the refiner to an LLM client.
func NewRefiner(client gollem.LLMClient) *Refiner {
	return &Refiner{client: client}
}

// wireRequirement keeps category/priority as raw strings so invalid model
// output is rejected through the enum constructors instead of silently
// coerced.
type wireRequirement struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	StoryPoints   float64  `json:"story_points"`
	DependencyIDs []string `json:"dependency_ids"`
}

func refinerSchema() *gollem.Parameter {
	requirement := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"id":           {Type: gollem.TypeString, Required: true},
			"title":        {Type: gollem.TypeString, Required: true},
			"description":  {Type: gollem.TypeString},
			"category":     {Type: gollem.TypeString, Description: "functional, non_functional, constraint, or policy", Required: true},
			"priority":     {Type: gollem.TypeString, Description: "low, medium, or high", Required: true},
			"story_points": {Type: gollem.TypeNumber, Description: "Non-negative effort estimate.", Required: true},
			"dependency_ids": {
				Type:  gollem.TypeArray,
				Items: &gollem.Parameter{Type: gollem.TypeString},
			},
		},
	}

	return &gollem.Parameter{
		Title:       "RefinedRequirements",
		Description: "Complete updated requirement set",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"requirements": {
				Type:     gollem.TypeArray,
				Items:    requirement,
				Required: true,
			},
		},
	}
}

// Refine asks the model for an updated requirement set addressing the
// feedback.
func (r *Refiner) Refine(ctx context.Context, reqs []project.Requirement, feedback string) ([]project.Requirement, error) {
	session, err := r.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(refinerSchema()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create refiner session", goerr.T(errs.TagCollaborator))
	}

	prompt, err := renderPrompt(refinerPrompt, map[string]string{
		"Requirements": mustJSON(reqs),
		"Feedback":     feedback,
	})
	if err != nil {
		return nil, err
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "refiner generation failed", goerr.T(errs.TagCollaborator))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("refiner returned an empty response", goerr.T(errs.TagCollaborator))
	}

	var wire struct {
		Requirements []wireRequirement `json:"requirements"`
	}
	if err := json.Unmarshal([]byte(resp.Texts[0]), &wire); err != nil {
		return nil, goerr.Wrap(err, "failed to parse refined requirements JSON",
			goerr.V("response", resp.Texts[0]), goerr.T(errs.TagCollaborator))
	}

	refined := make([]project.Requirement, 0, len(wire.Requirements))
	for _, w := range wire.Requirements {
		category, err := project.ParseCategory(w.Category)
		if err != nil {
			return nil, goerr.Wrap(err, "refiner produced invalid category", goerr.V("id", w.ID), goerr.T(errs.TagCollaborator))
		}
		priority, err := project.ParsePriority(w.Priority)
		if err != nil {
			return nil, goerr.Wrap(err, "refiner produced invalid priority", goerr.V("id", w.ID), goerr.T(errs.TagCollaborator))
		}
		refined = append(refined, project.Requirement{
			ID:            w.ID,
			Title:         w.Title,
			Description:   w.Description,
			Category:      category,
			Priority:      priority,
			StoryPoints:   w.StoryPoints,
			DependencyIDs: w.DependencyIDs,
		})
	}
	return refined, nil
}
