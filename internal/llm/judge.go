package llm

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"reqcast/internal/errs"
	"reqcast/internal/pipeline"
	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

//go:embed prompt/judge.md
var judgePromptTmpl string

var judgePrompt = template.Must(template.New("judge").Parse(judgePromptTmpl))

// Dimensions scored by the quality judge.
var judgeDimensions = []string{"feasibility", "completeness", "consistency", "actionability"}

// QualityJudge implements pipeline.Judge on top of a gollem LLM client with
// a JSON response schema, so the verdict is machine-parseable.
type QualityJudge struct {
	client gollem.LLMClient
}

// NewQualityJudge wires the judge to an LLM client.
func NewQualityJudge(client gollem.LLMClient) *QualityJudge {
	return &QualityJudge{client: client}
}

// judgeVerdict is the wire format of the judge response.
type judgeVerdict struct {
	QualityScore    float64            `json:"quality_score"`
	Feedback        string             `json:"feedback"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
}

func judgeSchema() *gollem.Parameter {
	dims := make(map[string]*gollem.Parameter, len(judgeDimensions))
	for _, d := range judgeDimensions {
		dims[d] = &gollem.Parameter{
			Type:        gollem.TypeNumber,
			Description: "Score of the " + d + " dimension, 0-10.",
			Required:    true,
		}
	}

	return &gollem.Parameter{
		Title:       "ForecastJudgment",
		Description: "Quality verdict over a scored forecast bundle",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"quality_score": {
				Type:        gollem.TypeNumber,
				Description: "Overall quality score in [0, 10].",
				Required:    true,
			},
			"feedback": {
				Type:        gollem.TypeString,
				Description: "Concrete, implementable improvement suggestions for the refiner.",
				Required:    true,
			},
			"dimension_scores": {
				Type:       gollem.TypeObject,
				Properties: dims,
				Required:   true,
			},
		},
	}
}

// Judge asks the model for a quality verdict over the bundle.
func (j *QualityJudge) Judge(ctx context.Context, reqs []project.Requirement, risks []scoring.RiskItem, scenarios []simulation.ScenarioResult) (pipeline.Judgment, error) {
	var judgment pipeline.Judgment

	session, err := j.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(judgeSchema()),
	)
	if err != nil {
		return judgment, goerr.Wrap(err, "failed to create judge session", goerr.T(errs.TagCollaborator))
	}

	prompt, err := renderPrompt(judgePrompt, map[string]string{
		"Requirements": mustJSON(reqs),
		"Risks":        mustJSON(risks),
		"Scenarios":    mustJSON(scenarios),
	})
	if err != nil {
		return judgment, err
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return judgment, goerr.Wrap(err, "judge generation failed", goerr.T(errs.TagCollaborator))
	}
	if len(resp.Texts) == 0 {
		return judgment, goerr.New("judge returned an empty response", goerr.T(errs.TagCollaborator))
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(resp.Texts[0]), &verdict); err != nil {
		return judgment, goerr.Wrap(err, "failed to parse judge verdict JSON",
			goerr.V("response", resp.Texts[0]), goerr.T(errs.TagCollaborator))
	}

	judgment.QualityScore = verdict.QualityScore
	judgment.Feedback = verdict.Feedback
	judgment.DimensionScores = verdict.DimensionScores
	return judgment, nil
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt template")
	}
	return buf.String(), nil
}

func mustJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(out)
}
