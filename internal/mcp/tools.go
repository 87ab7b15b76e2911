package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// requirementSchema describes a single structured requirement record.
func requirementSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":           {Type: "string", Description: "Unique requirement ID, e.g. REQ-001"},
			"title":        {Type: "string"},
			"description":  {Type: "string"},
			"category":     {Type: "string", Enum: []any{"functional", "non_functional", "constraint", "policy"}},
			"priority":     {Type: "string", Enum: []any{"low", "medium", "high"}},
			"story_points": {Type: "number", Description: "Non-negative effort estimate"},
			"dependency_ids": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"id", "title", "category", "priority", "story_points"},
	}
}

func briefProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"requirements": {
			Type:        "array",
			Description: "Ordered structured requirement set",
			Items:       requirementSchema(),
		},
		"metadata": {
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"team_size":             {Type: "integer", Description: "Number of developers, > 0"},
				"working_days_per_week": {Type: "integer"},
				"deadline_weeks":        {Type: "number", Description: "Target deadline in weeks, 0 = none"},
			},
		},
	}
}

func briefSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: briefProperties(),
		Required:   []string{"requirements"},
	}
}

func forecastSchema() *jsonschema.Schema {
	props := briefProperties()
	props["trials"] = &jsonschema.Schema{Type: "integer", Description: "Monte Carlo trial count (default 800)"}
	props["seed"] = &jsonschema.Schema{Type: "integer", Description: "Random seed for reproducible forecasts (0 = wall clock)"}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"requirements"},
	}
}

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []interface{}{
			map[string]interface{}{
				"name":        "score_complexity",
				"description": "Compute the deterministic 0-10 complexity score of a requirement set with its sub-metric breakdown.",
				"inputSchema": briefSchema(),
			},
			map[string]interface{}{
				"name":        "assess_risks",
				"description": "Score every requirement on the 1-5 probability/impact scale, bucket severities, and report the overall risk posture with a RAID summary.",
				"inputSchema": briefSchema(),
			},
			map[string]interface{}{
				"name":        "forecast_timeline",
				"description": "Estimate the baseline duration and run a Monte Carlo simulation producing P10/P50/P90 delivery scenarios.",
				"inputSchema": forecastSchema(),
			},
			map[string]interface{}{
				"name":        "run_pipeline",
				"description": "Run the full quality-gated refinement loop: score, simulate, judge, refine, repeat until the quality gate passes or the iteration budget is exhausted. Requires a configured LLM.",
				"inputSchema": forecastSchema(),
			},
		},
	}
}
