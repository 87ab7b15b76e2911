// Package llm provides gollem-backed implementations of the pipeline's
// external collaborators (quality judge and refiner).
package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
)

// NewGeminiClient creates a Gemini-backed LLM client. Returns nil when
// projectID is empty, which disables the judged pipeline (the deterministic
// analysis tools still work).
func NewGeminiClient(ctx context.Context, projectID, location string) (gollem.LLMClient, error) {
	if projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, projectID, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client", goerr.V("projectID", projectID))
	}
	return client, nil
}
