// Package errs defines the error tags shared across the analysis pipeline.
package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// TagInvalidInput marks errors raised by input validation before any
	// simulation work starts. Surfaced directly to the caller.
	TagInvalidInput = goerr.NewTag("invalid_input")

	// TagSimulation marks failures inside the Monte Carlo engine, e.g. a
	// distribution spec that produces too many non-finite trials.
	TagSimulation = goerr.NewTag("simulation_failure")

	// TagCollaborator marks unreachable or timed-out external collaborators
	// (quality judge, refiner, signal source).
	TagCollaborator = goerr.NewTag("collaborator_failure")
)

// IsInvalidInput reports whether err carries the invalid-input tag.
func IsInvalidInput(err error) bool {
	return goerr.HasTag(err, TagInvalidInput)
}

// IsSimulation reports whether err carries the simulation-failure tag.
func IsSimulation(err error) bool {
	return goerr.HasTag(err, TagSimulation)
}

// IsCollaborator reports whether err carries the collaborator-failure tag.
func IsCollaborator(err error) bool {
	return goerr.HasTag(err, TagCollaborator)
}
