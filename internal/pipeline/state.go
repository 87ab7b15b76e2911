package pipeline

// Status enumerates the states of the validation loop.
type Status string

const (
	StatusRunning              Status = "running"
	StatusPassed               Status = "passed"
	StatusMaxIterationsReached Status = "max_iterations_reached"
	StatusFailed               Status = "failed"
)

// LoopState tracks the validation loop. Iteration is 0-based: with
// max_iterations = 3 the loop performs judgments at iterations 0, 1, 2.
type LoopState struct {
	Iteration    int      `json:"iteration"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	Status       Status   `json:"status"`
}

// decision is the outcome of one quality gate evaluation.
type decision int

const (
	decidePass decision = iota
	decideStop
	decideRefine
)

// gate is the quality-gate transition function. It never allows more than
// maxIterations judgment cycles: either the score passes, or the iteration
// budget is exhausted, or the loop refines and re-enters.
func gate(quality float64, iteration, maxIterations int, threshold float64) decision {
	if quality >= threshold && iteration < maxIterations {
		return decidePass
	}
	if iteration+1 >= maxIterations {
		return decideStop
	}
	return decideRefine
}
