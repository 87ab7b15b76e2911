package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"reqcast/internal/errs"
	"reqcast/internal/project"
	"reqcast/internal/scoring"
	"reqcast/internal/simulation"
)

// scriptedJudge returns a fixed score sequence, one score per call.
type scriptedJudge struct {
	scores []float64
	calls  int
	err    error
}

func (j *scriptedJudge) Judge(_ context.Context, _ []project.Requirement, _ []scoring.RiskItem, _ []simulation.ScenarioResult) (Judgment, error) {
	if j.err != nil {
		return Judgment{}, j.err
	}
	if j.calls >= len(j.scores) {
		return Judgment{}, fmt.Errorf("judge called %d times, scripted for %d", j.calls+1, len(j.scores))
	}
	score := j.scores[j.calls]
	j.calls++
	return Judgment{QualityScore: score, Feedback: "tighten acceptance criteria"}, nil
}

// scriptedRefiner appends one requirement per call, or returns a canned set.
type scriptedRefiner struct {
	calls   int
	err     error
	returns []project.Requirement // nil = echo input plus a marker requirement
}

func (r *scriptedRefiner) Refine(_ context.Context, reqs []project.Requirement, _ string) ([]project.Requirement, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.returns != nil {
		return r.returns, nil
	}
	out := make([]project.Requirement, len(reqs))
	copy(out, reqs)
	out = append(out, project.Requirement{
		ID:          fmt.Sprintf("REQ-R%02d", r.calls),
		Title:       "Refined acceptance criteria",
		Category:    project.CategoryFunctional,
		Priority:    project.PriorityMedium,
		StoryPoints: 2,
	})
	return out, nil
}

func controllerBrief() project.Brief {
	return project.Brief{
		Requirements: []project.Requirement{
			{ID: "REQ-001", Title: "User login", Category: project.CategoryFunctional, Priority: project.PriorityHigh, StoryPoints: 5},
			{ID: "REQ-002", Title: "Audit log retention", Category: project.CategoryPolicy, Priority: project.PriorityMedium, StoryPoints: 3},
		},
		Metadata: project.Metadata{TeamSize: 4, WorkingDaysPerWeek: 5},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Simulation.Trials = 100
	opts.Simulation.Seed = 42
	return opts
}

func TestController_PassesAfterRefinement(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{5, 6, 8}}
	refiner := &scriptedRefiner{}
	c := NewController(testOptions(), judge, refiner, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}

	if bundle.Loop.Status != StatusPassed {
		t.Errorf("status = %q, want passed", bundle.Loop.Status)
	}
	if judge.calls != 3 {
		t.Errorf("judge called %d times, want 3", judge.calls)
	}
	if refiner.calls != 2 {
		t.Errorf("refiner called %d times, want 2 (no refinement after pass)", refiner.calls)
	}
	if bundle.Loop.Iteration != 2 {
		t.Errorf("final iteration = %d, want 2", bundle.Loop.Iteration)
	}
	if len(bundle.Judgments) != 3 {
		t.Errorf("judgment history = %d entries, want 3", len(bundle.Judgments))
	}
	if bundle.Loop.QualityScore == nil || *bundle.Loop.QualityScore != 8 {
		t.Errorf("final quality score = %v, want 8", bundle.Loop.QualityScore)
	}
	if len(bundle.Brief.Requirements) != 4 {
		t.Errorf("refined brief has %d requirements, want 4", len(bundle.Brief.Requirements))
	}
	if bundle.Summary.Status != StatusPassed || bundle.Summary.Iterations != 3 {
		t.Errorf("summary = %+v", bundle.Summary)
	}
	if bundle.RunID == "" {
		t.Error("bundle has no run ID")
	}
}

func TestController_MaxIterationsReached(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{2, 3, 4}}
	refiner := &scriptedRefiner{}
	c := NewController(testOptions(), judge, refiner, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}

	if bundle.Loop.Status != StatusMaxIterationsReached {
		t.Errorf("status = %q, want max_iterations_reached", bundle.Loop.Status)
	}
	if !bundle.BelowThreshold {
		t.Error("bundle not tagged below threshold")
	}
	if judge.calls != 3 {
		t.Errorf("judge called %d times, want exactly 3", judge.calls)
	}
	if refiner.calls != 2 {
		t.Errorf("refiner called %d times, want 2 (no refinement after the final judgment)", refiner.calls)
	}
}

func TestController_PassesFirstTry(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{9}}
	refiner := &scriptedRefiner{}
	c := NewController(testOptions(), judge, refiner, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}

	if bundle.Loop.Status != StatusPassed {
		t.Errorf("status = %q, want passed", bundle.Loop.Status)
	}
	if refiner.calls != 0 {
		t.Errorf("refiner called %d times, want 0", refiner.calls)
	}
	if len(bundle.Brief.Requirements) != 2 {
		t.Error("brief mutated on a first-try pass")
	}
}

func TestController_JudgeFailure(t *testing.T) {
	judge := &scriptedJudge{err: errors.New("model endpoint unreachable")}
	c := NewController(testOptions(), judge, &scriptedRefiner{}, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatalf("collaborator failure must not surface as a Go error, got %v", err)
	}

	if bundle.Loop.Status != StatusFailed {
		t.Errorf("status = %q, want failed", bundle.Loop.Status)
	}
	if !bundle.Unvalidated {
		t.Error("bundle not tagged unvalidated")
	}
	// The scoring results computed before the judge call are still delivered.
	if bundle.Complexity.Level == "" {
		t.Error("bundle lost the computed complexity score")
	}
	if len(bundle.Warnings) == 0 {
		t.Error("expected a warning describing the failure")
	}
}

func TestController_RefinerFailure(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{5}}
	refiner := &scriptedRefiner{err: errors.New("model endpoint unreachable")}
	c := NewController(testOptions(), judge, refiner, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Loop.Status != StatusFailed || !bundle.Unvalidated {
		t.Errorf("status = %q, unvalidated = %v; want failed/unvalidated", bundle.Loop.Status, bundle.Unvalidated)
	}
}

func TestController_RefinerReturnsInvalidSet(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{5}}
	refiner := &scriptedRefiner{returns: []project.Requirement{
		{ID: "", Title: "broken", Category: project.CategoryFunctional, Priority: project.PriorityLow, StoryPoints: 1},
	}}
	c := NewController(testOptions(), judge, refiner, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Loop.Status != StatusFailed || !bundle.Unvalidated {
		t.Errorf("status = %q, unvalidated = %v; want failed/unvalidated", bundle.Loop.Status, bundle.Unvalidated)
	}
	// The last good brief is kept, not the invalid refinement.
	if len(bundle.Brief.Requirements) != 2 {
		t.Errorf("bundle brief has %d requirements, want the original 2", len(bundle.Brief.Requirements))
	}
}

func TestController_MissingRefiner(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{5}}
	c := NewController(testOptions(), judge, nil, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Loop.Status != StatusFailed || !bundle.Unvalidated {
		t.Errorf("status = %q, unvalidated = %v; want failed/unvalidated", bundle.Loop.Status, bundle.Unvalidated)
	}
}

func TestController_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	judge := &scriptedJudge{scores: []float64{9}}
	c := NewController(testOptions(), judge, &scriptedRefiner{}, nil)

	bundle, err := c.Run(ctx, controllerBrief())
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Loop.Status != StatusFailed {
		t.Errorf("status = %q, want failed", bundle.Loop.Status)
	}
	if !bundle.Incomplete {
		t.Error("bundle not tagged incomplete")
	}
	if judge.calls != 0 {
		t.Errorf("judge called %d times after cancellation, want 0", judge.calls)
	}
}

func TestController_InvalidBrief(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{9}}
	c := NewController(testOptions(), judge, &scriptedRefiner{}, nil)

	_, err := c.Run(context.Background(), project.Brief{})
	if err == nil {
		t.Fatal("expected invalid-input error")
	}
	if !errs.IsInvalidInput(err) {
		t.Errorf("expected invalid-input tag, got %v", err)
	}
}

func TestController_MissingJudge(t *testing.T) {
	c := NewController(testOptions(), nil, &scriptedRefiner{}, nil)

	_, err := c.Run(context.Background(), controllerBrief())
	if err == nil || !errs.IsInvalidInput(err) {
		t.Errorf("expected invalid-input error for missing judge, got %v", err)
	}
}

func TestController_ClampsJudgeScore(t *testing.T) {
	judge := &scriptedJudge{scores: []float64{42}}
	c := NewController(testOptions(), judge, &scriptedRefiner{}, nil)

	bundle, err := c.Run(context.Background(), controllerBrief())
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Loop.Status != StatusPassed {
		t.Errorf("status = %q, want passed", bundle.Loop.Status)
	}
	if *bundle.Loop.QualityScore != 10 {
		t.Errorf("score = %f, want clamped to 10", *bundle.Loop.QualityScore)
	}
}
