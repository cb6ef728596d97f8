package furniture

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// newTestEnv builds a Furniture environment over a scripted trace with
// the given episode cutoff
func newTestEnv(t *testing.T, cutoff int, scenes ...scene) (*Furniture,
	ts.TimeStep) {
	t.Helper()

	frames := make([]Frame, len(scenes))
	for i, s := range scenes {
		frames[i] = s.frame()
	}
	physics, err := NewScripted(testNu, frames)
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}

	task, err := NewAssemble(testRecipe(), DefaultConfig(), cutoff, nil)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}

	env, first, err := New(physics, task, nil, 0.99)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env, first
}

func TestNewRejectsInvalidDiscount(t *testing.T) {
	physics, err := NewScripted(testNu, []Frame{scene{}.frame()})
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}
	task, err := NewAssemble(testRecipe(), DefaultConfig(), testCutoff, nil)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}

	if _, _, err := New(physics, task, nil, 1.5); err == nil {
		t.Error("expected an error for a discount outside [0, 1]")
	}
}

func TestResetReturnsFirstStep(t *testing.T) {
	env, first := newTestEnv(t, testCutoff, scene{}, scene{})

	if !first.First() {
		t.Error("expected a First timestep from construction")
	}
	if first.Observation.Len() != ObsDim {
		t.Errorf("observation length = %v, expected %v",
			first.Observation.Len(), ObsDim)
	}

	step := env.Reset()
	if !step.First() || step.Number != 0 {
		t.Errorf("reset returned step type %v number %v", step.StepType,
			step.Number)
	}
}

func TestStepLimitTimesOut(t *testing.T) {
	env, _ := newTestEnv(t, 3, scene{}, scene{})
	ac := mat.NewVecDense(testNu, nil)
	ac.SetVec(testNu-2, -1)
	ac.SetVec(testNu-1, -1)

	var step ts.TimeStep
	var last bool
	for i := 0; i < 3; i++ {
		step, last = env.Step(ac)
		if i < 2 && last {
			t.Fatalf("episode ended after %v steps, cutoff is 3", i+1)
		}
	}

	if !last || !step.Last() {
		t.Fatal("expected the episode to end at the cutoff")
	}
	if step.End() != ts.Timeout {
		t.Errorf("end type = %v, expected %v", step.End(), ts.Timeout)
	}

	// the final absolute phase is reported for progress tracking
	if phase, ok := env.Info()["phase"]; !ok || phase != 0 {
		t.Errorf("info[phase] = %v (present: %v), expected 0", phase, ok)
	}
}

func TestStepSuccessEndsWithTerminalState(t *testing.T) {
	env, _ := newTestEnv(t, testCutoff,
		scene{contact: true},
		scene{contact: true, connected: true},
	)
	env.Assemble.phase = MoveLegFine

	step, last := env.Step(action(1, 1))

	if !last || !step.Last() {
		t.Fatal("expected the episode to end on the final connection")
	}
	if step.End() != ts.TerminalStateReached {
		t.Errorf("end type = %v, expected %v", step.End(),
			ts.TerminalStateReached)
	}
}

func TestStepFailureEndsEpisode(t *testing.T) {
	env, _ := newTestEnv(t, testCutoff,
		scene{contact: true},
		scene{contact: false},
	)
	env.Assemble.phase = LiftLeg

	step, last := env.Step(action(1, -1))

	if !last || !step.Last() {
		t.Fatal("expected the episode to end on the drop")
	}
	if step.End() != ts.Failure {
		t.Errorf("end type = %v, expected %v", step.End(), ts.Failure)
	}
	if phase, ok := env.Info()["phase"]; !ok || phase != float64(LiftLeg) {
		t.Errorf("info[phase] = %v (present: %v), expected %v", phase, ok,
			float64(LiftLeg))
	}
}

func TestResetRestartsEpisode(t *testing.T) {
	env, _ := newTestEnv(t, testCutoff,
		scene{contact: true},
		scene{contact: false},
	)
	env.Assemble.phase = LiftLeg

	if _, last := env.Step(action(1, -1)); !last {
		t.Fatal("expected the episode to end on the drop")
	}

	step := env.Reset()
	if !step.First() {
		t.Error("expected a First timestep after reset")
	}
	if env.Phase() != MoveEEFAboveLeg {
		t.Errorf("phase = %v after reset, expected %v", env.Phase(),
			MoveEEFAboveLeg)
	}
	if env.Subtask() != 0 {
		t.Errorf("subtask = %v after reset, expected 0", env.Subtask())
	}
}

func TestSpecs(t *testing.T) {
	env, _ := newTestEnv(t, testCutoff, scene{}, scene{})

	if got := env.ObservationSpec().Shape.Len(); got != ObsDim {
		t.Errorf("observation spec length = %v, expected %v", got, ObsDim)
	}

	actionSpec := env.ActionSpec()
	if got := actionSpec.Shape.Len(); got != testNu {
		t.Errorf("action spec length = %v, expected %v", got, testNu)
	}
	if actionSpec.LowerBound.AtVec(0) != -1 ||
		actionSpec.UpperBound.AtVec(0) != 1 {
		t.Errorf("action bounds = [%v, %v], expected [-1, 1]",
			actionSpec.LowerBound.AtVec(0), actionSpec.UpperBound.AtVec(0))
	}

	if got := env.DiscountSpec().UpperBound.AtVec(0); got != 0.99 {
		t.Errorf("discount = %v, expected 0.99", got)
	}
}
