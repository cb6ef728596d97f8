package timestep

import "testing"

func TestStepTypePredicates(t *testing.T) {
	first := New(First, 0, 1, nil, 0)
	if !first.First() || first.Mid() || first.Last() {
		t.Error("first step misreports its type")
	}

	mid := New(Mid, 0, 1, nil, 1)
	if mid.First() || !mid.Mid() || mid.Last() {
		t.Error("mid step misreports its type")
	}

	last := New(Last, 0, 1, nil, 2)
	if last.First() || last.Mid() || !last.Last() {
		t.Error("last step misreports its type")
	}
}

func TestEndType(t *testing.T) {
	step := New(Mid, 0, 1, nil, 1)
	if step.End() != NotEnded {
		t.Errorf("end type = %v, expected %v", step.End(), NotEnded)
	}

	step.StepType = Last
	step.SetEnd(TerminalStateReached)
	if step.End() != TerminalStateReached {
		t.Errorf("end type = %v, expected %v", step.End(),
			TerminalStateReached)
	}
}
