package furniture

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewScriptedValidates(t *testing.T) {
	if _, err := NewScripted(2, []Frame{scene{}.frame()}); err == nil {
		t.Error("expected an error for a control dimension below 3")
	}
	if _, err := NewScripted(testNu, nil); err == nil {
		t.Error("expected an error for an empty trace")
	}

	bad := scene{}.frame()
	bad.Pos["leg"] = []float64{1, 2}
	if _, err := NewScripted(testNu, []Frame{bad}); err == nil {
		t.Error("expected an error for a 2-component position")
	}
}

func TestScriptedReplaysFrames(t *testing.T) {
	physics, err := NewScripted(testNu, []Frame{
		scene{eefPos: []float64{0, 0, 0.3}}.frame(),
		scene{eefPos: []float64{0, 0, 0.2}}.frame(),
	})
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}

	ctrl := mat.NewVecDense(testNu, nil)

	pos, err := physics.Pos(SiteGripTip)
	if err != nil {
		t.Fatalf("could not read position: %v", err)
	}
	if pos.AtVec(2) != 0.3 {
		t.Errorf("initial z = %v, expected 0.3", pos.AtVec(2))
	}

	if err := physics.Step(ctrl); err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if pos, _ = physics.Pos(SiteGripTip); pos.AtVec(2) != 0.2 {
		t.Errorf("z after step = %v, expected 0.2", pos.AtVec(2))
	}

	// the final frame is held once the trace is exhausted
	if err := physics.Step(ctrl); err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if pos, _ = physics.Pos(SiteGripTip); pos.AtVec(2) != 0.2 {
		t.Errorf("z past the trace end = %v, expected 0.2", pos.AtVec(2))
	}

	if err := physics.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}
	if pos, _ = physics.Pos(SiteGripTip); pos.AtVec(2) != 0.3 {
		t.Errorf("z after reset = %v, expected 0.3", pos.AtVec(2))
	}
}

func TestScriptedRejectsBadControlAndNames(t *testing.T) {
	physics, err := NewScripted(testNu, []Frame{scene{}.frame()})
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}

	if err := physics.Step(mat.NewVecDense(testNu+1, nil)); err == nil {
		t.Error("expected an error for a mis-sized control vector")
	}
	if _, err := physics.Pos("no_such_site"); err == nil {
		t.Error("expected an error for an unknown site")
	}
	if _, err := physics.UpVector("no_such_site"); err == nil {
		t.Error("expected an error for an unknown site")
	}
	if _, _, err := physics.FingerContact("no_such_part"); err == nil {
		t.Error("expected an error for an unknown part")
	}
}
