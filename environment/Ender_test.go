package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/timestep"
)

func TestStepLimitEnd(t *testing.T) {
	ender := NewStepLimit(2)

	step := timestep.New(timestep.Mid, 0, 1, nil, 1)
	if ender.End(&step) {
		t.Error("episode ended before the step limit")
	}
	if step.End() != timestep.NotEnded {
		t.Errorf("end type = %v, expected %v", step.End(), timestep.NotEnded)
	}

	step = timestep.New(timestep.Mid, 0, 1, nil, 2)
	if !ender.End(&step) {
		t.Error("episode did not end at the step limit")
	}
	if !step.Last() {
		t.Error("step type not set to Last at the step limit")
	}
	if step.End() != timestep.Timeout {
		t.Errorf("end type = %v, expected %v", step.End(), timestep.Timeout)
	}
}

func TestFunctionEnderEnd(t *testing.T) {
	// end once the first observation component goes negative
	ender := NewFunctionEnder(func(obs *mat.VecDense) bool {
		return obs.AtVec(0) < 0
	}, timestep.Failure)

	obs := mat.NewVecDense(1, []float64{1})
	step := timestep.New(timestep.Mid, 0, 1, obs, 1)
	if ender.End(&step) {
		t.Error("episode ended on a non-terminal observation")
	}

	obs = mat.NewVecDense(1, []float64{-1})
	step = timestep.New(timestep.Mid, 0, 1, obs, 2)
	if !ender.End(&step) {
		t.Error("episode did not end on a terminal observation")
	}
	if !step.Last() || step.End() != timestep.Failure {
		t.Errorf("step type %v end type %v, expected Last and %v",
			step.StepType, step.End(), timestep.Failure)
	}
}
