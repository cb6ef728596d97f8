// Package furniture implements the dense-reward furniture assembly
// manipulation task: a multi-phase reward state machine that drives an
// articulated end effector to move, align, and connect parts described
// by a recipe. The physics simulation is an external collaborator
// accessed through the narrow Physics interface.
package furniture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/environment"
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// ObsDim is the length of the observation vector: end-effector tip
// position, the moving site's position and orientation vectors, the
// target site's position and orientation vectors, and the touch flag
const ObsDim = 22

// Furniture wraps a Physics backend and an Assemble task into an
// environment. Exactly one reward computation occurs per Step; all
// mutable task state is owned by this instance.
type Furniture struct {
	*Assemble

	physics  Physics
	sampler  *PlacementSampler // may be nil
	discount float64

	lastStep ts.TimeStep
	lastInfo Info
}

// New creates a Furniture environment from a physics backend and an
// assembly task, registering the task with the backend and resetting
// to a first timestep. The sampler may be nil, in which case parts
// start wherever the backend puts them.
func New(p Physics, task *Assemble, sampler *PlacementSampler,
	discount float64) (*Furniture, ts.TimeStep, error) {
	if discount < 0 || discount > 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: discount must be in "+
			"[0, 1], got %v", discount)
	}
	if err := task.Register(p); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	f := &Furniture{
		Assemble: task,
		physics:  p,
		sampler:  sampler,
		discount: discount,
	}
	first := f.Reset()
	return f, first, nil
}

// Reset resets the environment between episodes: the backend is
// restored, part placements are re-sampled if a sampler is present,
// and all reward variables are re-initialized.
func (f *Furniture) Reset() ts.TimeStep {
	if err := f.physics.Reset(); err != nil {
		panic(fmt.Sprintf("reset: could not reset physics: %v", err))
	}

	if f.sampler != nil {
		setter, ok := f.physics.(PoseSetter)
		if !ok {
			panic("reset: sampler configured but backend cannot set poses")
		}
		poses, err := f.sampler.Sample()
		if err != nil {
			panic(fmt.Sprintf("reset: %v", err))
		}
		for name, pose := range poses {
			if err := setter.SetPose(name, pose.Pos, pose.Rot); err != nil {
				panic(fmt.Sprintf("reset: could not place %v: %v", name,
					err))
			}
		}
	}

	f.resetRewardVariables()

	first := ts.New(ts.First, 0, f.discount, f.observation(), 0)
	f.lastStep = first
	f.lastInfo = nil
	return first
}

// Step advances the simulation with the given action and computes the
// reward, returning the next timestep and whether it is the last in
// the episode.
func (f *Furniture) Step(action mat.Vector) (ts.TimeStep, bool) {
	if err := f.physics.Step(action); err != nil {
		panic(fmt.Sprintf("step: could not advance physics: %v", err))
	}

	reward, done, info := f.ComputeReward(action)

	next := ts.New(ts.Mid, reward, f.discount, f.observation(),
		f.lastStep.Number+1)

	if done {
		next.StepType = ts.Last
		if f.Success() {
			next.SetEnd(ts.TerminalStateReached)
		} else {
			next.SetEnd(ts.Failure)
		}
	} else {
		f.End(&next)
	}

	// report the final absolute phase for cross-episode progress
	// tracking
	if next.Last() {
		info["phase"] = float64(f.AbsPhase())
	}

	f.lastStep = next
	f.lastInfo = info
	return next, next.Last()
}

// Info returns the diagnostic mapping emitted by the most recent Step
func (f *Furniture) Info() Info {
	return f.lastInfo
}

// observation assembles the flat observation vector from the backend
func (f *Furniture) observation() *mat.VecDense {
	backing := make([]float64, 0, ObsDim)

	for _, v := range []*mat.VecDense{
		mustPos(f.physics, SiteGripTip),
		mustPos(f.physics, f.rs.legSite),
		mustUp(f.physics, f.rs.legSite),
		mustForward(f.physics, f.rs.legSite),
		mustPos(f.physics, f.rs.tableSite),
		mustUp(f.physics, f.rs.tableSite),
		mustForward(f.physics, f.rs.tableSite),
	} {
		backing = append(backing, v.RawVector().Data...)
	}

	left, right := mustContact(f.physics, f.rs.leg)
	backing = append(backing, boolToFloat(left && right))

	return mat.NewVecDense(ObsDim, backing)
}

// ObservationSpec returns the observation specification of the
// environment
func (f *Furniture) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObsDim, nil)
	low := mat.NewVecDense(ObsDim, nil)
	high := mat.NewVecDense(ObsDim, nil)
	for i := 0; i < ObsDim; i++ {
		low.SetVec(i, math.Inf(-1))
		high.SetVec(i, math.Inf(1))
	}

	return environment.NewSpec(shape, environment.Observation, low, high,
		environment.Continuous)
}

// ActionSpec returns the action specification of the environment. The
// last two action components are the gripper control and the
// connect-intent signal; all components lie in [-1, 1].
func (f *Furniture) ActionSpec() environment.Spec {
	nu := f.physics.Nu()
	shape := mat.NewVecDense(nu, nil)
	low := mat.NewVecDense(nu, nil)
	high := mat.NewVecDense(nu, nil)
	for i := 0; i < nu; i++ {
		low.SetVec(i, -1)
		high.SetVec(i, 1)
	}

	return environment.NewSpec(shape, environment.Action, low, high,
		environment.Continuous)
}

// DiscountSpec returns the discounting specification of the
// environment
func (f *Furniture) DiscountSpec() environment.Spec {
	bounds := mat.NewVecDense(1, []float64{f.discount})

	return environment.NewSpec(mat.NewVecDense(1, nil),
		environment.Discount, bounds, bounds, environment.Continuous)
}
