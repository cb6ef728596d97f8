// Package environment outlines the interfaces and structs needed to implement
// concrete environments and their tasks
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/timestep"
)

// Ender determines when and how episodes end. Implementations modify
// the StepType and EndType of a TimeStep when the episode should end.
type Ender interface {
	// End takes the current timestep of the environment, modifying it
	// in-place to reflect an episode ending if the episode has ended.
	// End returns whether the argument timestep is the last in the
	// episode.
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment. A Task decides when episodes end and what the reward
// bounds are, but the owning environment drives the per-step reward
// computation since tasks may keep per-episode internal state.
type Task interface {
	Ender

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	// Min and Max return the minimum and maximum attainable rewards
	// on any single timestep
	Min() float64
	Max() float64

	// RewardSpec returns the specification of rewards emitted under
	// this task
	RewardSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task

	// Reset resets the environment between episodes
	Reset() timestep.TimeStep

	// Step takes one environmental step given an action, returning the
	// next timestep and whether it is the last in the episode
	Step(action mat.Vector) (timestep.TimeStep, bool)

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
