// Package experiment implements episode drivers that run controllers
// against environments and track the data they generate
package experiment

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gofurniture/environment"
	"github.com/samuelfneumann/gofurniture/experiment/trackers"
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// Controller selects actions given environment timesteps. A scripted
// demonstration replayer and a learned policy both fit this interface.
type Controller interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
}

// Collect runs a Controller on an Environment for a fixed number of
// timesteps, episode by episode, feeding every timestep to the
// registered Trackers. It is the external episode driver: episode
// step budgets are enforced by the environment's Ender, while Collect
// enforces only the total experiment budget.
type Collect struct {
	env.Environment
	controller Controller

	maxSteps     uint
	currentSteps uint

	trackers []trackers.Tracker
	logger   *zap.Logger
}

// NewCollect creates a new data-collection experiment. The steps
// parameter determines how many total timesteps are run. A nil logger
// disables logging.
func NewCollect(e env.Environment, c Controller, steps uint,
	logger *zap.Logger, t ...trackers.Tracker) *Collect {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collect{
		Environment: e,
		controller:  c,
		maxSteps:    steps,
		trackers:    t,
		logger:      logger,
	}
}

// Register registers a Tracker with the experiment so that data
// generated during the experiment can be tracked and saved
func (c *Collect) Register(t trackers.Tracker) {
	c.trackers = append(c.trackers, t)
}

// RunEpisode runs a single episode, returning whether the total
// timestep budget has been reached
func (c *Collect) RunEpisode() bool {
	step := c.Environment.Reset()
	c.track(step)

	for !step.Last() && c.currentSteps < c.maxSteps {
		c.currentSteps++

		action := c.controller.SelectAction(step)
		step, _ = c.Environment.Step(action)

		c.track(step)
	}

	if step.Last() {
		c.logger.Info("episode finished",
			zap.Int("steps", step.Number),
			zap.Stringer("end", step.End()))
	}

	return c.currentSteps >= c.maxSteps
}

// Run runs the entire experiment for all timesteps
func (c *Collect) Run() {
	ended := false

	for !ended {
		ended = c.RunEpisode()
	}
}

// Save saves all the data cached by the Trackers to disk
func (c *Collect) Save() {
	for _, t := range c.trackers {
		t.Save()
	}
}

// track caches the current timestep in each Tracker
func (c *Collect) track(t ts.TimeStep) {
	for _, tracker := range c.trackers {
		tracker.Track(t)
	}
}
