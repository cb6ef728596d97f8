package trackers

import (
	"github.com/samuelfneumann/gofurniture/environment/furniture"
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// InfoSource provides the diagnostic mapping of the most recent
// environmental step. The furniture environment satisfies this
// interface.
type InfoSource interface {
	Info() furniture.Info
}

// Phase tracks and saves the absolute assembly phase reached at the
// end of each episode, measuring manipulation progress even when no
// episode fully succeeds.
type Phase struct {
	source   InfoSource
	phases   []float64
	filename string
}

// NewPhase creates and returns a new Phase Tracker reading phase
// progress from source and saving its data at the file filename
func NewPhase(source InfoSource, filename string) Tracker {
	return &Phase{source: source, filename: filename}
}

// Track caches the absolute phase reported on the final timestep of
// each episode
func (p *Phase) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}

	phase, ok := p.source.Info()["phase"]
	if !ok {
		phase = -1
	}
	p.phases = append(p.phases, phase)
}

// Save saves the cached phases to disk
func (p *Phase) Save() {
	saveData(p.filename, p.phases)
}
