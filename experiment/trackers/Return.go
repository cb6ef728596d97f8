package trackers

import (
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

// Return tracks and saves the episodic returns seen during an
// experiment. Returns are undiscounted sums of the rewards seen over
// each episode.
type Return struct {
	currentReturn float64
	episodeReturn []float64
	filename      string
}

// NewReturn creates and returns a new Return Tracker which will save
// its data at the file filename
func NewReturn(filename string) Tracker {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on the current timestep, caching the
// episodic return once the episode finishes
func (r *Return) Track(t ts.TimeStep) {
	r.currentReturn += t.Reward

	if t.Last() {
		r.episodeReturn = append(r.episodeReturn, r.currentReturn)
		r.currentReturn = 0
	}
}

// Save saves the cached returns to disk
func (r *Return) Save() {
	saveData(r.filename, r.episodeReturn)
}
