package furniture

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Frame is one recorded simulation step of a demonstration trace:
// world positions and orientation vectors by site/body name, finger
// contact flags by part name, and the connect-event flag.
type Frame struct {
	Pos       map[string][]float64
	Up        map[string][]float64
	Forward   map[string][]float64
	Contact   map[string][2]bool
	Connected bool
}

// Scripted is a Physics backend that replays a recorded trace of
// frames, one per control step. Once the trace is exhausted the final
// frame is held. Scripted backends are used to replay demonstrations
// through the reward machinery and to drive tests.
type Scripted struct {
	nu     int
	frames []Frame
	i      int
}

// NewScripted returns a Scripted backend replaying the given frames
// with control dimension nu
func NewScripted(nu int, frames []Frame) (*Scripted, error) {
	if nu < 3 {
		return nil, fmt.Errorf("newScripted: control dimension must be at "+
			"least 3, got %v", nu)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("newScripted: empty trace")
	}
	for i, f := range frames {
		for name, v := range f.Pos {
			if len(v) != 3 {
				return nil, fmt.Errorf("newScripted: frame %v: position "+
					"of %v has %v components, want 3", i, name, len(v))
			}
		}
		for name, v := range f.Up {
			if len(v) != 3 {
				return nil, fmt.Errorf("newScripted: frame %v: up vector "+
					"of %v has %v components, want 3", i, name, len(v))
			}
		}
		for name, v := range f.Forward {
			if len(v) != 3 {
				return nil, fmt.Errorf("newScripted: frame %v: forward "+
					"vector of %v has %v components, want 3", i, name,
					len(v))
			}
		}
	}
	return &Scripted{nu: nu, frames: frames}, nil
}

// Frame returns the index of the current frame
func (s *Scripted) Frame() int { return s.i }

func (s *Scripted) frame() Frame { return s.frames[s.i] }

// Pos returns the recorded position of a named site or body
func (s *Scripted) Pos(name string) (*mat.VecDense, error) {
	v, ok := s.frame().Pos[name]
	if !ok {
		return nil, fmt.Errorf("no position recorded for %q at frame %v",
			name, s.i)
	}
	out := make([]float64, 3)
	copy(out, v)
	return mat.NewVecDense(3, out), nil
}

// UpVector returns the recorded up orientation vector of a named site
func (s *Scripted) UpVector(site string) (*mat.VecDense, error) {
	v, ok := s.frame().Up[site]
	if !ok {
		return nil, fmt.Errorf("no up vector recorded for %q at frame %v",
			site, s.i)
	}
	out := make([]float64, 3)
	copy(out, v)
	return mat.NewVecDense(3, out), nil
}

// ForwardVector returns the recorded forward orientation vector of a
// named site
func (s *Scripted) ForwardVector(site string) (*mat.VecDense, error) {
	v, ok := s.frame().Forward[site]
	if !ok {
		return nil, fmt.Errorf("no forward vector recorded for %q at "+
			"frame %v", site, s.i)
	}
	out := make([]float64, 3)
	copy(out, v)
	return mat.NewVecDense(3, out), nil
}

// FingerContact returns the recorded two-finger contact flags for a
// named part
func (s *Scripted) FingerContact(part string) (bool, bool, error) {
	c, ok := s.frame().Contact[part]
	if !ok {
		return false, false, fmt.Errorf("no contact recorded for %q at "+
			"frame %v", part, s.i)
	}
	return c[0], c[1], nil
}

// Connected reports the recorded connect-event flag
func (s *Scripted) Connected() bool {
	return s.frame().Connected
}

// Nu returns the control dimension of the trace
func (s *Scripted) Nu() int { return s.nu }

// Step advances to the next recorded frame, holding the last frame
// once the trace is exhausted
func (s *Scripted) Step(ctrl mat.Vector) error {
	if ctrl.Len() != s.nu {
		return fmt.Errorf("step: invalid control dimensions \n\thave(%v) "+
			"\n\twant(%v)", ctrl.Len(), s.nu)
	}
	if s.i < len(s.frames)-1 {
		s.i++
	}
	return nil
}

// Reset rewinds the trace to its first frame
func (s *Scripted) Reset() error {
	s.i = 0
	return nil
}

// SetPose is accepted but has no effect: a recorded trace cannot honor
// arbitrary poses. Implemented so sampled placements can be exercised
// against scripted backends in tests.
func (s *Scripted) SetPose(string, *mat.VecDense, quat.Number) error {
	return nil
}
