package furniture

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Well-known end-effector site names shared by all backends
const (
	SiteGripTip = "griptip_site"
	SiteGrip    = "grip_site"
)

// Physics is the narrow interface onto the simulation backend. The
// reward core only ever reads named 3D points, orientation vectors,
// contact flags, and the connect-event flag, and advances the
// simulation by one control step. Everything else about the backend is
// opaque.
type Physics interface {
	// Pos returns the 3D world position of a named site or body
	Pos(name string) (*mat.VecDense, error)

	// UpVector returns the world-frame up orientation vector of a
	// named site
	UpVector(site string) (*mat.VecDense, error)

	// ForwardVector returns the world-frame forward orientation vector
	// of a named site
	ForwardVector(site string) (*mat.VecDense, error)

	// FingerContact returns the left and right finger contact flags
	// for a named part
	FingerContact(part string) (left, right bool, err error)

	// Connected reports whether a physical connect event has occurred
	// between the current subtask's parts
	Connected() bool

	// Nu returns the control dimension of the backend
	Nu() int

	// Step advances the simulation by one control step
	Step(ctrl mat.Vector) error

	// Reset restores the backend to its initial state
	Reset() error
}

// PoseSetter is implemented by backends whose part poses can be set at
// episode reset, e.g. to apply sampled initial placements.
type PoseSetter interface {
	SetPose(name string, pos *mat.VecDense, rot quat.Number) error
}

// mustPos reads a position from the backend, panicking on failure.
// Lookup failures after construction-time validation are programming
// defects, not runtime conditions.
func mustPos(p Physics, name string) *mat.VecDense {
	pos, err := p.Pos(name)
	if err != nil {
		panic(fmt.Sprintf("pos: %v", err))
	}
	return pos
}

func mustUp(p Physics, site string) *mat.VecDense {
	up, err := p.UpVector(site)
	if err != nil {
		panic(fmt.Sprintf("upVector: %v", err))
	}
	return up
}

func mustForward(p Physics, site string) *mat.VecDense {
	forward, err := p.ForwardVector(site)
	if err != nil {
		panic(fmt.Sprintf("forwardVector: %v", err))
	}
	return forward
}

func mustContact(p Physics, part string) (bool, bool) {
	left, right, err := p.FingerContact(part)
	if err != nil {
		panic(fmt.Sprintf("fingerContact: %v", err))
	}
	return left, right
}
