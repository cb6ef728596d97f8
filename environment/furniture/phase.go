package furniture

import "fmt"

// Phase is one of the seven ordered manipulation sub-goals within a
// single part-attachment attempt. Phases advance in order, except for
// the skip shortcuts applied by the Assemble task.
type Phase int

const (
	MoveEEFAboveLeg Phase = iota
	LowerEEFToLeg
	GraspLeg
	LiftLeg
	AlignLeg
	MoveLeg
	MoveLegFine
)

// NumPhases is the number of phases in one attachment attempt
const NumPhases = 7

func (p Phase) String() string {
	switch p {
	case MoveEEFAboveLeg:
		return "move_eef_above_leg"
	case LowerEEFToLeg:
		return "lower_eef_to_leg"
	case GraspLeg:
		return "grasp_leg"
	case LiftLeg:
		return "lift_leg"
	case AlignLeg:
		return "align_leg"
	case MoveLeg:
		return "move_leg"
	case MoveLegFine:
		return "move_leg_fine"
	}
	panic(fmt.Sprintf("phase: invalid phase %d", int(p)))
}

// GripOpen returns whether the gripper should be held open during p.
// The gripper penalty is suppressed for these phases.
func (p Phase) GripOpen() bool {
	return p == MoveEEFAboveLeg || p == LowerEEFToLeg
}
