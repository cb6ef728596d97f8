package furniture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// worldDown is the world-frame down direction used by the stable-grip
// reward
var worldDown = mat.NewVecDense(3, []float64{0, 0, -1})

// ctrlPenalty penalizes the norm of the non-gripper action components.
// The result is always non-positive.
func (a *Assemble) ctrlPenalty(ac mat.Vector) (float64, Info) {
	var sq float64
	for i := 0; i < ac.Len()-2; i++ {
		sq += ac.AtVec(i) * ac.AtVec(i)
	}
	rew := -a.cfg.CtrlPenaltyCoef * math.Sqrt(sq)
	if rew > 0 {
		panic(fmt.Sprintf("ctrlPenalty: positive penalty %v", rew))
	}
	return rew, Info{"ctrl_penalty": rew}
}

// gripperPenalty penalizes the distance between the gripper control
// signal and fully closed, except during the phases where the gripper
// should be open. The gripper signal is -1 for open and 1 for closed;
// the result is always non-positive.
func (a *Assemble) gripperPenalty(ac mat.Vector) (float64, Info) {
	grip := ac.AtVec(ac.Len() - 2)

	rew := 0.0
	if !a.phase.GripOpen() {
		rew = (grip - 1) * a.cfg.GripperPenaltyCoef
	}
	if rew > 0 {
		panic(fmt.Sprintf("gripperPenalty: positive penalty %v", rew))
	}
	return rew, Info{"gripper_penalty": rew, "gripper_action": grip}
}

// stableGripReward keeps the wrist aligned for grasping: the end
// effector's up vector should point at the world down direction and
// its forward vector should be parallel to the grasp axis. The reward
// is active only before the lift phase; the success flag is always
// computed since it gates forward transitions and the early-pick skip.
func (a *Assemble) stableGripReward() (float64, Info) {
	eefUp := mustUp(a.physics, SiteGrip)
	eefUpGraspDist := vecutils.CosSim(eefUp, worldDown)
	eefUpGraspRew := a.cfg.EEFUpRotDistCoef * (eefUpGraspDist - 1)

	graspVec := a.legGraspVector()
	eefForward := mustForward(a.physics, SiteGrip)
	eefForwardGraspDist := vecutils.CosSim(eefForward, graspVec)
	eefForwardGraspRew := (math.Abs(eefForwardGraspDist) - 1) *
		a.cfg.EEFRotDistCoef

	info := Info{
		"stable_grip_succ": boolToFloat(
			eefUpGraspDist > 1-a.cfg.RotThreshold &&
				math.Abs(eefForwardGraspDist) > 1-a.cfg.RotThreshold),
	}

	rew := eefUpGraspRew + eefForwardGraspRew
	if a.phase < LiftLeg {
		info["eef_up_grasp_dist"] = eefUpGraspDist
		info["eef_up_grasp_rew"] = eefUpGraspRew
		info["eef_forward_grasp_dist"] = eefForwardGraspDist
		info["eef_forward_grasp_rew"] = eefForwardGraspRew
	} else {
		rew = 0
	}
	return rew, info
}

// moveOtherPartPenalty penalizes cumulative displacement of the target
// part, discouraging collateral disturbance at all times
func (a *Assemble) moveOtherPartPenalty(snap *Snapshot) (float64, Info) {
	rew := -a.cfg.MoveOtherPartPenaltyCoef * snap.TableDisplacement
	if rew > 0 {
		panic(fmt.Sprintf("moveOtherPartPenalty: positive penalty %v", rew))
	}
	return rew, Info{
		"move_other_part_penalty": rew,
		"table_displacement":      snap.TableDisplacement,
	}
}
