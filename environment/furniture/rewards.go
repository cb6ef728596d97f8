package furniture

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/utils/floatutils"
	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// Info is the per-step diagnostic mapping. Boolean diagnostics are
// encoded as 0 or 1.
type Info map[string]float64

func (in Info) merge(other Info) {
	for k, v := range other {
		in[k] = v
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Fixed geometric constants of the manipulation task
const (
	// Height of the hover point above the grasp location
	aboveLegZ = 0.08

	// Vertical offset from the grasp midpoint to the lowering target
	graspZOffset = -0.015

	// Clamp on the lowering distance measure
	eefLegDistClamp = 0.3

	// Lift target height above the leg's starting position, and the
	// margin above start height that counts as "lifted"
	liftOffset = 0.2
	liftMargin = 0.01

	// Cumulative target-part displacement that fails the episode
	disturbanceLimit = 0.1

	// Exponential shaping scales for the fine phase
	finePosExpScale = 25
	fineAngExpScale = 3
)

// Per-phase success thresholds (length units)
const (
	moveEEFXYThreshold  = 0.02
	moveEEFZThreshold   = 0.02
	lowerEEFXYThreshold = 0.02
	lowerEEFZThreshold  = 0.01
	liftXYThreshold     = 0.03
	liftZThreshold      = 0.01
)

// moveEEFAboveLegReward drives the end effector to a hover point just
// above the grasp location, measuring xy and z distance separately.
func (a *Assemble) moveEEFAboveLegReward() (float64, Info) {
	eefPos := mustPos(a.physics, SiteGripTip)
	legPos := a.legGraspPos()
	legPos.SetVec(2, aboveLegZ)

	xyDist := vecutils.XYDist(eefPos, legPos)
	zDist := vecutils.ZDist(eefPos, legPos)
	dist := xyDist + zDist

	var rew float64
	if a.cfg.DiffReward {
		offset := a.rs.prevEEFAboveLegDist - dist
		rew = offset * a.cfg.EEFPosDistCoef * 10
		a.rs.prevEEFAboveLegDist = dist
	} else {
		rew = -dist * a.cfg.EEFPosDistCoef
	}

	info := Info{
		"eef_above_leg_dist": dist,
		"eef_above_leg_rew":  rew,
		"move_eef_above_leg_succ": boolToFloat(
			xyDist < moveEEFXYThreshold && zDist < moveEEFZThreshold),
	}
	return rew, info
}

// lowerEEFToLegReward drives the end effector down onto the actual
// grasp point, under a tighter vertical threshold.
func (a *Assemble) lowerEEFToLegReward() (float64, Info) {
	eefPos := mustPos(a.physics, SiteGripTip)
	legPos := a.legGraspPos()
	legPos.SetVec(2, legPos.AtVec(2)+graspZOffset)

	xyDist := vecutils.XYDist(eefPos, legPos)
	zDist := vecutils.ZDist(eefPos, legPos)
	dist := floatutils.Min(xyDist+zDist, eefLegDistClamp)

	var rew float64
	if a.cfg.DiffReward {
		offset := a.rs.prevEEFLegDist - dist
		rew = offset * a.cfg.LowerEEFPosDistCoef * 10
		a.rs.prevEEFLegDist = dist
	} else {
		rew = -dist * a.cfg.LowerEEFPosDistCoef
	}

	info := Info{
		"eef_leg_dist": dist,
		"eef_leg_rew":  rew,
		"lower_eef_to_leg_succ": boolToFloat(
			xyDist < lowerEEFXYThreshold && zDist < lowerEEFZThreshold),
	}
	return rew, info
}

// graspLegReward rewards closing the gripper on the leg. It inherits
// the lowering distance term, tracks the gripper control signal toward
// closed, and pays a one-time bonus on first contact.
func (a *Assemble) graspLegReward(ac mat.Vector, snap *Snapshot) (float64, Info) {
	rew, info := a.lowerEEFToLegReward()

	info["grasp_leg_succ"] = boolToFloat(snap.Touched)

	// closed gripper is 1, want to maximize the gripper signal
	grip := ac.AtVec(ac.Len() - 2)
	graspLegRew := (grip - a.rs.prevGraspDist) * a.cfg.GraspDistCoef
	a.rs.prevGraspDist = grip
	info["grasp_leg_rew"] = graspLegRew

	touchRew := 0.0
	if snap.Touched && !a.rs.legTouched {
		touchRew += a.cfg.TouchCoef * 10
		a.rs.legTouched = true
	}
	info["touch_rew"] = touchRew

	return rew + graspLegRew + touchRew, info
}

// liftLegReward rewards raising the leg to a fixed height above its
// starting position while limiting xy drift, with a one-time bonus the
// first time the leg leaves the ground and a small continuous reward
// for keeping contact.
func (a *Assemble) liftLegReward(snap *Snapshot) (float64, Info) {
	touchRew := boolToFloat(snap.Touched) * a.cfg.TouchCoef / 5
	info := Info{"touch_rew": touchRew}

	xyDist := vecutils.XYDist(a.rs.liftTarget, snap.LegPos)
	zDist := vecutils.ZDist(a.rs.liftTarget, snap.LegPos)

	var liftLegRew float64
	if a.cfg.DiffReward {
		zOffset := a.rs.prevLiftLegZDist - zDist
		liftLegRew = zOffset * a.cfg.LiftDistCoef * 10
		a.rs.prevLiftLegZDist = zDist

		xyOffset := a.rs.prevLiftLegXYDist - xyDist
		liftLegRew += xyOffset * a.cfg.LiftDistCoef * 10
		a.rs.prevLiftLegXYDist = xyDist
	} else {
		liftLegRew = -(zDist + xyDist) * a.cfg.LiftDistCoef
	}

	legLift := snap.LegPos.AtVec(2) > a.rs.initLegPos.AtVec(2)+liftMargin
	if snap.Touched && legLift && !a.rs.legLift {
		a.logger.Info("lifted leg", zap.Int("subtask", a.subtask))
		a.rs.legLift = true
		liftLegRew += a.cfg.PhaseBonus / 10
	}

	info["lift"] = boolToFloat(legLift)
	info["lift_leg_rew"] = liftLegRew
	info["lift_leg_xy_dist"] = xyDist
	info["lift_leg_z_dist"] = zDist
	info["lift_leg_succ"] = boolToFloat(
		xyDist < liftXYThreshold && zDist < liftZThreshold)

	return liftLegRew + touchRew, info
}

// alignLegReward drives the leg position back toward the pose recorded
// at lift completion while rotating its up and forward vectors toward
// the target site's.
func (a *Assemble) alignLegReward(snap *Snapshot) (float64, Info) {
	info := Info{"touch_rew": 0}

	legPos := mustPos(a.physics, a.rs.leg)
	movePosDist := vecutils.Dist(a.rs.alignLegPos, legPos)

	var posRew float64
	if a.cfg.DiffReward {
		offset := a.rs.prevMovePosDist - movePosDist
		posRew = offset * a.cfg.AlignPosDistCoef * 10
		a.rs.prevMovePosDist = movePosDist
	} else {
		posRew = -movePosDist * a.cfg.AlignPosDistCoef
	}
	info["align_pos_dist"] = movePosDist
	info["align_pos_rew"] = posRew

	var angRew float64
	if a.cfg.DiffReward {
		offset := snap.MoveAngDist - a.rs.prevMoveAngDist
		angRew = offset * a.cfg.AlignRotDistCoef * 10
		a.rs.prevMoveAngDist = snap.MoveAngDist
	} else {
		angRew = (snap.MoveAngDist - 1) * a.cfg.AlignRotDistCoef
	}
	info["align_ang_dist"] = snap.MoveAngDist
	info["align_ang_rew"] = angRew

	var forwardAngRew float64
	if a.cfg.DiffReward {
		offset := snap.MoveForwardAngDist - a.rs.prevMoveForwardAngDist
		forwardAngRew = offset * a.cfg.AlignRotDistCoef * 10
		a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
	} else {
		forwardAngRew = (snap.MoveForwardAngDist - 1) * a.cfg.AlignRotDistCoef
	}
	info["align_forward_ang_dist"] = snap.MoveForwardAngDist
	info["align_forward_ang_rew"] = forwardAngRew

	info["align_leg_succ"] = boolToFloat(
		movePosDist < a.cfg.AlignPosThreshold &&
			snap.MoveAngDist > a.cfg.AlignRotThreshold &&
			snap.MoveForwardAngDist > a.cfg.AlignRotThreshold &&
			snap.Touched)

	return posRew + angRew + forwardAngRew, info
}

// moveLegReward coarsely moves the leg site over the point above the
// connection site, keeping the angular alignment terms.
func (a *Assemble) moveLegReward(snap *Snapshot) (float64, Info) {
	info := Info{"touch_rew": 0}

	movePosDist := snap.MoveAbovePosDist
	var posRew float64
	if a.cfg.DiffReward {
		offset := a.rs.prevMovePosDist - movePosDist
		posRew = offset * a.cfg.MovePosDistCoef * 10
		a.rs.prevMovePosDist = movePosDist
	} else {
		posRew = -movePosDist * a.cfg.MovePosDistCoef
	}
	info["move_pos_dist"] = movePosDist
	info["move_pos_rew"] = posRew

	var angRew float64
	if a.cfg.DiffReward {
		offset := snap.MoveAngDist - a.rs.prevMoveAngDist
		angRew = offset * a.cfg.MoveRotDistCoef * 10
		a.rs.prevMoveAngDist = snap.MoveAngDist
	} else {
		angRew = (snap.MoveAngDist - 1) * a.cfg.MoveRotDistCoef
	}
	info["move_ang_dist"] = snap.MoveAngDist
	info["move_ang_rew"] = angRew

	var forwardAngRew float64
	if a.cfg.DiffReward {
		offset := snap.MoveForwardAngDist - a.rs.prevMoveForwardAngDist
		forwardAngRew = offset * a.cfg.MoveRotDistCoef * 10
		a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
	} else {
		forwardAngRew = (snap.MoveForwardAngDist - 1) * a.cfg.MoveRotDistCoef
	}
	info["move_forward_ang_dist"] = snap.MoveForwardAngDist
	info["move_forward_ang_rew"] = forwardAngRew

	info["move_leg_succ"] = boolToFloat(
		movePosDist < a.cfg.MovePosThreshold &&
			snap.MoveAngDist > a.cfg.MoveRotThreshold &&
			snap.MoveForwardAngDist > a.cfg.MoveRotThreshold &&
			snap.Touched)

	return posRew + angRew + forwardAngRew, info
}

// moveLegFineReward finely aligns the leg site with the connection
// site using steeper, saturating exponential shaping, plus the two
// projection terms, and pays a connect-intent reward while fully
// aligned. Suppressed once the connection has physically occurred.
func (a *Assemble) moveLegFineReward(ac mat.Vector, snap *Snapshot) (float64, Info) {
	info := Info{"connect_succ": boolToFloat(a.physics.Connected())}
	if a.physics.Connected() {
		return 0, info
	}

	info["touch_rew"] = 0

	fPos := func(x float64) float64 { return math.Exp(-finePosExpScale * x) }
	fAng := func(x float64) float64 {
		return math.Exp(-fineAngExpScale * (1 - x))
	}

	movePosDist := snap.MovePosDist
	var posRew float64
	if a.cfg.DiffReward {
		offset := fPos(movePosDist) - fPos(a.rs.prevMovePosDist)
		posRew = offset * a.cfg.MoveFinePosDistCoef * 10
		a.rs.prevMovePosDist = movePosDist
	} else {
		posRew = -movePosDist * a.cfg.MoveFinePosDistCoef
	}
	info["move_fine_pos_dist"] = movePosDist
	info["move_fine_pos_rew"] = posRew

	var angRew float64
	if a.cfg.DiffReward {
		offset := fAng(snap.MoveAngDist) - fAng(a.rs.prevMoveAngDist)
		angRew = offset * a.cfg.MoveFineRotDistCoef * 10
		a.rs.prevMoveAngDist = snap.MoveAngDist
	} else {
		angRew = (snap.MoveAngDist - 1) * a.cfg.MoveFineRotDistCoef
	}
	info["move_fine_ang_dist"] = snap.MoveAngDist
	info["move_fine_ang_rew"] = angRew

	var forwardAngRew float64
	if a.cfg.DiffReward {
		offset := fAng(snap.MoveForwardAngDist) -
			fAng(a.rs.prevMoveForwardAngDist)
		forwardAngRew = offset * a.cfg.MoveFineRotDistCoef * 10
		a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
	} else {
		forwardAngRew = (snap.MoveForwardAngDist - 1) *
			a.cfg.MoveFineRotDistCoef
	}
	info["move_fine_forward_ang_dist"] = snap.MoveForwardAngDist
	info["move_fine_forward_ang_rew"] = forwardAngRew

	// projections approach 1 when the connectors face each other
	var projTRew, projLRew float64
	if a.cfg.DiffReward {
		offset := fAng(snap.ProjTable) - fAng(a.rs.prevProjT)
		projTRew = offset * a.cfg.MoveFineRotDistCoef * 5
		a.rs.prevProjT = snap.ProjTable

		offset = fAng(snap.ProjLeg) - fAng(a.rs.prevProjL)
		projLRew = offset * a.cfg.MoveFineRotDistCoef * 5
		a.rs.prevProjL = snap.ProjLeg
	} else {
		projTRew = (snap.ProjTable - 1) * a.cfg.MoveFineRotDistCoef / 10
		projLRew = (snap.ProjLeg - 1) * a.cfg.MoveFineRotDistCoef / 10
	}
	info["proj_t"] = snap.ProjTable
	info["proj_t_rew"] = projTRew
	info["proj_l"] = snap.ProjLeg
	info["proj_l_rew"] = projLRew

	aligned := a.isAligned(snap)
	info["move_leg_fine_succ"] = boolToFloat(aligned)

	rew := posRew + angRew + forwardAngRew + projTRew + projLRew

	if aligned {
		a.rs.fineAligned++
		connectRew := (ac.AtVec(ac.Len()-1) + 1) * a.cfg.AlignedBonusCoef
		info["connect_rew"] = connectRew
		rew += connectRew
	}
	return rew, info
}

// isAligned reports whether the leg and connection site satisfy the
// full fine-alignment criteria for connecting
func (a *Assemble) isAligned(snap *Snapshot) bool {
	return snap.MovePosDist < a.cfg.PosThreshold &&
		snap.MoveAngDist > 1-a.cfg.RotThreshold &&
		snap.MoveForwardAngDist > 1-a.cfg.RotThreshold &&
		snap.ProjTable > 1-a.cfg.ProjThreshold &&
		snap.ProjLeg > 1-a.cfg.ProjThreshold
}
