package furniture

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/environment"
	"github.com/samuelfneumann/gofurniture/timestep"
	"github.com/samuelfneumann/gofurniture/utils/floatutils"
	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// Assemble implements the dense-reward furniture assembly task. One
// attachment attempt moves through the seven phases in order; the full
// phase cycle repeats once per connection in the recipe. Each call to
// ComputeReward consumes the current physical state and action,
// producing the scalar reward, the episode-done flag, and the
// diagnostic mapping, while advancing the phase/subtask state.
//
// The Assemble Task must be registered with a Physics backend before
// it can be used.
type Assemble struct {
	physics    Physics
	recipe     *Recipe
	cfg        Config
	logger     *zap.Logger
	stepLimit  environment.StepLimit
	registered bool

	phase   Phase
	subtask int
	rs      rewardState
	success bool
}

// NewAssemble returns a new Assemble Task for the given recipe. The
// cutoff is the episode step budget, enforced through the Ender
// interface by the owning environment. A nil logger disables logging.
func NewAssemble(recipe *Recipe, cfg Config, cutoff int,
	logger *zap.Logger) (*Assemble, error) {
	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("newAssemble: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newAssemble: %w", err)
	}
	if cfg.Preassembled >= recipe.NumConnections() {
		return nil, fmt.Errorf("newAssemble: preassembled count %v leaves "+
			"no connections to make (recipe has %v)", cfg.Preassembled,
			recipe.NumConnections())
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("newAssemble: episode cutoff must be "+
			"positive, got %v", cutoff)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assemble{
		recipe:    recipe,
		cfg:       cfg,
		logger:    logger,
		stepLimit: environment.NewStepLimit(cutoff),
	}, nil
}

// Register registers a Physics backend with the Assemble Task,
// validating that every site and part the recipe names resolves in the
// backend. Malformed recipes or backends are fatal here, before any
// step is taken.
func (a *Assemble) Register(p Physics) error {
	for i, c := range a.recipe.Connections {
		names := []string{c.Leg, c.Table, c.LegSite, c.TableSite}
		g1, g2 := c.gripSites()
		names = append(names, g1, g2)
		for _, name := range names {
			if _, err := p.Pos(name); err != nil {
				return fmt.Errorf("register: connection %v: %w", i, err)
			}
		}
		for _, site := range []string{c.LegSite, c.TableSite} {
			if _, err := p.UpVector(site); err != nil {
				return fmt.Errorf("register: connection %v: %w", i, err)
			}
			if _, err := p.ForwardVector(site); err != nil {
				return fmt.Errorf("register: connection %v: %w", i, err)
			}
		}
		if _, _, err := p.FingerContact(c.Leg); err != nil {
			return fmt.Errorf("register: connection %v: %w", i, err)
		}
	}
	for _, site := range []string{SiteGripTip, SiteGrip} {
		if _, err := p.Pos(site); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}
	if _, err := p.UpVector(SiteGrip); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if _, err := p.ForwardVector(SiteGrip); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	a.physics = p
	a.registered = true
	a.resetRewardVariables()
	return nil
}

// Phase returns the current phase within the current subtask
func (a *Assemble) Phase() Phase { return a.phase }

// Subtask returns the index of the connection currently being made
func (a *Assemble) Subtask() int { return a.subtask }

// AbsPhase returns the absolute phase index across subtasks
func (a *Assemble) AbsPhase() int {
	return int(a.phase) + NumPhases*a.subtask
}

// Success returns whether all connections have been made this episode
func (a *Assemble) Success() bool { return a.success }

// ComputeReward computes the multi-phase reward for the current
// physical state under action ac, advancing the phase/subtask state
// machine. It must be called exactly once per simulation step.
func (a *Assemble) ComputeReward(ac mat.Vector) (float64, bool, Info) {
	if !a.registered {
		panic("computeReward: must register with a Physics backend first")
	}
	if ac.Len() < 3 {
		panic(fmt.Sprintf("computeReward: action must hold at least one "+
			"control, a gripper and a connect signal, got length %v",
			ac.Len()))
	}

	phaseBonus := 0.0
	done := false
	a.success = false

	snap := a.collectValues()
	ctrlPen, ctrlInfo := a.ctrlPenalty(ac)
	stableGripRew, sgInfo := a.stableGripReward()
	movePen, moveInfo := a.moveOtherPartPenalty(snap)

	stableGrip := sgInfo["stable_grip_succ"] == 1

	// detect early picking
	if snap.Touched && stableGrip && a.phase < GraspLeg {
		a.logger.Info("skipped to lift_leg",
			zap.Stringer("from", a.phase), zap.Int("subtask", a.subtask))
		a.phase = LiftLeg
	}

	// detect early fine alignment without lifting or coarse alignment
	if a.phase == LiftLeg || a.phase == AlignLeg {
		if snap.MovePosDist < a.cfg.MovePosThreshold &&
			snap.MoveAngDist > a.cfg.MoveRotThreshold &&
			snap.MoveForwardAngDist > a.cfg.MoveRotThreshold {
			a.logger.Info("skipped to move_leg_fine",
				zap.Stringer("from", a.phase), zap.Int("subtask", a.subtask))
			a.phase = MoveLegFine

			a.rs.prevMovePosDist = snap.MovePosDist
			a.rs.prevMoveAngDist = snap.MoveAngDist
			a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
			a.rs.prevProjT = snap.ProjTable
			a.rs.prevProjL = snap.ProjLeg
		}
	}

	// detect early alignment without lifting
	if a.phase == LiftLeg {
		if snap.MoveAngDist > a.cfg.AlignRotThreshold &&
			snap.MoveForwardAngDist > a.cfg.AlignRotThreshold {
			a.logger.Info("skipped to move_leg",
				zap.Int("subtask", a.subtask))
			a.phase = MoveLeg

			a.rs.prevMovePosDist = snap.MoveAbovePosDist
			a.rs.prevMoveAngDist = snap.MoveAngDist
			a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
		}
	}

	info := Info{
		"phase_i": float64(a.AbsPhase()),
		"subtask": float64(a.subtask),
		"touch":   boolToFloat(snap.Touched),
	}

	gripPen, gripInfo := a.gripperPenalty(ac)

	var phaseReward float64
	var phaseInfo Info

	switch a.phase {
	case MoveEEFAboveLeg:
		phaseReward, phaseInfo = a.moveEEFAboveLegReward()
		if phaseInfo["move_eef_above_leg_succ"] == 1 && stableGrip {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus

			// seed the lowering baseline from the current pose
			eefPos := mustPos(a.physics, SiteGripTip)
			legPos := a.legGraspPos()
			legPos.SetVec(2, legPos.AtVec(2)+graspZOffset)
			a.rs.prevEEFLegDist = floatutils.Min(
				vecutils.XYDist(eefPos, legPos)+
					vecutils.ZDist(eefPos, legPos), eefLegDistClamp)
		}

	case LowerEEFToLeg:
		phaseReward, phaseInfo = a.lowerEEFToLegReward()
		if phaseInfo["lower_eef_to_leg_succ"] == 1 && stableGrip {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus
		}

	case GraspLeg:
		phaseReward, phaseInfo = a.graspLegReward(ac, snap)
		if phaseInfo["grasp_leg_succ"] == 1 && stableGrip {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus
		}

	case LiftLeg:
		phaseReward, phaseInfo = a.liftLegReward(snap)

		if !snap.Touched {
			a.logger.Info("dropped leg during lift_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if moveInfo["table_displacement"] > disturbanceLimit {
			a.logger.Info("moved table too much during lift_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if phaseInfo["lift_leg_succ"] == 1 {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus

			a.rs.alignLegPos = mustPos(a.physics, a.rs.leg)
			a.rs.prevMovePosDist = 0
			a.rs.prevMoveAngDist = snap.MoveAngDist
			a.rs.prevMoveForwardAngDist = snap.MoveForwardAngDist
		}

	case AlignLeg:
		phaseReward, phaseInfo = a.alignLegReward(snap)

		if !snap.Touched {
			a.logger.Info("dropped leg during align_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if moveInfo["table_displacement"] > disturbanceLimit {
			a.logger.Info("moved table too much during align_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if phaseInfo["align_leg_succ"] == 1 {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus

			a.rs.prevMovePosDist = snap.MoveAbovePosDist
		}

	case MoveLeg:
		phaseReward, phaseInfo = a.moveLegReward(snap)

		if !snap.Touched {
			a.logger.Info("dropped leg during move_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if moveInfo["table_displacement"] > disturbanceLimit {
			a.logger.Info("moved table too much during move_leg",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if phaseInfo["move_leg_succ"] == 1 {
			a.phase++
			phaseBonus += a.cfg.PhaseBonus * 5

			a.rs.prevMovePosDist = snap.MovePosDist
			a.rs.prevProjT = snap.ProjTable
			a.rs.prevProjL = snap.ProjLeg
		}

	case MoveLegFine:
		phaseReward, phaseInfo = a.moveLegFineReward(ac, snap)

		if moveInfo["table_displacement"] > disturbanceLimit {
			a.logger.Info("moved table too much during move_leg_fine",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus / 2
		} else if phaseInfo["connect_succ"] == 1 {
			phaseBonus += a.cfg.PhaseBonus * 5
			// discourage lingering in the aligned state
			phaseBonus -= float64(a.rs.fineAligned) * a.cfg.AlignedBonusCoef
			a.phase = MoveEEFAboveLeg
			a.logger.Info("connected", zap.Int("subtask", a.subtask))

			done = a.setNextSubtask()
			a.success = done
		} else if !snap.Touched {
			a.logger.Info("dropped leg during move_leg_fine",
				zap.Int("subtask", a.subtask))
			done = true
			phaseBonus += -a.cfg.PhaseBonus * 2
		}

	default:
		panic(fmt.Sprintf("computeReward: invalid phase %d", int(a.phase)))
	}

	reward := ctrlPen + phaseReward + stableGripRew +
		gripPen + phaseBonus + movePen

	info["phase_bonus"] = phaseBonus
	info.merge(ctrlInfo)
	info.merge(phaseInfo)
	info.merge(sgInfo)
	info.merge(gripInfo)
	info.merge(moveInfo)

	return reward, done, info
}

// AtGoal returns whether every connection in the recipe has been made.
// The argument state is ignored; goal progress lives in the subtask
// index, not the observation.
func (a *Assemble) AtGoal(_ mat.Matrix) bool {
	return a.subtask >= a.recipe.NumConnections()
}

// End checks if a timestep should be the last in the episode and
// adjusts the timestep accordingly. Task failures (drop, disturbance)
// mark the step before End is consulted; End additionally applies the
// step budget.
func (a *Assemble) End(t *timestep.TimeStep) bool {
	if t.Last() {
		return true
	}
	return a.stepLimit.End(t)
}

// Min returns the minimum possible reward
func (a *Assemble) Min() float64 { return math.Inf(-1) }

// Max returns the maximum possible reward
func (a *Assemble) Max() float64 { return math.Inf(1) }

// RewardSpec returns the reward specification for the task
func (a *Assemble) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{a.Min()})
	high := mat.NewVecDense(1, []float64{a.Max()})

	return environment.NewSpec(shape, environment.Reward, low, high,
		environment.Continuous)
}
