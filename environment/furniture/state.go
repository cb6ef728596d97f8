package furniture

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// rewardState carries the mutable per-subtask reward variables:
// potential-based baselines, one-shot flags, and the fine-alignment
// streak counter. It is re-seeded by updateRewardVariables at every
// subtask start and never read outside the task.
type rewardState struct {
	// Current connection of interest
	leg, table         string
	legSite, tableSite string
	angles             []float64
	g1, g2             string

	// One-shot flags
	legTouched bool
	legLift    bool

	// Positions recorded at subtask start
	initTableSitePos *mat.VecDense
	initLegPos       *mat.VecDense
	liftTarget       *mat.VecDense

	// Position recorded at lift completion, target of align_leg
	alignLegPos *mat.VecDense

	// Consecutive fully-aligned frames before connecting
	fineAligned int

	// Potential-based shaping baselines
	prevEEFAboveLegDist    float64
	prevEEFLegDist         float64
	prevGraspDist          float64
	prevLiftLegZDist       float64
	prevLiftLegXYDist      float64
	prevMovePosDist        float64
	prevMoveAngDist        float64
	prevMoveForwardAngDist float64
	prevProjT, prevProjL   float64
}

// resetRewardVariables re-initializes all per-episode reward state.
// Called at episode reset; honors the preassembled connection offset.
func (a *Assemble) resetRewardVariables() {
	a.success = false
	a.subtask = a.cfg.Preassembled
	a.updateRewardVariables(a.subtask)
}

// updateRewardVariables re-seeds the reward variables for the given
// subtask. Called at every subtask boundary, it guarantees that all
// potential-based baselines are initialized before first use.
func (a *Assemble) updateRewardVariables(subtask int) {
	a.phase = MoveEEFAboveLeg

	conn := a.recipe.Connections[subtask]
	a.rs = rewardState{
		leg:       conn.Leg,
		table:     conn.Table,
		legSite:   conn.LegSite,
		tableSite: conn.TableSite,
		angles:    conn.Angles,
	}
	a.rs.g1, a.rs.g2 = conn.gripSites()

	a.rs.initTableSitePos = mustPos(a.physics, a.rs.tableSite)
	a.rs.initLegPos = mustPos(a.physics, a.rs.leg)
	a.rs.liftTarget = vecutils.Offset(a.rs.initLegPos, 0, 0, liftOffset)

	if a.cfg.DiffReward {
		eefPos := mustPos(a.physics, SiteGripTip)
		legPos := a.legGraspPos()
		legPos.SetVec(2, aboveLegZ)
		a.rs.prevEEFAboveLegDist = vecutils.XYDist(eefPos, legPos) +
			vecutils.ZDist(eefPos, legPos)
		a.rs.prevGraspDist = -1
		a.rs.prevLiftLegZDist = liftOffset
		a.rs.prevLiftLegXYDist = 0
	}
}

// setNextSubtask advances to the next connection, returning true when
// all attaching steps are complete
func (a *Assemble) setNextSubtask() bool {
	a.subtask++
	if a.subtask == a.recipe.NumConnections() {
		return true
	}
	a.logger.Info("starting next subtask",
		zap.Int("subtask", a.subtask),
		zap.String("leg", a.recipe.Connections[a.subtask].Leg))
	a.updateRewardVariables(a.subtask)
	return false
}

// legGraspPos returns the midpoint of the two grasp target sites on
// the current moving part
func (a *Assemble) legGraspPos() *mat.VecDense {
	p1 := mustPos(a.physics, a.rs.g1)
	p2 := mustPos(a.physics, a.rs.g2)
	out := mat.NewVecDense(3, nil)
	out.AddVec(p1, p2)
	out.ScaleVec(0.5, out)
	return out
}

// legGraspVector returns the grasp-axis vector between the two grasp
// target sites
func (a *Assemble) legGraspVector() *mat.VecDense {
	return vecutils.Sub(mustPos(a.physics, a.rs.g2),
		mustPos(a.physics, a.rs.g1))
}
