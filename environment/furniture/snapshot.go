package furniture

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// Snapshot holds all derived sensor quantities needed by the reward
// terms for one simulation step. It is recomputed from the physics
// backend every step, owned exclusively by that step's reward
// computation, and discarded afterwards.
type Snapshot struct {
	// Finger contact flags for the moving part and their conjunction
	Left, Right bool
	Touched     bool

	// Moving part body position and whether it has cleared the lift
	// target height
	LegPos *mat.VecDense
	Lift   bool

	// Alignment site positions; AboveTableSitePos is the target site
	// offset vertically by the recipe's fine-approach clearance
	LegSitePos        *mat.VecDense
	TableSitePos      *mat.VecDense
	AboveTableSitePos *mat.VecDense

	// Site-to-site and site-to-above-point distances
	MovePosDist      float64
	MoveAbovePosDist float64

	// Orientation vectors and their cosine similarities. TargetForward
	// is the projected reference direction when the connection allows
	// specific relative angles, otherwise the leg's own forward vector.
	LegUp, TableUp     *mat.VecDense
	MoveAngDist        float64
	LegForward         *mat.VecDense
	TargetForward      *mat.VecDense
	MoveForwardAngDist float64

	// Fine-alignment projection cosines
	ProjTable, ProjLeg float64

	// Cumulative displacement of the target part since subtask start
	TableDisplacement float64
}

// collectValues reads the physics backend and assembles the sensor
// snapshot for the current subtask. Pure transformation; callable at
// any time after a subtask is initialized.
func (a *Assemble) collectValues() *Snapshot {
	left, right := mustContact(a.physics, a.rs.leg)

	legUp := mustUp(a.physics, a.rs.legSite)
	tableUp := mustUp(a.physics, a.rs.tableSite)
	legForward := mustForward(a.physics, a.rs.legSite)

	var targetForward *mat.VecDense
	if len(a.rs.angles) > 0 {
		targetForward = a.projectConnectorForward(legForward)
	} else {
		targetForward = legForward
	}

	legSitePos := mustPos(a.physics, a.rs.legSite)
	legPos := mustPos(a.physics, a.rs.leg)
	tableSitePos := mustPos(a.physics, a.rs.tableSite)
	aboveTableSitePos := vecutils.Offset(tableSitePos, 0, 0,
		a.recipe.ZFineDist)

	return &Snapshot{
		Left:    left,
		Right:   right,
		Touched: left && right,

		LegPos: legPos,
		Lift:   legPos.AtVec(2) > a.rs.liftTarget.AtVec(2),

		LegSitePos:        legSitePos,
		TableSitePos:      tableSitePos,
		AboveTableSitePos: aboveTableSitePos,

		MovePosDist:      vecutils.Dist(tableSitePos, legSitePos),
		MoveAbovePosDist: vecutils.Dist(aboveTableSitePos, legSitePos),

		LegUp:              legUp,
		TableUp:            tableUp,
		MoveAngDist:        vecutils.CosSim(legUp, tableUp),
		LegForward:         legForward,
		TargetForward:      targetForward,
		MoveForwardAngDist: vecutils.CosSim(legForward, targetForward),

		ProjTable: vecutils.CosSim(vecutils.Scaled(tableUp, -1),
			vecutils.Sub(legSitePos, tableSitePos)),
		ProjLeg: vecutils.CosSim(legUp,
			vecutils.Sub(tableSitePos, legSitePos)),

		TableDisplacement: vecutils.Dist(tableSitePos,
			a.rs.initTableSitePos),
	}
}

// projectConnectorForward computes the reference forward direction for
// a connection that is only allowed at specific relative angles: the
// target site's forward vector rotated about its up axis by each
// allowed angle, keeping the candidate closest to the leg's current
// forward vector.
func (a *Assemble) projectConnectorForward(legForward *mat.VecDense) *mat.VecDense {
	tableUp := mustUp(a.physics, a.rs.tableSite)
	tableForward := mustForward(a.physics, a.rs.tableSite)

	best := tableForward
	bestSim := math.Inf(-1)
	for _, deg := range a.rs.angles {
		candidate := vecutils.RotateAbout(tableForward, tableUp,
			deg*math.Pi/180)
		if sim := vecutils.CosSim(candidate, legForward); sim > bestSim {
			best = candidate
			bestSim = sim
		}
	}
	return best
}
