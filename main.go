// Demo: replay a recorded pick-and-lift trace of the first leg of a
// four-leg table through the assembly reward machinery, tracking the
// episodic returns and the phase progress.
package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/environment/furniture"
	"github.com/samuelfneumann/gofurniture/experiment"
	"github.com/samuelfneumann/gofurniture/experiment/trackers"
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

const controlDim = 8

// fixedController replays a constant action: small arm control, gripper
// closed, no connect intent.
type fixedController struct{}

func (fixedController) SelectAction(_ ts.TimeStep) *mat.VecDense {
	action := mat.NewVecDense(controlDim, nil)
	for i := 0; i < controlDim-2; i++ {
		action.SetVec(i, 0.01)
	}
	action.SetVec(controlDim-2, 1)  // gripper closed
	action.SetVec(controlDim-1, -1) // no connect intent
	return action
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	recipe, err := furniture.LoadRecipeFile(
		filepath.Join("environment", "furniture", "assets", "table_lack.yaml"))
	if err != nil {
		panic(err)
	}

	task, err := furniture.NewAssemble(recipe, furniture.DefaultConfig(), 20,
		logger)
	if err != nil {
		panic(err)
	}

	physics, err := furniture.NewScripted(controlDim, demoTrace())
	if err != nil {
		panic(err)
	}

	env, _, err := furniture.New(physics, task, nil, 0.99)
	if err != nil {
		panic(err)
	}

	const returnFile = "returns.bin"
	const phaseFile = "phases.bin"

	exp := experiment.NewCollect(env, fixedController{}, 60, logger,
		trackers.NewReturn(returnFile), trackers.NewPhase(env, phaseFile))
	exp.Run()
	exp.Save()

	returns, err := trackers.LoadData(returnFile)
	if err != nil {
		panic(err)
	}
	phases, err := trackers.LoadData(phaseFile)
	if err != nil {
		panic(err)
	}
	fmt.Println("episodic returns:", returns)
	fmt.Println("final phases:", phases)
}

// demoTrace builds the recorded demonstration: the end effector hovers
// over the first leg, lowers onto it, grasps, and lifts it to the
// target height. The remaining legs and the table stay put.
func demoTrace() []furniture.Frame {
	frames := []furniture.Frame{
		demoFrame(0.15, legStartZ, false),
		demoFrame(0.12, legStartZ, false),
		demoFrame(0.095, legStartZ, false), // hover point reached
		demoFrame(0.05, legStartZ, false),
		demoFrame(0.02, legStartZ, false),
		demoFrame(0.005, legStartZ, false), // lowered onto the grasp point
		demoFrame(0.005, legStartZ, true),  // gripper closed
	}
	// lift the leg, end effector tracking it
	for _, z := range []float64{0.07, 0.12, 0.17, 0.21} {
		frames = append(frames, demoFrame(z, z, true))
	}
	return frames
}

const (
	legStartZ = 0.0175
	tableTopZ = 0.05
)

// demoFrame records one scene state: the end-effector tip height, the
// height of the first leg, and whether the fingers touch it
func demoFrame(eefZ, legZ float64, contact bool) furniture.Frame {
	pos := map[string][]float64{
		furniture.SiteGripTip: {0.2, 0, eefZ},
		furniture.SiteGrip:    {0.2, 0, eefZ + 0.02},

		"table":           {0, 0, 0},
		"table_leg1_site": {0.07, 0.07, tableTopZ},
		"table_leg2_site": {0.07, -0.07, tableTopZ},
		"table_leg3_site": {-0.07, 0.07, tableTopZ},
		"table_leg4_site": {-0.07, -0.07, tableTopZ},

		"leg1":             {0.2, 0, legZ},
		"leg1_corner_site": {0.2, 0, legZ},
		"leg1_ltgt_site0":  {0.19, 0, legZ},
		"leg1_rtgt_site0":  {0.21, 0, legZ},
	}
	for i, p := range [][]float64{
		{0.2, 0.2, legStartZ}, {-0.2, 0, legStartZ}, {-0.2, 0.2, legStartZ},
	} {
		leg := fmt.Sprintf("leg%d", i+2)
		pos[leg] = p
		pos[leg+"_corner_site"] = p
		pos[leg+"_ltgt_site0"] = []float64{p[0] - 0.01, p[1], p[2]}
		pos[leg+"_rtgt_site0"] = []float64{p[0] + 0.01, p[1], p[2]}
	}

	up := map[string][]float64{
		// wrist points straight down
		furniture.SiteGrip: {0, 0, -1},
	}
	forward := map[string][]float64{
		// parallel to the grasp axis of leg1
		furniture.SiteGrip: {1, 0, 0},
	}
	for i := 1; i <= 4; i++ {
		// legs lie on their sides; connection sites face up
		up[fmt.Sprintf("leg%d_corner_site", i)] = []float64{1, 0, 0}
		forward[fmt.Sprintf("leg%d_corner_site", i)] = []float64{0, 0, 1}
		up[fmt.Sprintf("table_leg%d_site", i)] = []float64{0, 0, 1}
		forward[fmt.Sprintf("table_leg%d_site", i)] = []float64{1, 0, 0}
	}

	contacts := map[string][2]bool{
		"leg1": {contact, contact},
		"leg2": {false, false},
		"leg3": {false, false},
		"leg4": {false, false},
	}

	return furniture.Frame{
		Pos:     pos,
		Up:      up,
		Forward: forward,
		Contact: contacts,
	}
}
