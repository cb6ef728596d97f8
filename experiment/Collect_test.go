package experiment

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gofurniture/environment/furniture"
	"github.com/samuelfneumann/gofurniture/experiment/trackers"
	ts "github.com/samuelfneumann/gofurniture/timestep"
)

const testNu = 8

type stillController struct{}

func (stillController) SelectAction(_ ts.TimeStep) *mat.VecDense {
	ac := mat.NewVecDense(testNu, nil)
	ac.SetVec(testNu-2, -1)
	ac.SetVec(testNu-1, -1)
	return ac
}

// testFrame is a minimal single-connection scene the reward machinery
// accepts: wrist above the part, nothing touching, nothing moving
func testFrame() furniture.Frame {
	return furniture.Frame{
		Pos: map[string][]float64{
			furniture.SiteGripTip: {0.2, 0, 0.15},
			furniture.SiteGrip:    {0.2, 0, 0.17},

			"base":      {0, 0, 0},
			"base_site": {0.1, 0.1, 0.05},

			"leg":            {0.2, 0, 0.0175},
			"leg_site":       {0.2, 0, 0.0175},
			"leg_ltgt_site0": {0.19, 0, 0.0175},
			"leg_rtgt_site0": {0.21, 0, 0.0175},
		},
		Up: map[string][]float64{
			furniture.SiteGrip: {0, 0, -1},
			"leg_site":         {1, 0, 0},
			"base_site":        {0, 0, 1},
		},
		Forward: map[string][]float64{
			furniture.SiteGrip: {1, 0, 0},
			"leg_site":         {0, 1, 0},
			"base_site":        {0, 1, 0},
		},
		Contact: map[string][2]bool{
			"leg": {false, false},
		},
	}
}

func newTestEnv(t *testing.T, cutoff int) *furniture.Furniture {
	t.Helper()

	physics, err := furniture.NewScripted(testNu,
		[]furniture.Frame{testFrame()})
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}

	recipe := &furniture.Recipe{
		Name:      "block",
		ZFineDist: 0.02,
		Connections: []furniture.Connection{{
			Leg:       "leg",
			Table:     "base",
			LegSite:   "leg_site",
			TableSite: "base_site",
		}},
	}
	task, err := furniture.NewAssemble(recipe, furniture.DefaultConfig(),
		cutoff, nil)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}

	env, _, err := furniture.New(physics, task, nil, 1)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

func TestCollectRunsEpisodesAndTracks(t *testing.T) {
	env := newTestEnv(t, 5)

	dir := t.TempDir()
	returnFile := filepath.Join(dir, "returns.bin")
	phaseFile := filepath.Join(dir, "phases.bin")

	exp := NewCollect(env, stillController{}, 10, nil,
		trackers.NewReturn(returnFile), trackers.NewPhase(env, phaseFile))
	exp.Run()
	exp.Save()

	returns, err := trackers.LoadData(returnFile)
	if err != nil {
		t.Fatalf("could not load returns: %v", err)
	}
	// 10 total steps at a 5-step cutoff is exactly two episodes
	if len(returns) != 2 {
		t.Fatalf("tracked %v returns, expected 2", len(returns))
	}
	if returns[0] != returns[1] {
		t.Errorf("identical scripted episodes gave different returns: "+
			"%v != %v", returns[0], returns[1])
	}

	phases, err := trackers.LoadData(phaseFile)
	if err != nil {
		t.Fatalf("could not load phases: %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("tracked %v phases, expected 2", len(phases))
	}
	// a motionless trace never leaves the first phase
	for i, phase := range phases {
		if phase != 0 {
			t.Errorf("episode %v: final phase = %v, expected 0", i, phase)
		}
	}
}

func TestCollectRegister(t *testing.T) {
	env := newTestEnv(t, 3)

	dir := t.TempDir()
	returnFile := filepath.Join(dir, "returns.bin")

	exp := NewCollect(env, stillController{}, 3, nil)
	exp.Register(trackers.NewReturn(returnFile))
	exp.Run()
	exp.Save()

	returns, err := trackers.LoadData(returnFile)
	if err != nil {
		t.Fatalf("could not load returns: %v", err)
	}
	if len(returns) != 1 {
		t.Fatalf("tracked %v returns, expected 1", len(returns))
	}
}
