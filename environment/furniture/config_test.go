package furniture

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte("phase_bonus: 1000\ndiff_rew: false\n"))
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}

	if cfg.PhaseBonus != 1000 {
		t.Errorf("phase_bonus = %v, expected 1000", cfg.PhaseBonus)
	}
	if cfg.DiffReward {
		t.Error("diff_rew = true, expected false")
	}

	// untouched fields keep their defaults
	if cfg.LiftDistCoef != DefaultConfig().LiftDistCoef {
		t.Errorf("lift_dist_coef = %v, expected default %v", cfg.LiftDistCoef,
			DefaultConfig().LiftDistCoef)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative coefficient", "phase_bonus: -1\n"},
		{"non-positive threshold", "pos_threshold: 0\n"},
		{"cosine floor out of range", "move_rot_threshold: 1.5\n"},
		{"negative preassembled", "preassembled: -1\n"},
	}

	for _, test := range tests {
		if _, err := LoadConfig([]byte(test.yaml)); err == nil {
			t.Errorf("%v: expected an error", test.name)
		}
	}
}
