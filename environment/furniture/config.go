package furniture

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config holds the reward coefficients, success thresholds, and mode
// flags of the dense-reward task. All values are fixed at construction.
type Config struct {
	// DiffReward selects potential-based (differential) reward shaping
	// instead of absolute negative distances
	DiffReward bool `koanf:"diff_rew"`

	// PhaseBonus is the bonus awarded on a successful forward phase
	// transition. The move_leg and connect transitions award five
	// times this value.
	PhaseBonus float64 `koanf:"phase_bonus"`

	CtrlPenaltyCoef    float64 `koanf:"ctrl_penalty_coef"`
	GripperPenaltyCoef float64 `koanf:"gripper_penalty_coef"`

	PosThreshold  float64 `koanf:"pos_threshold"`
	RotThreshold  float64 `koanf:"rot_threshold"`
	ProjThreshold float64 `koanf:"proj_threshold"`

	EEFPosDistCoef      float64 `koanf:"eef_pos_dist_coef"`
	EEFRotDistCoef      float64 `koanf:"eef_rot_dist_coef"`
	EEFUpRotDistCoef    float64 `koanf:"eef_up_rot_dist_coef"`
	LowerEEFPosDistCoef float64 `koanf:"lower_eef_pos_dist_coef"`
	GraspDistCoef       float64 `koanf:"grasp_dist_coef"`
	LiftDistCoef        float64 `koanf:"lift_dist_coef"`
	TouchCoef           float64 `koanf:"touch_coef"`

	AlignPosDistCoef  float64 `koanf:"align_pos_dist_coef"`
	AlignRotDistCoef  float64 `koanf:"align_rot_dist_coef"`
	AlignPosThreshold float64 `koanf:"align_pos_threshold"`
	AlignRotThreshold float64 `koanf:"align_rot_threshold"`

	MovePosDistCoef  float64 `koanf:"move_pos_dist_coef"`
	MoveRotDistCoef  float64 `koanf:"move_rot_dist_coef"`
	MovePosThreshold float64 `koanf:"move_pos_threshold"`
	MoveRotThreshold float64 `koanf:"move_rot_threshold"`

	MoveFinePosDistCoef float64 `koanf:"move_fine_pos_dist_coef"`
	MoveFineRotDistCoef float64 `koanf:"move_fine_rot_dist_coef"`

	AlignedBonusCoef         float64 `koanf:"aligned_bonus_coef"`
	MoveOtherPartPenaltyCoef float64 `koanf:"move_other_part_penalty_coef"`

	// Preassembled is the number of leading connections already made
	// when an episode starts; the first subtask begins at this index
	Preassembled int `koanf:"preassembled"`
}

// DefaultConfig returns the hand-tuned default reward configuration
func DefaultConfig() Config {
	return Config{
		DiffReward: true,
		PhaseBonus: 5000,

		CtrlPenaltyCoef:    0.001,
		GripperPenaltyCoef: 0.05,

		PosThreshold:  0.015,
		RotThreshold:  0.05,
		ProjThreshold: 0.1,

		EEFPosDistCoef:      50,
		EEFRotDistCoef:      2,
		EEFUpRotDistCoef:    2,
		LowerEEFPosDistCoef: 500,
		GraspDistCoef:       200,
		LiftDistCoef:        500,
		TouchCoef:           10,

		AlignPosDistCoef:  500,
		AlignRotDistCoef:  50,
		AlignPosThreshold: 0.05,
		AlignRotThreshold: 0.85,

		MovePosDistCoef:  500,
		MoveRotDistCoef:  50,
		MovePosThreshold: 0.06,
		MoveRotThreshold: 0.75,

		MoveFinePosDistCoef: 500,
		MoveFineRotDistCoef: 100,

		AlignedBonusCoef:         10,
		MoveOtherPartPenaltyCoef: 100,
	}
}

// Validate checks the configuration for values that would break the
// reward contracts
func (c Config) Validate() error {
	coefs := map[string]float64{
		"phase_bonus":                  c.PhaseBonus,
		"ctrl_penalty_coef":            c.CtrlPenaltyCoef,
		"gripper_penalty_coef":         c.GripperPenaltyCoef,
		"eef_pos_dist_coef":            c.EEFPosDistCoef,
		"eef_rot_dist_coef":            c.EEFRotDistCoef,
		"eef_up_rot_dist_coef":         c.EEFUpRotDistCoef,
		"lower_eef_pos_dist_coef":      c.LowerEEFPosDistCoef,
		"grasp_dist_coef":              c.GraspDistCoef,
		"lift_dist_coef":               c.LiftDistCoef,
		"touch_coef":                   c.TouchCoef,
		"align_pos_dist_coef":          c.AlignPosDistCoef,
		"align_rot_dist_coef":          c.AlignRotDistCoef,
		"move_pos_dist_coef":           c.MovePosDistCoef,
		"move_rot_dist_coef":           c.MoveRotDistCoef,
		"move_fine_pos_dist_coef":      c.MoveFinePosDistCoef,
		"move_fine_rot_dist_coef":      c.MoveFineRotDistCoef,
		"aligned_bonus_coef":           c.AlignedBonusCoef,
		"move_other_part_penalty_coef": c.MoveOtherPartPenaltyCoef,
	}
	for name, v := range coefs {
		if v < 0 {
			return fmt.Errorf("config: %v must be non-negative, got %v",
				name, v)
		}
	}

	thresholds := map[string]float64{
		"pos_threshold":       c.PosThreshold,
		"rot_threshold":       c.RotThreshold,
		"proj_threshold":      c.ProjThreshold,
		"align_pos_threshold": c.AlignPosThreshold,
		"move_pos_threshold":  c.MovePosThreshold,
	}
	for name, v := range thresholds {
		if v <= 0 {
			return fmt.Errorf("config: %v must be positive, got %v", name, v)
		}
	}

	if c.AlignRotThreshold <= -1 || c.AlignRotThreshold >= 1 {
		return fmt.Errorf("config: align_rot_threshold must be a cosine "+
			"floor in (-1, 1), got %v", c.AlignRotThreshold)
	}
	if c.MoveRotThreshold <= -1 || c.MoveRotThreshold >= 1 {
		return fmt.Errorf("config: move_rot_threshold must be a cosine "+
			"floor in (-1, 1), got %v", c.MoveRotThreshold)
	}
	if c.Preassembled < 0 {
		return fmt.Errorf("config: preassembled must be non-negative, "+
			"got %v", c.Preassembled)
	}
	return nil
}

// LoadConfig overlays a YAML document onto the default configuration
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not parse: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return cfg, nil
}
