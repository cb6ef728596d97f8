package furniture

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Connection describes one attachment to be made: a moving part (the
// "leg"), a target part (the "table"), the sites used for alignment
// measurement, and optionally the relative angles (degrees, about the
// target site's up axis) at which the connection is allowed.
type Connection struct {
	Leg       string    `koanf:"leg"`
	Table     string    `koanf:"table"`
	LegSite   string    `koanf:"leg_site"`
	TableSite string    `koanf:"table_site"`
	Angles    []float64 `koanf:"angles"`

	// GripSites optionally overrides the pair of grasp target sites on
	// the moving part. When empty, "<leg>_ltgt_site0" and
	// "<leg>_rtgt_site0" are used.
	GripSites []string `koanf:"grip_sites"`
}

// gripSites returns the pair of grasp target site names for the
// connection
func (c Connection) gripSites() (string, string) {
	if len(c.GripSites) == 2 {
		return c.GripSites[0], c.GripSites[1]
	}
	return c.Leg + "_ltgt_site0", c.Leg + "_rtgt_site0"
}

// Recipe is the static per-furniture assembly description: the ordered
// list of connections to be made, one per subtask, plus the vertical
// clearance used for the coarse "above the connection site" target.
// A Recipe is immutable after load.
type Recipe struct {
	Name        string       `koanf:"name"`
	ZFineDist   float64      `koanf:"z_finedist"`
	Connections []Connection `koanf:"recipe"`
}

// NumConnections returns the number of attachments required to fully
// assemble the furniture
func (r *Recipe) NumConnections() int {
	return len(r.Connections)
}

// Validate checks the recipe for structural errors. Malformed recipes
// are fatal at construction and never silently tolerated.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe has no name")
	}
	if r.ZFineDist <= 0 {
		return fmt.Errorf("recipe %v: z_finedist must be positive, got %v",
			r.Name, r.ZFineDist)
	}
	if len(r.Connections) == 0 {
		return fmt.Errorf("recipe %v: no connections", r.Name)
	}
	for i, c := range r.Connections {
		if c.Leg == "" || c.Table == "" {
			return fmt.Errorf("recipe %v: connection %v: missing part name",
				r.Name, i)
		}
		if c.LegSite == "" || c.TableSite == "" {
			return fmt.Errorf("recipe %v: connection %v: missing site name",
				r.Name, i)
		}
		if len(c.GripSites) != 0 && len(c.GripSites) != 2 {
			return fmt.Errorf("recipe %v: connection %v: grip_sites must "+
				"name exactly two sites, got %v", r.Name, i, len(c.GripSites))
		}
	}
	return nil
}

// LoadRecipe parses a YAML recipe document
func LoadRecipe(data []byte) (*Recipe, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loadRecipe: could not parse recipe: %w", err)
	}

	var recipe Recipe
	if err := k.Unmarshal("", &recipe); err != nil {
		return nil, fmt.Errorf("loadRecipe: could not decode recipe: %w", err)
	}

	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("loadRecipe: %w", err)
	}
	return &recipe, nil
}

// LoadRecipeFile reads and parses a YAML recipe file
func LoadRecipeFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadRecipeFile: %w", err)
	}
	return LoadRecipe(data)
}
