package furniture

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gofurniture/utils/vecutils"
)

// placementRetries is the number of placement attempts per part before
// sampling is abandoned
const placementRetries = 10000

// Part describes one furniture part to be placed at episode reset: its
// nominal pose and the horizontal radius used for overlap rejection.
type Part struct {
	Name    string
	Radius  float64
	InitPos *mat.VecDense
	InitRot quat.Number
}

// Pose is a sampled part placement
type Pose struct {
	Pos *mat.VecDense
	Rot quat.Number
}

// PlacementSampler places furniture parts uniformly at random around
// their nominal poses on the table surface, rejecting placements that
// would overlap already placed parts. Orientation noise is a uniform
// rotation about the world z axis.
type PlacementSampler struct {
	parts    []Part
	tableTop *mat.VecDense

	xyRng  distuv.Uniform
	rotRng distuv.Uniform
}

// NewPlacementSampler returns a new PlacementSampler. Positions are
// perturbed by up to ±rXY length units in x and y around each part's
// nominal position; rotations are perturbed within rotRange (degrees)
// about the z axis. The tableTop offset locates the table surface
// center in the world frame.
func NewPlacementSampler(parts []Part, tableTop *mat.VecDense, rXY float64,
	rotRange r1.Interval, seed uint64) (*PlacementSampler, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("newPlacementSampler: no parts to place")
	}
	for i, part := range parts {
		if part.Name == "" {
			return nil, fmt.Errorf("newPlacementSampler: part %v has no "+
				"name", i)
		}
		if part.Radius <= 0 {
			return nil, fmt.Errorf("newPlacementSampler: part %v has "+
				"non-positive radius %v", part.Name, part.Radius)
		}
		if part.InitPos == nil || part.InitPos.Len() != 3 {
			return nil, fmt.Errorf("newPlacementSampler: part %v needs a "+
				"3D nominal position", part.Name)
		}
	}
	if rXY <= 0 {
		return nil, fmt.Errorf("newPlacementSampler: placement range must "+
			"be positive, got %v", rXY)
	}
	if rotRange.Min > rotRange.Max {
		return nil, fmt.Errorf("newPlacementSampler: invalid rotation "+
			"range [%v, %v]", rotRange.Min, rotRange.Max)
	}

	xySrc := rand.NewSource(seed)
	rotSrc := rand.NewSource(seed)

	return &PlacementSampler{
		parts:    parts,
		tableTop: tableTop,
		xyRng:    distuv.Uniform{Min: -rXY, Max: rXY, Src: xySrc},
		rotRng: distuv.Uniform{Min: rotRange.Min, Max: rotRange.Max,
			Src: rotSrc},
	}, nil
}

// Sample draws a non-overlapping placement for every part. Parts are
// placed in order; each is retried until it clears all previously
// placed parts by the sum of their horizontal radii. Sample returns an
// error if any part cannot be placed.
func (s *PlacementSampler) Sample() (map[string]Pose, error) {
	type placed struct {
		x, y, radius float64
	}

	poses := make(map[string]Pose, len(s.parts))
	var laid []placed

	for _, part := range s.parts {
		ok := false
		for i := 0; i < placementRetries; i++ {
			x := part.InitPos.AtVec(0) + s.xyRng.Rand()
			y := part.InitPos.AtVec(1) + s.xyRng.Rand()
			// slightly above the table so parts settle without clipping
			z := part.InitPos.AtVec(2) + 0.01

			valid := true
			for _, p := range laid {
				if math.Hypot(x-p.x, y-p.y) <= p.radius+part.Radius {
					valid = false
					break
				}
			}
			if !valid {
				continue
			}

			pos := mat.NewVecDense(3, []float64{
				s.tableTop.AtVec(0) + x,
				s.tableTop.AtVec(1) + y,
				s.tableTop.AtVec(2) + z,
			})
			noise := vecutils.EulerZQuat(s.rotRng.Rand() * math.Pi / 180)
			poses[part.Name] = Pose{
				Pos: pos,
				Rot: quat.Mul(noise, part.InitRot),
			}
			laid = append(laid, placed{x, y, part.Radius})
			ok = true
			break
		}
		if !ok {
			return nil, fmt.Errorf("sample: cannot place part %v on the "+
				"table after %v attempts", part.Name, placementRetries)
		}
	}
	return poses, nil
}
