// Package reconstruct recovers the world positions of every point in a
// session from the stored offset chain and the current position of a single
// known point. The origin marker does not need to be visible, or to still
// exist, for this to work.
package reconstruct

import (
	"errors"
	"fmt"
	"math"

	"github.com/treemark/anchor/pkg/core"
)

// ErrPointNotFound is returned when the anchor point id is not in the session.
var ErrPointNotFound = errors.New("point not found in session")

// ErrCorruptChain is returned when the stored offset chain fails verification.
var ErrCorruptChain = errors.New("corrupt offset chain")

// chainTolerance is the per-component tolerance when checking the offset
// identity. Offsets come from float32-era pose sources; 1e-5 is well above
// their noise floor for human-scale distances.
const chainTolerance = 1e-5

// Reconstruct computes the world position of every point in the session
// given the current world position of one known point, and the implied world
// position of the origin.
//
// The walk is strictly in insertion order, never numeric id order: ids are
// assigned in insertion order today but are not guaranteed contiguous.
func Reconstruct(points []core.PlantedPoint, knownID uint, knownPos core.Position3D) (map[uint]core.Position3D, core.Position3D, error) {
	knownIdx := -1
	for i := range points {
		if points[i].ID == knownID {
			knownIdx = i
			break
		}
	}
	if knownIdx < 0 {
		return nil, core.Position3D{}, fmt.Errorf("%w: id %d", ErrPointNotFound, knownID)
	}

	positions := make(map[uint]core.Position3D, len(points))
	positions[knownID] = knownPos

	// Forward: each later point sits at its predecessor plus its own
	// offset-from-previous.
	for i := knownIdx + 1; i < len(points); i++ {
		prev := positions[points[i-1].ID]
		positions[points[i].ID] = prev.Add(points[i].OffsetFromPrevious)
	}

	// Backward: each earlier point sits at its successor minus the
	// successor's offset-from-previous. The successor is always resolved
	// already.
	for i := knownIdx - 1; i >= 0; i-- {
		next := points[i+1]
		positions[points[i].ID] = positions[next.ID].Sub(next.OffsetFromPrevious)
	}

	origin := knownPos.Sub(points[knownIdx].OffsetFromOrigin)
	return positions, origin, nil
}

// RestoreFromOrigin resolves every point's world position directly from a
// known origin position. Used on calibration when the origin marker itself
// has been located again.
func RestoreFromOrigin(points []core.PlantedPoint, origin core.Position3D) map[uint]core.Position3D {
	positions := make(map[uint]core.Position3D, len(points))
	for _, p := range points {
		positions[p.ID] = origin.Add(p.OffsetFromOrigin)
	}
	return positions
}

// VerifyChain checks the stored chain invariants for a session's points in
// insertion order: the first point links to the origin with equal offsets,
// every later point links to the point immediately before it, and the
// offset-from-previous matches the difference of the origin offsets.
// Reconstruction over a chain that fails this check would silently drift, so
// stores run it on load and fail loudly instead.
func VerifyChain(points []core.PlantedPoint) error {
	for i, p := range points {
		if i == 0 {
			if p.PreviousPointID != core.OriginPointID {
				return fmt.Errorf("%w: first point %d links to %d, want origin", ErrCorruptChain, p.ID, p.PreviousPointID)
			}
			if !withinTolerance(p.OffsetFromPrevious, p.OffsetFromOrigin) {
				return fmt.Errorf("%w: first point %d offsets differ", ErrCorruptChain, p.ID)
			}
			continue
		}

		prev := points[i-1]
		if p.PreviousPointID != prev.ID {
			return fmt.Errorf("%w: point %d links to %d, want %d", ErrCorruptChain, p.ID, p.PreviousPointID, prev.ID)
		}
		want := p.OffsetFromOrigin.Sub(prev.OffsetFromOrigin)
		if !withinTolerance(p.OffsetFromPrevious, want) {
			return fmt.Errorf("%w: point %d offset-from-previous does not match origin offsets", ErrCorruptChain, p.ID)
		}
	}
	return nil
}

func withinTolerance(a, b core.Position3D) bool {
	return math.Abs(a.X-b.X) <= chainTolerance &&
		math.Abs(a.Y-b.Y) <= chainTolerance &&
		math.Abs(a.Z-b.Z) <= chainTolerance
}
