package core

import (
	"fmt"
	"time"
)

// OriginPointID is the sentinel PreviousPointID meaning "previous is the
// origin marker itself". Only the first point of a session carries it.
const OriginPointID uint = 0

// PlantedPoint is the persisted representation of a marker planted in the
// field. Positions are never stored absolutely: the point carries its offset
// from the session origin and its offset from the previously planted point,
// so the whole layout can be rebuilt later from any single known point.
type PlantedPoint struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	OffsetFromOrigin     Position3D `json:"offsetFromOrigin"`
	OffsetFromPrevious   Position3D `json:"offsetFromPrevious"`
	PreviousPointID      uint       `json:"previousPointId"`
	DistanceFromPrevious float64    `json:"distanceFromPrevious"`
	PlacedAt             time.Time  `json:"placedAt"`
}

// ResolvedPoint pairs a stored point with its currently resolved world
// position under the active reference frame.
type ResolvedPoint struct {
	Point         PlantedPoint
	WorldPosition Position3D
}

// DefaultPointName derives the display label for a point id.
func DefaultPointName(id uint) string {
	return fmt.Sprintf("Tree %d", id)
}

// BuildPoint constructs a PlantedPoint from the current world position, the
// origin world position, and the previously planted point (nil for the first
// point of a session). For the first point the previous-offset equals the
// origin-offset and PreviousPointID is OriginPointID.
func BuildPoint(id uint, name string, current, origin Position3D, previous *ResolvedPoint, placedAt time.Time) PlantedPoint {
	p := PlantedPoint{
		ID:               id,
		Name:             name,
		OffsetFromOrigin: current.Sub(origin),
		PlacedAt:         placedAt,
	}

	if previous == nil {
		p.OffsetFromPrevious = p.OffsetFromOrigin
		p.PreviousPointID = OriginPointID
	} else {
		p.OffsetFromPrevious = current.Sub(previous.WorldPosition)
		p.PreviousPointID = previous.Point.ID
	}
	p.DistanceFromPrevious = p.OffsetFromPrevious.Magnitude()

	return p
}
