// Package convert maps between core domain values and the GORM table models.
package convert

import (
	"github.com/treemark/anchor/internal/model"
	"github.com/treemark/anchor/pkg/core"

	"gorm.io/datatypes"
)

// SessionToGorm converts a core.Session to its table model, points included.
func SessionToGorm(s core.Session) model.Session {
	gs := model.Session{
		SessionID:  s.SessionID,
		OriginID:   s.OriginID,
		Name:       s.DisplayName,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		RawPayload: datatypes.JSON(s.RawPayload),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	for _, p := range s.Points {
		gs.Points = append(gs.Points, PointToGorm(s.OriginID, p))
	}
	return gs
}

// SessionToCore converts a table model back to a core.Session.
// Points keep the order they were given in (callers load them ordered by
// point_number ascending).
func SessionToCore(gs model.Session) core.Session {
	s := core.Session{
		SessionID:   gs.SessionID,
		OriginID:    gs.OriginID,
		DisplayName: gs.Name,
		Latitude:    gs.Latitude,
		Longitude:   gs.Longitude,
		RawPayload:  []byte(gs.RawPayload),
		CreatedAt:   gs.CreatedAt,
		UpdatedAt:   gs.UpdatedAt,
	}
	for _, gp := range gs.Points {
		s.Points = append(s.Points, PointToCore(gp))
	}
	return s
}

// PointToGorm converts a core.PlantedPoint to its table model.
func PointToGorm(originID string, p core.PlantedPoint) model.PlantedPoint {
	return model.PlantedPoint{
		SessionOriginID:      originID,
		PointNumber:          p.ID,
		Name:                 p.Name,
		OffsetFromOrigin:     p.OffsetFromOrigin,
		OffsetFromPrevious:   p.OffsetFromPrevious,
		PreviousPointID:      p.PreviousPointID,
		DistanceFromPrevious: p.DistanceFromPrevious,
		PlacedAt:             p.PlacedAt,
	}
}

// PointToCore converts a table model back to a core.PlantedPoint.
func PointToCore(gp model.PlantedPoint) core.PlantedPoint {
	return core.PlantedPoint{
		ID:                   gp.PointNumber,
		Name:                 gp.Name,
		OffsetFromOrigin:     gp.OffsetFromOrigin,
		OffsetFromPrevious:   gp.OffsetFromPrevious,
		PreviousPointID:      gp.PreviousPointID,
		DistanceFromPrevious: gp.DistanceFromPrevious,
		PlacedAt:             gp.PlacedAt,
	}
}
