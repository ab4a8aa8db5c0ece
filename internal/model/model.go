package model

import (
	"time"

	"github.com/treemark/anchor/pkg/core"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&PlantedPoint{},
}

// Session is the table model for a plantation session, one per origin marker.
type Session struct {
	ID         uint           `json:"-" gorm:"primarykey"`
	SessionID  string         `json:"sessionId" gorm:"size:64;uniqueIndex"`
	OriginID   string         `json:"originId" gorm:"size:127;uniqueIndex"`
	Name       string         `json:"name" gorm:"size:127"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	RawPayload datatypes.JSON `json:"rawPayload"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`

	Points []PlantedPoint `json:"points" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:SessionOriginID;references:OriginID"`
}

func (*Session) TableName() string {
	return "sessions"
}

// PlantedPoint is the table model for one planted point. PointNumber is the
// in-session id; rows are read back ordered by it ascending.
type PlantedPoint struct {
	ID                   uint            `json:"-" gorm:"primarykey"`
	SessionOriginID      string          `json:"sessionOriginId" gorm:"size:127;uniqueIndex:idx_points_session_number"`
	PointNumber          uint            `json:"pointNumber" gorm:"uniqueIndex:idx_points_session_number"`
	Name                 string          `json:"name" gorm:"size:127"`
	OffsetFromOrigin     core.Position3D `json:"offsetFromOrigin" gorm:"embedded;embeddedPrefix:offset_origin_"`
	OffsetFromPrevious   core.Position3D `json:"offsetFromPrevious" gorm:"embedded;embeddedPrefix:offset_previous_"`
	PreviousPointID      uint            `json:"previousPointId"`
	DistanceFromPrevious float64         `json:"distanceFromPrevious"`
	PlacedAt             time.Time       `json:"placedAt"`
}

func (*PlantedPoint) TableName() string {
	return "planted_points"
}
