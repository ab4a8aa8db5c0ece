// pkg/core/session.go
package core

import "time"

// Session is the durable record of all points planted relative to one
// origin marker. Points are kept in insertion order; that order defines the
// offset chain and must never be rearranged.
type Session struct {
	SessionID   string
	OriginID    string
	DisplayName string
	Latitude    float64
	Longitude   float64
	RawPayload  []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Points      []PlantedPoint
}

// LastPoint returns the most recently planted point, or nil if the session
// has none.
func (s *Session) LastPoint() *PlantedPoint {
	if len(s.Points) == 0 {
		return nil
	}
	return &s.Points[len(s.Points)-1]
}

// NextPointID returns the id the next planted point should receive.
// Ids are assigned monotonically in placement order starting at 1.
func (s *Session) NextPointID() uint {
	if last := s.LastPoint(); last != nil {
		return last.ID + 1
	}
	return 1
}
