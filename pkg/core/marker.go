// pkg/core/marker.go
package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMarkerData is returned when a scanned marker payload fails
// validation. The scanning collaborator should discard the scan and keep
// scanning.
var ErrInvalidMarkerData = errors.New("invalid marker data")

// MarkerData is the metadata decoded from a scanned origin marker.
// Lat/Lon locate the marker geographically and are informational only; the
// session's working coordinates are always relative to the marker pose.
type MarkerData struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	// Raw is the payload bytes as scanned, retained on the session record.
	Raw []byte `json:"-"`
}

// Validate checks the marker fields before the engine is allowed to see them.
func (m MarkerData) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidMarkerData)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidMarkerData)
	}
	if math.IsNaN(m.Lat) || m.Lat < -90 || m.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidMarkerData, m.Lat)
	}
	if math.IsNaN(m.Lon) || m.Lon < -180 || m.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidMarkerData, m.Lon)
	}
	return nil
}
