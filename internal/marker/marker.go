// Package marker decodes the payload of a scanned origin marker code.
// Malformed payloads are rejected here so the engine never sees them.
package marker

import (
	"encoding/json"
	"fmt"

	"github.com/treemark/anchor/pkg/core"
)

// Decode parses a scanned code payload into MarkerData. The payload is a
// JSON object {"id": ..., "name": ..., "lat": ..., "lon": ...}. Any decode
// or validation failure wraps core.ErrInvalidMarkerData; callers should tell
// the scanner to keep scanning.
func Decode(payload []byte) (core.MarkerData, error) {
	var m core.MarkerData
	if err := json.Unmarshal(payload, &m); err != nil {
		return core.MarkerData{}, fmt.Errorf("%w: %v", core.ErrInvalidMarkerData, err)
	}
	if err := m.Validate(); err != nil {
		return core.MarkerData{}, err
	}
	m.Raw = append([]byte(nil), payload...)
	return m, nil
}
