package geo

import (
	"testing"

	"github.com/treemark/anchor/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition3DFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    core.Position3D
		wantErr bool
	}{
		{"full triple", "1.5,2.25,-3", core.Position3D{X: 1.5, Y: 2.25, Z: -3}, false},
		{"two components", "4,5", core.Position3D{X: 4, Y: 5, Z: 0}, false},
		{"spaces tolerated", " 1 , 2 , 3 ", core.Position3D{X: 1, Y: 2, Z: 3}, false},
		{"single component", "1", core.Position3D{}, true},
		{"garbage x", "abc,2,3", core.Position3D{}, true},
		{"garbage y", "1,abc,3", core.Position3D{}, true},
		{"garbage z", "1,2,abc", core.Position3D{}, true},
		{"empty", "", core.Position3D{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Position3DFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoords3857From4326(t *testing.T) {
	// Null Island maps to the 3857 origin
	point, err := Coords3857From4326(0, 0)
	require.NoError(t, err)
	xy, ok := point.XY()
	require.True(t, ok)
	assert.InDelta(t, 0, xy.X, 1e-6)
	assert.InDelta(t, 0, xy.Y, 1e-6)

	// A known projection: 16.37°E 48.21°N (Vienna)
	point, err = Coords3857From4326(16.37, 48.21)
	require.NoError(t, err)
	xy, ok = point.XY()
	require.True(t, ok)
	assert.InDelta(t, 1822300, xy.X, 2000)
	assert.InDelta(t, 6141400, xy.Y, 5000)
}

func TestMarkerLocationWKT(t *testing.T) {
	wkt, err := MarkerLocationWKT(0, 0)
	require.NoError(t, err)
	assert.Contains(t, wkt, "POINT")
}
