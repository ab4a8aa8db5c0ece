package convert

import (
	"testing"
	"time"

	"github.com/treemark/anchor/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() core.Session {
	placed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return core.Session{
		SessionID:   "6f1e1f9c-9c0a-4f8e-9f67-1f9f1b9a2d11",
		OriginID:    "plot-7",
		DisplayName: "North Field",
		Latitude:    48.21,
		Longitude:   16.37,
		RawPayload:  []byte(`{"id":"plot-7"}`),
		CreatedAt:   placed.Add(-time.Hour),
		UpdatedAt:   placed,
		Points: []core.PlantedPoint{
			{
				ID:                   1,
				Name:                 "Tree 1",
				OffsetFromOrigin:     core.Position3D{X: 1},
				OffsetFromPrevious:   core.Position3D{X: 1},
				PreviousPointID:      core.OriginPointID,
				DistanceFromPrevious: 1,
				PlacedAt:             placed,
			},
			{
				ID:                   2,
				Name:                 "Tree 2",
				OffsetFromOrigin:     core.Position3D{X: 1, Y: 2},
				OffsetFromPrevious:   core.Position3D{Y: 2},
				PreviousPointID:      1,
				DistanceFromPrevious: 2,
				PlacedAt:             placed.Add(time.Minute),
			},
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	in := testSession()

	gs := SessionToGorm(in)
	assert.Equal(t, in.OriginID, gs.OriginID)
	assert.Equal(t, in.DisplayName, gs.Name)
	require.Len(t, gs.Points, 2)
	assert.Equal(t, in.OriginID, gs.Points[0].SessionOriginID)
	assert.Equal(t, uint(1), gs.Points[0].PointNumber)

	out := SessionToCore(gs)
	assert.Equal(t, in, out)
}

func TestPointRoundTrip(t *testing.T) {
	in := testSession().Points[1]

	gp := PointToGorm("plot-7", in)
	assert.Equal(t, "plot-7", gp.SessionOriginID)
	assert.Equal(t, in.ID, gp.PointNumber)
	assert.Equal(t, in.OffsetFromPrevious, gp.OffsetFromPrevious)

	out := PointToCore(gp)
	assert.Equal(t, in, out)
}
