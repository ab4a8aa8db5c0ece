package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition3D_AddSub(t *testing.T) {
	a := Position3D{X: 1, Y: 2, Z: 3}
	b := Position3D{X: 4, Y: -2, Z: 0.5}

	assert.Equal(t, Position3D{X: 5, Y: 0, Z: 3.5}, a.Add(b))
	assert.Equal(t, Position3D{X: -3, Y: 4, Z: 2.5}, a.Sub(b))

	// Sub then Add round-trips
	assert.Equal(t, a, a.Sub(b).Add(b))
}

func TestPosition3D_Magnitude(t *testing.T) {
	assert.Equal(t, 0.0, Position3D{}.Magnitude())
	assert.Equal(t, 5.0, Position3D{X: 3, Y: 4}.Magnitude())
	assert.InDelta(t, math.Sqrt(3), Position3D{X: 1, Y: 1, Z: 1}.Magnitude(), 1e-12)
}

func TestPosition3D_Distance(t *testing.T) {
	a := Position3D{X: 1, Y: 0, Z: 0}
	b := Position3D{X: 1, Y: 2, Z: 0}

	assert.Equal(t, 2.0, a.Distance(b))
	assert.Equal(t, a.Distance(b), b.Distance(a))
}

func TestPosition3D_IsFinite(t *testing.T) {
	assert.True(t, Position3D{X: 1, Y: 2, Z: 3}.IsFinite())
	assert.True(t, Position3D{}.IsFinite())
	assert.False(t, Position3D{X: math.NaN()}.IsFinite())
	assert.False(t, Position3D{Y: math.Inf(1)}.IsFinite())
	assert.False(t, Position3D{Z: math.Inf(-1)}.IsFinite())
}
