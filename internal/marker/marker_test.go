package marker

import (
	"testing"

	"github.com/treemark/anchor/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidPayload(t *testing.T) {
	payload := []byte(`{"id":"plot-7","name":"North Field","lat":48.21,"lon":16.37}`)

	m, err := Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, "plot-7", m.ID)
	assert.Equal(t, "North Field", m.Name)
	assert.Equal(t, 48.21, m.Lat)
	assert.Equal(t, 16.37, m.Lon)
	assert.Equal(t, payload, m.Raw)
}

func TestDecode_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `plot-7|North Field`},
		{"empty", ``},
		{"missing id", `{"name":"North Field","lat":0,"lon":0}`},
		{"missing name", `{"id":"plot-7","lat":0,"lon":0}`},
		{"lat out of range", `{"id":"plot-7","name":"x","lat":120,"lon":0}`},
		{"lon out of range", `{"id":"plot-7","name":"x","lat":0,"lon":200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			assert.ErrorIs(t, err, core.ErrInvalidMarkerData)
		})
	}
}
