package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/treemark/anchor/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Marker locations are projected to EPSG:3857 for map display. The working
// coordinates of a session are never geographic: they are offsets in the
// tracking frame, so projection only applies to marker metadata.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses an "x,y" or "x,y,z" string into a core.Position3D.
// Bridge collaborators deliver pose samples in this form.
func Position3DFromString(coords string) (core.Position3D, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var z float64
	if len(coordsSplit) > 2 {
		z, err = strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
	}
	return core.Position3D{X: x, Y: y, Z: z}, nil
}

// Coords3857From4326 creates a map point from a longitude and latitude
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	var x, y float64
	// if provided SRID was 4326, convert to 3857
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	point, err = geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
	if err != nil {
		return geom.Point{}, err
	}
	return point, nil
}

// MarkerLocationWKT projects a marker's lat/lon to EPSG:3857 and returns the
// point as WKT for export surfaces.
func MarkerLocationWKT(latitude, longitude float64) (string, error) {
	point, err := Coords3857From4326(longitude, latitude)
	if err != nil {
		return "", err
	}
	return point.AsText(), nil
}
