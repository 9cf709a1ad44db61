// Package geostamp re-encodes photographs as JPEG carrying generated
// camera, time and GPS metadata for a given location.
package geostamp

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Coordinate is a position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate checks that c is a finite position within
// the latitude range [-90, 90] and longitude range [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return &InputError{Field: "latitude", Err: errors.Errorf("%v out of range", c.Lat)}
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return &InputError{Field: "longitude", Err: errors.Errorf("%v out of range", c.Lon)}
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
