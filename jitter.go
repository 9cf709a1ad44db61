package geostamp

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"
)

// DefaultRadius is the default jitter radius in metres.
const DefaultRadius = 2.0

// metresPerDegree is the length of one degree of latitude,
// and of longitude on the equator.
const metresPerDegree = 111320

// minCosLat is the smallest cosine of the latitude
// for which a longitude offset is computed.
const minCosLat = 1e-9

// Jitter returns a point drawn uniformly from the disk of
// the given radius in metres around c.
//
// The point is found with a planar approximation around c:
// the distance is sqrt(U)·radius for a uniform U, so that the density
// is uniform over the disk area, and the bearing is uniform.
func Jitter(rng *rand.Rand, c Coordinate, radius float64) (Coordinate, error) {
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Coordinate{}, &InputError{Field: "radius", Err: errors.Errorf("%v is not a positive distance", radius)}
	}

	cosLat := math.Cos(c.Lat * math.Pi / 180)
	if math.Abs(cosLat) < minCosLat {
		return Coordinate{}, &InputError{Field: "latitude", Err: ErrPolarLatitude}
	}

	r := math.Sqrt(rng.Float64()) * radius
	theta := rng.Float64() * 2 * math.Pi

	dx, dy := r*math.Cos(theta), r*math.Sin(theta)

	lat := c.Lat + dy/metresPerDegree
	lon := c.Lon + dx/(metresPerDegree*cosLat)

	switch {
	case lat > 90:
		lat = 90
	case lat < -90:
		lat = -90
	}
	if lon > 180 || lon < -180 {
		// near the poles the offset may be many turns
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// Jitterer draws jittered coordinates from its own
// random source. It is safe for concurrent use.
type Jitterer struct {
	radius float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitterer returns a Jitterer using radius, seeded with seed1 and seed2.
func NewJitterer(seed1, seed2 uint64, radius float64) *Jitterer {
	return &Jitterer{
		radius: radius,
		rng:    rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Radius returns the jitter radius of j in metres.
func (j *Jitterer) Radius() float64 {
	return j.radius
}

// Jitter returns a point within the radius of j around c.
func (j *Jitterer) Jitter(c Coordinate) (Coordinate, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Jitter(j.rng, c, j.radius)
}
