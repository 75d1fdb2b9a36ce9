package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// metersPerDegreeLat is the length of one degree of latitude on the sphere.
const metersPerDegreeLat = math.Pi / 180 * earthRadiusMeters

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Distance is Haversine for two points.
func Distance(a, b Point) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// BoxAround returns a [lon, lat] bounding box that contains every point
// within meters of p. The box errs on the large side; confirm candidates
// with Distance.
func BoxAround(p Point, meters float64) (min, max [2]float64) {
	dLat := meters / metersPerDegreeLat
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	dLon := 180.0
	// Near the poles a degree of longitude shrinks to nothing.
	if cosLat > 1e-6 {
		dLon = math.Min(dLat/cosLat, 180)
	}
	min = [2]float64{p.Lon - dLon, p.Lat - dLat}
	max = [2]float64{p.Lon + dLon, p.Lat + dLat}
	return min, max
}

// SplitBox maps a [lon, lat] box that runs past ±180° longitude onto one or
// two boxes inside the valid range.
func SplitBox(min, max [2]float64) [][2][2]float64 {
	switch {
	case max[0]-min[0] >= 360:
		return [][2][2]float64{{{-180, min[1]}, {180, max[1]}}}
	case min[0] < -180:
		return [][2][2]float64{
			{{min[0] + 360, min[1]}, {180, max[1]}},
			{{-180, min[1]}, max},
		}
	case max[0] > 180:
		return [][2][2]float64{
			{min, {180, max[1]}},
			{{-180, min[1]}, {max[0] - 360, max[1]}},
		}
	}
	return [][2][2]float64{{min, max}}
}
