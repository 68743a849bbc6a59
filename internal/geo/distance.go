// Package geo computes great-circle distances between geocoded points.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusMiles is the mean Earth radius used by the haversine formula.
const EarthRadiusMiles = 3958.8

// SRID is the spatial reference id of every point built here (WGS 84).
const SRID = 4326

// Point builds a WGS 84 point. go-geom stores X as longitude, Y as latitude.
func Point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(SRID)
}

// Distance returns the haversine distance in miles between two lat/lon pairs.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return Haversine(Point(lat1, lon1), Point(lat2, lon2))
}

// Haversine returns the great-circle distance in miles between two points.
// A nil point yields +Inf so callers never treat it as "inside" a radius.
func Haversine(a, b *geom.Point) float64 {
	if a == nil || b == nil || a.Empty() || b.Empty() {
		return math.Inf(1)
	}

	lat1 := toRadians(a.Y())
	lat2 := toRadians(b.Y())
	dLat := lat2 - lat1
	dLon := toRadians(b.X() - a.X())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// Within reports whether b lies within radius miles of a (inclusive).
func Within(a, b *geom.Point, radius float64) bool {
	return Haversine(a, b) <= radius
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
