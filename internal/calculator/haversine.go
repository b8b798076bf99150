package calculator

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const earthRadius = 6371000.0 // meters

// TileSize is the pixel width of a slippy map tile.
const TileSize = 256

// MaxZoom bounds the zoom levels accepted by ResolutionAtZoom.
const MaxZoom = 22

// MaxLatitude is the web mercator latitude limit.
const MaxLatitude = 85.05112878

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine computes the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lon1Rad := toRadians(lon1)
	lat2Rad := toRadians(lat2)
	lon2Rad := toRadians(lon2)

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// parallelLength measures the arc of latitude lat between two longitudes. Great
// circles cut across the pole on wide spans, so the arc is summed in steps of at most
// one degree.
func parallelLength(lat, west, east float64) float64 {
	span := east - west
	if span <= 0 {
		return 0
	}
	steps := int(math.Ceil(span))
	step := span / float64(steps)
	total := 0.0
	for i := 0; i < steps; i++ {
		lon := west + step*float64(i)
		total += Haversine(lat, lon, lat, lon+step)
	}
	return total
}

// ResolutionFromExtent returns the ground meters per pixel along the horizontal centre
// line of a visible extent drawn widthPx pixels wide.
func ResolutionFromExtent(b orb.Bound, widthPx float64) float64 {
	if !(widthPx > 0) {
		return 0
	}
	return parallelLength(b.Center().Lat(), b.Min.Lon(), b.Max.Lon()) / widthPx
}

// ResolutionAtZoom returns the ground meters per pixel of the slippy tile at zoom that
// contains center.
func ResolutionAtZoom(center orb.Point, zoom int) float64 {
	if zoom < 0 || zoom > MaxZoom || math.Abs(center.Lat()) > MaxLatitude {
		return 0
	}
	b := maptile.At(center, maptile.Zoom(zoom)).Bound()
	return parallelLength(center.Lat(), b.Min.Lon(), b.Max.Lon()) / TileSize
}
