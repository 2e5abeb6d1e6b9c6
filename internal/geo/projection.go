package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Meters per degree at the equator.
const (
	LatitudeScale  = 111320.0
	LongitudeScale = 111320.0
)

// Projector converts WGS84 latitude/longitude into local planar meters
// using an equirectangular approximation centred on a reference latitude.
//
// The longitude factor is derived once from the reference latitude,
// a Projector is immutable after construction.
type Projector struct {
	reference   float64
	latScale    float64
	lonToMeters float64
}

// NewProjector returns a projector using the default scale constants.
func NewProjector(referenceLatitude float64) *Projector {
	return NewProjectorWithScales(referenceLatitude, LatitudeScale, LongitudeScale)
}

// NewProjectorWithScales returns a projector with explicit meters-per-degree factors.
func NewProjectorWithScales(referenceLatitude, latScale, lonScale float64) *Projector {
	return &Projector{
		reference:   referenceLatitude,
		latScale:    latScale,
		lonToMeters: lonScale * math.Cos(Radians(referenceLatitude)),
	}
}

// ReferenceLatitude returns the latitude the projector is centred on.
func (p *Projector) ReferenceLatitude() float64 {
	return p.reference
}

// Project maps a position to planar coordinates.
// Z is always non-positive: the elevation magnitude is taken as depth.
func (p *Projector) Project(lat, lon, elevation float64) r3.Vec {
	return r3.Vec{
		X: lon * p.lonToMeters,
		Y: lat * p.latScale,
		Z: -math.Abs(elevation),
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
