// Package scene defines the 3D scene sink the importers write to.
package scene

import (
	"errors"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyMesh is returned when a mesh without vertices is submitted.
var ErrEmptyMesh = errors.New("scene: mesh has no vertices")

// Host accepts object creation requests. Calls happen from a single goroutine.
type Host interface {
	AddLabeledPoint(p LabeledPoint) error
	AddMesh(m Mesh) error
}

// LabeledPoint is a named marker with attached metadata.
// Metadata values are strings or float64, absent values are never stored.
type LabeledPoint struct {
	Metadata map[string]any
	Name     string
	Location r3.Vec
}

// Mesh is a vertex-only point cloud, it has no edges or faces.
type Mesh struct {
	Name     string
	Material Material
	Vertices []r3.Vec
}

// Material is a flat diffuse material.
type Material struct {
	Name    string
	Diffuse [4]float64 // RGBA, 0..1
}

// RGBA converts the diffuse colour to 8-bit channels.
func (m Material) RGBA() color.RGBA {
	ch := func(v float64) uint8 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		default:
			return uint8(v*255 + 0.5)
		}
	}
	return color.RGBA{R: ch(m.Diffuse[0]), G: ch(m.Diffuse[1]), B: ch(m.Diffuse[2]), A: ch(m.Diffuse[3])}
}

// Bounds returns the axis aligned bounding box of the vertices.
func (m Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}

	b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min.X = min(b.Min.X, v.X)
		b.Min.Y = min(b.Min.Y, v.Y)
		b.Min.Z = min(b.Min.Z, v.Z)
		b.Max.X = max(b.Max.X, v.X)
		b.Max.Y = max(b.Max.Y, v.Y)
		b.Max.Z = max(b.Max.Z, v.Z)
	}

	return b
}
