package scene

import "maps"

// Memory is an in-memory scene document.
// Objects with an already used name replace the previous object in place.
type Memory struct {
	points   []LabeledPoint
	meshes   []Mesh
	pointIdx map[string]int
	meshIdx  map[string]int
	Replaced int
}

// NewMemory returns an empty document.
func NewMemory() *Memory {
	return &Memory{
		pointIdx: make(map[string]int),
		meshIdx:  make(map[string]int),
	}
}

// AddLabeledPoint stores a copy of p.
func (m *Memory) AddLabeledPoint(p LabeledPoint) error {
	p.Metadata = maps.Clone(p.Metadata)

	if i, ok := m.pointIdx[p.Name]; ok {
		m.points[i] = p
		m.Replaced++
		return nil
	}

	m.pointIdx[p.Name] = len(m.points)
	m.points = append(m.points, p)
	return nil
}

// AddMesh stores mesh. Empty meshes are rejected.
func (m *Memory) AddMesh(mesh Mesh) error {
	if len(mesh.Vertices) == 0 {
		return ErrEmptyMesh
	}

	if i, ok := m.meshIdx[mesh.Name]; ok {
		m.meshes[i] = mesh
		m.Replaced++
		return nil
	}

	m.meshIdx[mesh.Name] = len(m.meshes)
	m.meshes = append(m.meshes, mesh)
	return nil
}

// Points returns labeled points in creation order.
func (m *Memory) Points() []LabeledPoint {
	return m.points
}

// Meshes returns meshes in creation order.
func (m *Memory) Meshes() []Mesh {
	return m.meshes
}

// Point looks up a labeled point by name.
func (m *Memory) Point(name string) (LabeledPoint, bool) {
	i, ok := m.pointIdx[name]
	if !ok {
		return LabeledPoint{}, false
	}
	return m.points[i], true
}
