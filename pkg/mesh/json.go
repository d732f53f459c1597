package mesh

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// flatMesh is the JSON wire form. All arrays are flat: vertices has 3
// floats per point (x,y,z), normals 3 floats per point.
type flatMesh struct {
	Name        string    `json:"name,omitempty"`
	Vertices    []float32 `json:"vertices"`
	Normals     []float32 `json:"normals,omitempty"`
	Indices     []uint32  `json:"indices"`
	Counts      []uint32  `json:"counts,omitempty"`
	SmoothAngle *float32  `json:"smoothAngle,omitempty"`
}

// MarshalJSON encodes the mesh with flat coordinate arrays.
func (m *Mesh) MarshalJSON() ([]byte, error) {
	angle := m.RefineSettings.SmoothAngle
	return json.Marshal(flatMesh{
		Name:        m.Name,
		Vertices:    flatten(m.Points),
		Normals:     flatten(m.Normals),
		Indices:     m.Indices,
		Counts:      m.Counts,
		SmoothAngle: &angle,
	})
}

// UnmarshalJSON decodes the flat form. A missing smoothAngle yields
// DefaultSmoothAngle.
func (m *Mesh) UnmarshalJSON(data []byte) error {
	var fm flatMesh
	if err := json.Unmarshal(data, &fm); err != nil {
		return err
	}
	points, err := unflatten(fm.Vertices)
	if err != nil {
		return fmt.Errorf("vertices: %w", err)
	}
	normals, err := unflatten(fm.Normals)
	if err != nil {
		return fmt.Errorf("normals: %w", err)
	}
	*m = Mesh{
		Name:           fm.Name,
		Points:         points,
		Indices:        fm.Indices,
		Counts:         fm.Counts,
		Normals:        normals,
		Flags:          Flags{HasNormals: len(normals) > 0},
		RefineSettings: RefineSettings{SmoothAngle: DefaultSmoothAngle},
	}
	if fm.SmoothAngle != nil {
		m.RefineSettings.SmoothAngle = *fm.SmoothAngle
	}
	return nil
}

// Decode reads one JSON mesh from r and validates its topology. Normals
// are accepted at any length.
func Decode(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decoding mesh: %w", err)
	}
	if err := m.ValidateTopology(); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode writes m to w as indented JSON.
func Encode(w io.Writer, m *Mesh) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func flatten(vs []mgl32.Vec3) []float32 {
	if len(vs) == 0 {
		return nil
	}
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func unflatten(fs []float32) ([]mgl32.Vec3, error) {
	if len(fs)%3 != 0 {
		return nil, fmt.Errorf("%w: %d floats is not a multiple of 3", ErrInvalidMesh, len(fs))
	}
	if len(fs) == 0 {
		return nil, nil
	}
	out := make([]mgl32.Vec3, len(fs)/3)
	for i := range out {
		out[i] = mgl32.Vec3{fs[i*3], fs[i*3+1], fs[i*3+2]}
	}
	return out, nil
}
