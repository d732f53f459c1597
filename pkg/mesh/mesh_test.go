package mesh

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func quad() *Mesh {
	m := New("quad")
	m.Points = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	m.Indices = []uint32{0, 1, 2, 3}
	m.Counts = []uint32{4}
	return m
}

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		mesh      *Mesh
		vertices  int
		faces     int
		triangles int
	}{
		{"empty", &Mesh{}, 0, 0, 0},
		{"one triangle", &Mesh{Points: make([]mgl32.Vec3, 3), Indices: []uint32{0, 1, 2}}, 3, 1, 1},
		{"two triangles", &Mesh{Points: make([]mgl32.Vec3, 4), Indices: []uint32{0, 1, 2, 2, 3, 0}}, 4, 2, 2},
		{"quad", quad(), 4, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertices)
			}
			if got := tt.mesh.FaceCount(); got != tt.faces {
				t.Errorf("FaceCount() = %d, want %d", got, tt.faces)
			}
			if got := tt.mesh.TriangleCount(); got != tt.triangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.triangles)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	if !(&Mesh{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty mesh, want true")
	}
	if quad().IsEmpty() {
		t.Error("IsEmpty() = true for quad, want false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr bool
	}{
		{"valid quad", func(m *Mesh) {}, false},
		{"valid triangles", func(m *Mesh) { m.Counts = nil; m.Indices = []uint32{0, 1, 2, 2, 3, 0} }, false},
		{"dangling indices", func(m *Mesh) { m.Counts = nil; m.Indices = []uint32{0, 1, 2, 3} }, true},
		{"count sum mismatch", func(m *Mesh) { m.Counts = []uint32{3} }, true},
		{"face too small", func(m *Mesh) { m.Counts = []uint32{2, 2} }, true},
		{"index out of range", func(m *Mesh) { m.Indices[3] = 7 }, true},
		{"normal count mismatch", func(m *Mesh) { m.Normals = make([]mgl32.Vec3, 2) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMesh) {
					t.Fatalf("Validate() = %v, want ErrInvalidMesh", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateTopologyIgnoresNormalCount(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr bool
	}{
		{"stale normals", func(m *Mesh) { m.Normals = make([]mgl32.Vec3, 1) }, false},
		{"extra normals", func(m *Mesh) { m.Normals = make([]mgl32.Vec3, 9) }, false},
		{"dangling indices", func(m *Mesh) { m.Counts = nil; m.Indices = []uint32{0, 1, 2, 3} }, true},
		{"index out of range", func(m *Mesh) { m.Indices[0] = 4 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.mutate(m)
			err := m.ValidateTopology()
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidateTopology() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMesh) {
				t.Fatalf("ValidateTopology() = %v, want ErrInvalidMesh", err)
			}
		})
	}
}

func TestSameTopology(t *testing.T) {
	a := &Mesh{Indices: []uint32{0, 1, 2}}
	b := &Mesh{Indices: []uint32{0, 1, 2}}
	c := &Mesh{Indices: []uint32{0, 2, 1}}
	if !SameTopology(a, b) {
		t.Error("identical indices should match")
	}
	if SameTopology(a, c) {
		t.Error("reordered indices should not match")
	}
	if SameTopology(&Mesh{}, &Mesh{}) {
		t.Error("empty index lists should not match")
	}
}

func TestClone(t *testing.T) {
	m := quad()
	c := m.Clone()
	c.Points[0] = mgl32.Vec3{9, 9, 9}
	c.Indices[0] = 3
	if m.Points[0] != (mgl32.Vec3{}) || m.Indices[0] != 0 {
		t.Fatal("Clone shares backing arrays with the original")
	}
}

func TestJSON(t *testing.T) {
	m := quad()
	m.Normals = []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	m.RefineSettings.SmoothAngle = 45

	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"vertices"`) {
		t.Fatalf("encoded mesh lacks flat vertices: %s", buf.String())
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != "quad" || len(got.Points) != 4 || got.Points[2] != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("decoded points = %v", got.Points)
	}
	if len(got.Counts) != 1 || got.Counts[0] != 4 {
		t.Errorf("decoded counts = %v", got.Counts)
	}
	if !got.Flags.HasNormals || got.Normals[1] != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("decoded normals = %v", got.Normals)
	}
	if got.RefineSettings.SmoothAngle != 45 {
		t.Errorf("SmoothAngle = %v, want 45", got.RefineSettings.SmoothAngle)
	}
}

func TestDecodeDefaults(t *testing.T) {
	m, err := Decode(strings.NewReader(`{"vertices":[0,0,0,1,0,0,0,1,0],"indices":[0,1,2]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.RefineSettings.SmoothAngle != DefaultSmoothAngle {
		t.Errorf("SmoothAngle = %v, want %v", m.RefineSettings.SmoothAngle, DefaultSmoothAngle)
	}
	if m.Flags.HasNormals {
		t.Error("HasNormals set without normals")
	}
}

func TestDecodeKeepsStaleNormals(t *testing.T) {
	in := `{"vertices":[0,0,0,1,0,0,0,1,0],"normals":[0,0,1],"indices":[0,1,2]}`
	m, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Normals) != 1 || len(m.Points) != 3 {
		t.Errorf("normals = %d points = %d, want 1 and 3", len(m.Normals), len(m.Points))
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []string{
		`{"vertices":[0,0,0,1],"indices":[]}`,
		`{"vertices":[0,0,0,1,0,0,0,1,0],"indices":[0,1]}`,
		`{"vertices":`,
	}
	for _, in := range tests {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", in)
		}
	}
}
