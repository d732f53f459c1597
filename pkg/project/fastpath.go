package project

import (
	"fmt"

	"github.com/chazu/normproj/pkg/mesh"
)

// fastPath copies negated source normals onto dst when both meshes share
// the same index list. It reports whether it handled the projection.
//
// The source is refined without reindexing so its vertex numbering, and
// with it the one-to-one correspondence, survives normal generation.
func fastPath(dst, src *mesh.Mesh, r Refiner) (bool, error) {
	if !mesh.SameTopology(dst, src) {
		return false, nil
	}
	rs := mesh.RefineSettings{
		Flags: mesh.RefineFlags{
			GenNormalsWithSmoothAngle: true,
			NoReindexing:              true,
		},
		SmoothAngle: src.RefineSettings.SmoothAngle,
	}
	if err := r.Refine(src, rs); err != nil {
		return true, fmt.Errorf("refining source: %w", err)
	}

	n := len(src.Normals)
	dst.Normals = fitNormals(dst.Normals, n)
	for i := 0; i < n; i++ {
		dst.Normals[i] = src.Normals[i].Mul(-1)
	}
	return true, nil
}
