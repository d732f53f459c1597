package host

import (
	"errors"
	"testing"

	"github.com/chazu/normproj/pkg/accel"
	"github.com/go-gl/mathgl/mgl32"
)

func triangleJob() *accel.Job {
	up := mgl32.Vec3{0, 0, 1}
	return &accel.Job{
		Points:  []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals: []mgl32.Vec3{up, up, up},
		Indices: []uint32{0, 1, 2},
		Origins: []mgl32.Vec3{{0.2, 0.2, 1}, {5, 5, 1}},
		Result:  []mgl32.Vec3{{0, 0, -1}, {0, 0, -1}},
	}
}

func TestProjectNormals(t *testing.T) {
	d := New(2)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	job := triangleJob()
	if err := d.ProjectNormals(job); err != nil {
		t.Fatalf("ProjectNormals: %v", err)
	}
	if !job.Result[0].ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("hit ray result = %v, want (0,0,-1)", job.Result[0])
	}
	if job.Result[1] != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("missed ray result = %v, want direction unchanged", job.Result[1])
	}
}

func TestProjectNormalsManyRays(t *testing.T) {
	d := New(3)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	job := triangleJob()
	job.Origins = nil
	job.Result = nil
	for i := 0; i < 97; i++ {
		job.Origins = append(job.Origins, mgl32.Vec3{float32(i%10) * 0.05, 0.1, 2})
		job.Result = append(job.Result, mgl32.Vec3{0, 0, -1})
	}
	if err := d.ProjectNormals(job); err != nil {
		t.Fatal(err)
	}
	for i, n := range job.Result {
		if !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
			t.Fatalf("ray %d result = %v", i, n)
		}
	}
}

func TestProjectNormalsClosedFallsBack(t *testing.T) {
	d := New(1)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	d.Close()
	if d.Available() {
		t.Fatal("closed device reports available")
	}
	if err := d.ProjectNormals(triangleJob()); !errors.Is(err, accel.ErrFallbackToCPU) {
		t.Fatalf("ProjectNormals = %v, want ErrFallbackToCPU", err)
	}
}

func TestProjectNormalsRejectsMismatchedResult(t *testing.T) {
	d := New(1)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	job := triangleJob()
	job.Result = job.Result[:1]
	if err := d.ProjectNormals(job); err == nil {
		t.Fatal("expected error for mismatched result buffer")
	}
}

func TestEmptyJob(t *testing.T) {
	d := New(1)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if err := d.ProjectNormals(&accel.Job{}); err != nil {
		t.Fatalf("empty job: %v", err)
	}
}
