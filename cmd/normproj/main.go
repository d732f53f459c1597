// Package main is the normproj command: it projects the normals of a
// high-detail source mesh onto a destination mesh.
//
// Inputs are either a scene script that declares both meshes or two JSON
// meshes. The destination mesh with its new normals is written as JSON.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazu/normproj/internal/config"
	"github.com/chazu/normproj/internal/logger"
	"github.com/chazu/normproj/pkg/accel"
	_ "github.com/chazu/normproj/pkg/accel/host"
	"github.com/chazu/normproj/pkg/engine"
	"github.com/chazu/normproj/pkg/kernel"
	"github.com/chazu/normproj/pkg/kernel/manifold"
	"github.com/chazu/normproj/pkg/kernel/sdfx"
	"github.com/chazu/normproj/pkg/mesh"
	"github.com/chazu/normproj/pkg/project"
	"github.com/chazu/normproj/pkg/scene"
	"github.com/chazu/normproj/pkg/tessellate"
)

// errUsage reports a bad combination of inputs.
var errUsage = errors.New("usage: normproj [-config path] [-scene file.zy | -src a.json -dst b.json] [-out out.json] [-kernel sdfx|manifold] [-accel] [-debug] [-workers n]")

// cli holds the parsed command line.
type cli struct {
	flags       config.Flags
	scene       string
	src, dst    string
	out         string
	writeConfig string
}

func parseArgs(args []string, stderr io.Writer) (*cli, error) {
	fs := flag.NewFlagSet("normproj", flag.ContinueOnError)
	fs.SetOutput(stderr)

	c := &cli{}
	c.flags.Register(fs)
	fs.StringVar(&c.scene, "scene", "", "Scene script declaring source and destination")
	fs.StringVar(&c.src, "src", "", "Source mesh JSON")
	fs.StringVar(&c.dst, "dst", "", "Destination mesh JSON")
	fs.StringVar(&c.out, "out", "", "Output mesh JSON (default stdout)")
	fs.StringVar(&c.writeConfig, "write-config", "", "Write the effective config to this path and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return c, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "normproj: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run is main without the process exit, writing mesh output to stdout.
func run(args []string, stdout, stderr io.Writer) error {
	c, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(&c.flags)
	if err != nil {
		return err
	}
	if c.writeConfig != "" {
		return cfg.SaveTo(c.writeConfig)
	}

	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileConfig(cfg), stderr); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	log := logger.Log.With(zap.String("run", uuid.NewString()))

	src, dst, preferAccel, err := load(c, cfg, log)
	if err != nil {
		return err
	}

	accel.SetLogger(log)
	defer accel.SetLogger(nil)
	flags := project.EditFlags{PreferAccelerated: cfg.Projection.PreferAccelerated || preferAccel}
	err = project.ProjectNormals(dst, src, flags,
		project.WithLogger(log),
		project.WithWorkers(cfg.Projection.Workers))
	if err != nil {
		return fmt.Errorf("projecting normals: %w", err)
	}
	log.Info("projected normals",
		zap.String("dst", dst.Name),
		zap.Int("vertices", dst.VertexCount()),
		zap.Int("source_triangles", src.TriangleCount()))

	return write(c.out, stdout, dst)
}

func fileConfig(cfg *config.Config) logger.FileConfig {
	if cfg.Logging.LogFile == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(cfg.Logging.LogFile)
}

// load reads the two meshes from a scene script or from JSON files.
func load(c *cli, cfg *config.Config, log *zap.Logger) (src, dst *mesh.Mesh, preferAccel bool, err error) {
	switch {
	case c.scene != "" && (c.src != "" || c.dst != ""):
		return nil, nil, false, fmt.Errorf("%w: -scene excludes -src and -dst", errUsage)
	case c.scene != "":
		return loadScene(c.scene, cfg, log)
	case c.src != "" && c.dst != "":
		if src, err = readMesh(c.src); err != nil {
			return nil, nil, false, err
		}
		if dst, err = readMesh(c.dst); err != nil {
			return nil, nil, false, err
		}
		return src, dst, false, nil
	default:
		return nil, nil, false, errUsage
	}
}

func loadScene(path string, cfg *config.Config, log *zap.Logger) (*mesh.Mesh, *mesh.Mesh, bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false, err
	}

	eng := engine.NewEngine()
	eng.SetTimeout(cfg.Scene.Timeout)
	sc, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, nil, false, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	applyDefaultCells(sc, cfg.Scene.DefaultCells)

	log.Debug("evaluated scene", zap.String("path", path), zap.Int("nodes", sc.NodeCount()))
	k, err := newKernel(cfg.Scene.Kernel)
	if err != nil {
		return nil, nil, false, err
	}
	res, err := tessellate.Tessellate(sc, k)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("tessellated scene",
		zap.Int("source_triangles", res.Source.TriangleCount()),
		zap.Int("destination_triangles", res.Destination.TriangleCount()))
	return res.Source, res.Destination, res.PreferAccelerated, nil
}

// newKernel returns the geometry kernel registered under name.
func newKernel(name string) (kernel.Kernel, error) {
	switch name {
	case "", "sdfx":
		return sdfx.New(), nil
	case "manifold":
		return manifold.New()
	default:
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
}

// applyDefaultCells gives roles without an explicit resolution the
// configured one.
func applyDefaultCells(sc *scene.Scene, cells int) {
	for _, r := range []*scene.Role{sc.Source, sc.Destination} {
		if r != nil && r.Cells == 0 {
			r.Cells = cells
		}
	}
}

func readMesh(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := mesh.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func write(path string, stdout io.Writer, m *mesh.Mesh) error {
	if path == "" {
		return mesh.Encode(stdout, m)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
