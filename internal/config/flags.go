package config

import "flag"

// Flags are the command-line settings. Zero values leave the config as
// loaded.
type Flags struct {
	Config  string
	Debug   bool
	Accel   bool
	Workers int
	Cells   int
	Kernel  string
	LogFile string
}

// Register binds f to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Accel, "accel", false, "Prefer the accelerated device")
	fs.IntVar(&f.Workers, "workers", 0, "CPU workers for ray casting (0 = config or GOMAXPROCS)")
	fs.IntVar(&f.Cells, "cells", 0, "Default marching cubes resolution for scenes")
	fs.StringVar(&f.Kernel, "kernel", "", "Geometry kernel for scenes (sdfx or manifold)")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this rotated file")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Accel {
		cfg.Projection.PreferAccelerated = true
	}
	if f.Workers > 0 {
		cfg.Projection.Workers = f.Workers
	}
	if f.Cells > 0 {
		cfg.Scene.DefaultCells = f.Cells
	}
	if f.Kernel != "" {
		cfg.Scene.Kernel = f.Kernel
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
