// Package config handles normproj configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Projection ProjectionConfig `yaml:"projection"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ProjectionConfig holds normal projection settings.
type ProjectionConfig struct {
	PreferAccelerated bool `yaml:"prefer_accelerated"`
	Workers           int  `yaml:"workers"` // 0 = GOMAXPROCS
}

// SceneConfig holds scene script settings.
type SceneConfig struct {
	Kernel       string        `yaml:"kernel"`        // sdfx or manifold
	DefaultCells int           `yaml:"default_cells"` // used when a role sets no :cells
	Timeout      time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Projection: ProjectionConfig{
			PreferAccelerated: false,
			Workers:           0,
		},
		Scene: SceneConfig{
			Kernel:       "sdfx",
			DefaultCells: 64,
			Timeout:      5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
