package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for when -config is empty.
const FileName = "normproj.yaml"

// Load builds the effective config: defaults, then the config file, then
// non-zero flags. f may be nil.
func Load(f *Flags) (*Config, error) {
	if f == nil {
		f = &Flags{}
	}
	cfg := Default()

	path := f.Config
	if path == "" {
		path = discover()
	}
	if path != "" {
		if err := decodeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	f.apply(cfg)
	return cfg, nil
}

// discover returns the first existing FileName in the working directory
// or ConfigDir, or "" when there is none.
func discover() string {
	dirs := []string{"."}
	if d := ConfigDir(); d != "" {
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		p := filepath.Join(d, FileName)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// ConfigDir is normproj's directory under os.UserConfigDir, which honours
// XDG_CONFIG_HOME on Unix. It is "" when no user config dir is known.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "normproj")
}

// decodeFile overlays the YAML at path onto cfg. Unknown keys are errors
// so a misspelt setting is not silently ignored.
func decodeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
