package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/serpblock"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither flags nor the config file set a value.
const (
	DefaultAddr            = "127.0.0.1:7777"
	DefaultInterval        = 500 * time.Millisecond
	DefaultRefreshInterval = 2 * time.Second
)

// Config holds settings read from the YAML config file.
// Flags and environment variables take precedence over it.
type Config struct {
	DB       string        `yaml:"db"`
	Server   string        `yaml:"server"`
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

// LoadConfig reads the config file at path. An empty path selects
// ~/.serpblock/config.yaml, which may be absent.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return &Config{}, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return nil, serpblock.Errorf(serpblock.ENOTFOUND, "config file %q not found", path)
	} else if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, serpblock.Errorf(serpblock.EINVALID, "invalid config file %q: %v", path, err)
	}
	return &cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".serpblock", "config.yaml")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "serpblock.db"
	}
	dir := filepath.Join(home, ".serpblock")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serpblock.db")
}
