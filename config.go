package samplecheck

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of a validation run.
type Config struct {
	Project          string       `yaml:"project"`
	Schema           string       `yaml:"schema"`
	Driver           string       `yaml:"driver"`
	Language         string       `yaml:"language"`
	Parallelism      int          `yaml:"parallelism"`
	AllowComments    bool         `yaml:"allowComments"`
	SkipUnknownTypes bool         `yaml:"skipUnknownTypes"`
	Limits           LimitsConfig `yaml:"limits"`
	Output           OutputConfig `yaml:"output"`
	Log              LogConfig    `yaml:"log"`
}

// LimitsConfig mirrors Limits in configuration form.
type LimitsConfig struct {
	MaxDepth      int    `yaml:"maxDepth"`
	MaxBytes      int64  `yaml:"maxBytes"`
	DuplicateKeys string `yaml:"duplicateKeys"`
}

// OutputConfig controls writing of merged sample files.
type OutputConfig struct {
	Write bool   `yaml:"write"`
	Dir   string `yaml:"dir"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Project:  ".",
		Driver:   "encoding/json",
		Language: "en",
		Limits:   LimitsConfig{MaxDepth: 256, DuplicateKeys: "ignore"},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Unknown keys
// are rejected. Relative project, schema and output paths are resolved
// against the directory of the file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	base := filepath.Dir(path)
	cfg.Project = resolvePath(base, cfg.Project)
	cfg.Schema = resolvePath(base, cfg.Schema)
	cfg.Output.Dir = resolvePath(base, cfg.Output.Dir)
	return cfg, nil
}

// DecodeConfig decodes YAML from r on top of DefaultConfig.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// RunOptions converts the configuration into runner Options.
func (c Config) RunOptions() (Options, error) {
	driver, err := DriverByName(c.Driver)
	if err != nil {
		return Options{}, err
	}
	dup, err := ParseDuplicatePolicy(c.Limits.DuplicateKeys)
	if err != nil {
		return Options{}, err
	}
	if c.Limits.MaxDepth < 0 || c.Limits.MaxBytes < 0 {
		return Options{}, errors.New("limits must not be negative")
	}
	return Options{
		Driver: driver,
		Limits: Limits{
			MaxDepth:    c.Limits.MaxDepth,
			MaxBytes:    c.Limits.MaxBytes,
			OnDuplicate: dup,
		},
		AllowComments:    c.AllowComments,
		SkipUnknownTypes: c.SkipUnknownTypes,
		Parallelism:      c.Parallelism,
	}, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
