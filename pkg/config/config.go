package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tags names the OSM tags the reader looks at.
type Tags struct {
	Highway       string   `yaml:"highway"`
	Name          string   `yaml:"name"`
	Ref           string   `yaml:"ref"`
	Reverse       string   `yaml:"reverse"`
	ReverseValues []string `yaml:"reverse_values"`
}

// Progress controls the stderr progress line.
type Progress struct {
	Every    int   `yaml:"every"`      // ways between updates
	MaxWayID int64 `yaml:"max_way_id"` // expected highest way id, for the percentage
}

// Gaps controls the near-miss report.
type Gaps struct {
	Meters float64 `yaml:"meters"` // 0 disables the report
}

// Config holds all tunables.
type Config struct {
	Tags     Tags     `yaml:"tags"`
	Progress Progress `yaml:"progress"`
	Gaps     Gaps     `yaml:"gaps"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Tags: Tags{
			Highway:       "highway",
			Name:          "name",
			Ref:           "ref",
			Reverse:       "oneway",
			ReverseValues: []string{"-1"},
		},
		Progress: Progress{
			Every:    100_000,
			MaxWayID: 496_751_025,
		},
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Tags.Highway == "" {
		errs = append(errs, errors.New("tags.highway is empty"))
	}
	if c.Tags.Name == "" && c.Tags.Ref == "" {
		errs = append(errs, errors.New("tags.name and tags.ref are both empty"))
	}
	if c.Tags.Reverse != "" && len(c.Tags.ReverseValues) == 0 {
		errs = append(errs, errors.New("tags.reverse_values is empty"))
	}
	if c.Progress.Every <= 0 {
		errs = append(errs, fmt.Errorf("progress.every must be positive, got %d", c.Progress.Every))
	}
	if c.Progress.MaxWayID < 0 {
		errs = append(errs, fmt.Errorf("progress.max_way_id must not be negative, got %d", c.Progress.MaxWayID))
	}
	if c.Gaps.Meters < 0 {
		errs = append(errs, fmt.Errorf("gaps.meters must not be negative, got %g", c.Gaps.Meters))
	}
	return errors.Join(errs...)
}
