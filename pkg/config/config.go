// Package config loads the coherence engine's configuration: the resources
// directory reference data is read from, the temporal correlation window,
// and per-detector toggles. It follows the teacher's two-phase
// defaults-then-override shape: hardcoded Defaults(), merged with an
// optional YAML file via dario.cat/mergo, then validated eagerly so a
// misconfigured engine fails at startup rather than mid-run.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DetectorToggles enables or disables each of the eight detectors for a
// given analysis run. All default to enabled.
type DetectorToggles struct {
	Conflict  *bool `yaml:"conflict,omitempty"`
	Duplicate *bool `yaml:"duplicate,omitempty"`
	Gap       *bool `yaml:"gap,omitempty"`
	Drift     *bool `yaml:"drift,omitempty"`
	Temporal  *bool `yaml:"temporal,omitempty"`
	Allergy   *bool `yaml:"allergy,omitempty"`
	Dose      *bool `yaml:"dose,omitempty"`
	Critical  *bool `yaml:"critical,omitempty"`
}

func boolOrDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Enabled reports, per detector name as used in spec.md §4, whether that
// detector should run. Unknown names are treated as enabled.
func (t DetectorToggles) Enabled(name string) bool {
	switch name {
	case "conflict":
		return boolOrDefault(t.Conflict, true)
	case "duplicate":
		return boolOrDefault(t.Duplicate, true)
	case "gap":
		return boolOrDefault(t.Gap, true)
	case "drift":
		return boolOrDefault(t.Drift, true)
	case "temporal":
		return boolOrDefault(t.Temporal, true)
	case "allergy":
		return boolOrDefault(t.Allergy, true)
	case "dose":
		return boolOrDefault(t.Dose, true)
	case "critical":
		return boolOrDefault(t.Critical, true)
	default:
		return true
	}
}

// EngineConfig is the coherence engine's top-level configuration.
type EngineConfig struct {
	ResourcesDir          string          `yaml:"resources_dir" validate:"required"`
	CorrelationWindowDays int             `yaml:"correlation_window_days" validate:"min=0"`
	Detectors             DetectorToggles `yaml:"detectors"`
}

// Stats summarizes config for startup logging, mirroring Config.Stats() in
// the teacher.
type Stats struct {
	ResourcesDir          string
	CorrelationWindowDays int
}

func (c *EngineConfig) Stats() Stats {
	return Stats{ResourcesDir: c.ResourcesDir, CorrelationWindowDays: c.CorrelationWindowDays}
}

// Defaults returns the engine's hardcoded baseline configuration. The
// correlation window default of 14 days matches spec.md §4.7's W.
func Defaults() *EngineConfig {
	return &EngineConfig{
		ResourcesDir:          "resources",
		CorrelationWindowDays: 14,
	}
}

var validate = validator.New()

// Load reads an optional YAML file at path, merges it over Defaults() (user
// values win, per dario.cat/mergo.WithOverride), and validates the result.
// An empty path returns Defaults() unmodified.
func Load(path string) (*EngineConfig, error) {
	cfg := Defaults()
	if path == "" {
		if err := validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return cfg, nil
	}

	log := slog.With("config_path", path)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, ErrConfigNotFound)
		}
		return nil, NewLoadError(path, err)
	}

	var override EngineConfig
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return nil, NewLoadError(path, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("engine configuration loaded", "resources_dir", cfg.ResourcesDir,
		"correlation_window_days", cfg.CorrelationWindowDays)
	return cfg, nil
}
