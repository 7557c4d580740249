// Package config provides game-balance configuration loading and access.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game-balance parameters.
type Config struct {
	Cycle        CycleConfig            `yaml:"cycle"`
	Sleep        SleepConfig            `yaml:"sleep"`
	Decay        DecayConfig            `yaml:"decay"`
	Cook         CookConfig             `yaml:"cook"`
	Frequency    FrequencyConfig        `yaml:"frequency"`
	CurveVersion string                 `yaml:"curve_version"`
	Curves       map[string]CurveConfig `yaml:"curves"`
	Inventory    InventoryConfig        `yaml:"inventory"`
	Natures      []NatureConfig         `yaml:"natures"`
	Telemetry    TelemetryConfig        `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// CycleConfig holds the length of one activity cycle.
type CycleConfig struct {
	Minutes int `yaml:"minutes"`
}

// SleepConfig holds sleep recovery parameters.
type SleepConfig struct {
	FullMinutes       int     `yaml:"full_minutes"`        // Sleep length at score 100
	RecoveryBonusStep float64 `yaml:"recovery_bonus_step"` // Extra recovery per bonus count
}

// DecayConfig holds the energy drain schedule.
type DecayConfig struct {
	IntervalMinutes int     `yaml:"interval_minutes"`
	Amount          float64 `yaml:"amount"`
}

// CookConfig holds meal checkpoints and the recovery they grant.
type CookConfig struct {
	Minutes  []int              `yaml:"minutes"` // Minutes after wake
	Recovery []CookRecoveryStep `yaml:"recovery"`
}

// CookRecoveryStep grants Amount energy when energy is below Below.
type CookRecoveryStep struct {
	Below  float64 `yaml:"below"`
	Amount float64 `yaml:"amount"`
}

// FrequencyConfig holds help-speed modifiers.
type FrequencyConfig struct {
	HelpingBonusStep float64 `yaml:"helping_bonus_step"`
	HelpingBonusMax  int     `yaml:"helping_bonus_max"`
	CampTicketSpeed  float64 `yaml:"camp_ticket_speed"`
}

// CurveConfig is one versioned energy -> efficiency table.
type CurveConfig struct {
	Thresholds []float64 `yaml:"thresholds"`
	Rates      []float64 `yaml:"rates"`
	Baseline   float64   `yaml:"baseline"`
}

// InventoryConfig holds inventory reporting parameters.
type InventoryConfig struct {
	FillQuantiles []float64 `yaml:"fill_quantiles"`
}

// NatureConfig holds the numeric modifiers of one nature. Zero means neutral.
type NatureConfig struct {
	Name     string  `yaml:"name"`
	Speed    float64 `yaml:"speed,omitempty"`
	Recovery float64 `yaml:"recovery,omitempty"`
}

// TelemetryConfig holds logging parameters.
type TelemetryConfig struct {
	LogLevel string `yaml:"log_level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Curve       CurveConfig    // Active curve
	NatureIndex map[string]int // lowercase name -> index into Natures
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived resolves the active curve and indexes natures.
func (c *Config) computeDerived() error {
	curve, ok := c.Curves[c.CurveVersion]
	if !ok {
		return fmt.Errorf("unknown curve version %q", c.CurveVersion)
	}
	if len(curve.Thresholds) != len(curve.Rates) {
		return fmt.Errorf("curve %q: %d thresholds for %d rates", c.CurveVersion, len(curve.Thresholds), len(curve.Rates))
	}
	if curve.Baseline == 0 {
		curve.Baseline = 1
	}
	c.Derived.Curve = curve

	c.Derived.NatureIndex = make(map[string]int, len(c.Natures))
	for i := range c.Natures {
		n := &c.Natures[i]
		if n.Speed == 0 {
			n.Speed = 1
		}
		if n.Recovery == 0 {
			n.Recovery = 1
		}
		key := strings.ToLower(n.Name)
		if _, dup := c.Derived.NatureIndex[key]; dup {
			return fmt.Errorf("duplicate nature %q", n.Name)
		}
		c.Derived.NatureIndex[key] = i
	}
	return nil
}

// Nature returns the nature with the given name, case-insensitively.
func (c *Config) Nature(name string) (NatureConfig, bool) {
	i, ok := c.Derived.NatureIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return NatureConfig{}, false
	}
	return c.Natures[i], true
}

// NatureNames lists the configured nature names in file order.
func (c *Config) NatureNames() []string {
	names := make([]string, len(c.Natures))
	for i, n := range c.Natures {
		names[i] = n.Name
	}
	return names
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
