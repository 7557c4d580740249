// Package profile turns a helper description into simulation inputs.
package profile

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/inventory"
	"github.com/pthm-cable/drowse/simerr"
)

// MaxSpeedBonus caps the summed help-speed subskills.
const MaxSpeedBonus = 0.35

// Profile describes one helper.
type Profile struct {
	Name                    string                 `yaml:"name"`
	BaseFrequencySeconds    float64                `yaml:"base_frequency_seconds"`
	Level                   int                    `yaml:"level"`
	Nature                  string                 `yaml:"nature"`
	SpeedBonus              float64                `yaml:"speed_bonus"`       // Summed subskills, 0.07 per small
	MaxEnergyFactor         float64                `yaml:"max_energy_factor"` // Zero means 1
	SkillTriggerProbability float64                `yaml:"skill_trigger_probability"`
	CarryCapacity           int                    `yaml:"carry_capacity"` // Zero disables inventory tracking
	Distribution            inventory.Distribution `yaml:"distribution"`
}

// File is a profile document: shared parameters plus helpers.
type File struct {
	Parameters energy.Parameters `yaml:"parameters"`
	Helpers    []Profile         `yaml:"helpers"`
}

// Resolved is a profile reduced to simulation inputs.
type Resolved struct {
	Label     string
	Rates     energy.Rates
	Inventory *energy.Inventory
}

// Load reads a profile document. Parameters not present keep their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a profile document.
func Parse(data []byte) (*File, error) {
	f := &File{Parameters: energy.DefaultParameters()}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}
	if len(f.Helpers) == 0 {
		return nil, fmt.Errorf("profile file lists no helpers")
	}
	seen := make(map[string]bool, len(f.Helpers))
	for i := range f.Helpers {
		h := &f.Helpers[i]
		h.Name = strings.TrimSpace(h.Name)
		if h.Name == "" {
			h.Name = fmt.Sprintf("helper-%d", i+1)
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("duplicate helper %q", h.Name)
		}
		seen[h.Name] = true
	}
	return f, nil
}

// Resolve applies level, nature and subskills to a profile.
func (p Profile) Resolve(cfg *config.Config, curve energy.Curve) (Resolved, error) {
	if p.BaseFrequencySeconds <= 0 || math.IsNaN(p.BaseFrequencySeconds) {
		return Resolved{}, simerr.InvalidParameter("baseFrequencySeconds", "%s: must be positive, got %v", p.Name, p.BaseFrequencySeconds)
	}
	level := p.Level
	if level == 0 {
		level = 1
	}
	if level < 1 {
		return Resolved{}, simerr.InvalidParameter("level", "%s: must be at least 1, got %d", p.Name, p.Level)
	}
	if p.SpeedBonus < 0 || math.IsNaN(p.SpeedBonus) {
		return Resolved{}, simerr.InvalidParameter("speedBonus", "%s: must not be negative, got %v", p.Name, p.SpeedBonus)
	}

	nature, err := LookupNature(cfg, p.Nature)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", p.Name, err)
	}

	speed := nature.Speed * (1 - math.Min(p.SpeedBonus, MaxSpeedBonus))
	maxEnergy := p.MaxEnergyFactor
	if maxEnergy == 0 {
		maxEnergy = 1
	}

	r := Resolved{
		Label: p.Name,
		Rates: energy.Rates{
			BaseFrequencySeconds:    energy.ResolveFrequency(p.BaseFrequencySeconds, level, speed),
			RecoveryFactor:          nature.Recovery,
			MaxEnergyFactor:         maxEnergy,
			SkillTriggerProbability: p.SkillTriggerProbability,
			Curve:                   curve,
		},
	}
	if err := r.Rates.Validate(); err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", p.Name, err)
	}

	if p.CarryCapacity > 0 {
		if err := p.Distribution.Validate(); err != nil {
			return Resolved{}, fmt.Errorf("%s: %w", p.Name, err)
		}
		r.Inventory = &energy.Inventory{CarryCapacity: p.CarryCapacity, Distribution: p.Distribution}
	}
	return r, nil
}
