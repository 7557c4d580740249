// Package energy builds a helper's energy trajectory over one activity cycle.
//
// The builder is a small state machine over simulated minutes. It emits a
// strictly ordered list of events (wake, cook, sleep, empty, snack); energy
// between events follows a fixed decay schedule, so any minute's energy can be
// recovered from the timeline with EnergyAt.
package energy

import (
	"fmt"
	"math"
	"strings"

	"github.com/pthm-cable/drowse/simerr"
)

// TapPolicy is how often the player interacts with the helper.
type TapPolicy int

const (
	// TapAlways keeps the inventory collected at all times.
	TapAlways TapPolicy = iota
	// TapNone never collects.
	TapNone
	// TapCheckpoints collects at decision points only: cooks while awake,
	// the sleep midpoint while asleep.
	TapCheckpoints
)

var tapPolicyNames = [...]string{"always", "none", "checkpoints"}

func (p TapPolicy) String() string {
	if p < 0 || int(p) >= len(tapPolicyNames) {
		return fmt.Sprintf("TapPolicy(%d)", int(p))
	}
	return tapPolicyNames[p]
}

// ParseTapPolicy parses "always", "none" or "checkpoints".
func ParseTapPolicy(s string) (TapPolicy, error) {
	for i, name := range tapPolicyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return TapPolicy(i), nil
		}
	}
	return 0, simerr.InvalidParameter("tap", "unknown tap policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p TapPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *TapPolicy) UnmarshalText(text []byte) error {
	v, err := ParseTapPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p TapPolicy) valid() bool { return p >= TapAlways && p <= TapCheckpoints }

// Period is the reporting window in hours.
type Period float64

const (
	// PeriodUntilFull reports from wake until the inventory is expected to
	// be full, starting empty.
	PeriodUntilFull Period = -1
	// FullDay reports the whole cycle.
	FullDay Period = 24
)

// Parameters are the per-call simulation inputs.
type Parameters struct {
	Period         Period    `yaml:"period" json:"period"`
	BurstCount     int       `yaml:"burst_count" json:"burstCount"`
	BurstAmount    float64   `yaml:"burst_amount" json:"burstAmount"`
	SleepScore     int       `yaml:"sleep_score" json:"sleepScore"`
	AwakeTap       TapPolicy `yaml:"awake_tap" json:"awakeTap"`
	AsleepTap      TapPolicy `yaml:"asleep_tap" json:"asleepTap"`
	HelpingBonus   int       `yaml:"helping_bonus" json:"helpingBonus"`
	RecoveryBonus  int       `yaml:"recovery_bonus" json:"recoveryBonus"`
	AlwaysFull     bool      `yaml:"always_full" json:"alwaysFull"`
	GoodCampTicket bool      `yaml:"good_camp_ticket" json:"goodCampTicket"`
	FieldBonus     int       `yaml:"field_bonus" json:"fieldBonus"`
}

// DefaultParameters is a full day with a perfect sleep and no interaction
// while asleep.
func DefaultParameters() Parameters {
	return Parameters{
		Period:     FullDay,
		SleepScore: 100,
		AwakeTap:   TapAlways,
		AsleepTap:  TapNone,
	}
}

// Validate fails fast on out-of-range inputs.
func (p Parameters) Validate() error {
	if p.Period != PeriodUntilFull && (p.Period <= 0 || p.Period > FullDay || math.IsNaN(float64(p.Period))) {
		return simerr.InvalidParameter("period", "must be in (0, 24] hours or PeriodUntilFull, got %v", float64(p.Period))
	}
	if p.Period != PeriodUntilFull && float64(p.Period)*60 < 1 {
		return simerr.InvalidParameter("period", "must be at least one minute, got %v hours", float64(p.Period))
	}
	if p.BurstCount < 0 {
		return simerr.InvalidParameter("burstCount", "must not be negative, got %d", p.BurstCount)
	}
	if p.BurstAmount < 0 || math.IsNaN(p.BurstAmount) {
		return simerr.InvalidParameter("burstAmount", "must not be negative, got %v", p.BurstAmount)
	}
	if p.SleepScore < 0 || p.SleepScore > 100 {
		return simerr.InvalidParameter("sleepScore", "must be in [0, 100], got %d", p.SleepScore)
	}
	if !p.AwakeTap.valid() {
		return simerr.InvalidParameter("awakeTap", "unknown policy %d", int(p.AwakeTap))
	}
	if !p.AsleepTap.valid() {
		return simerr.InvalidParameter("asleepTap", "unknown policy %d", int(p.AsleepTap))
	}
	if p.HelpingBonus < 0 {
		return simerr.InvalidParameter("helpingBonus", "must not be negative, got %d", p.HelpingBonus)
	}
	if p.RecoveryBonus < 0 {
		return simerr.InvalidParameter("recoveryBonus", "must not be negative, got %d", p.RecoveryBonus)
	}
	if p.FieldBonus < 0 || p.FieldBonus > 100 {
		return simerr.InvalidParameter("fieldBonus", "must be in [0, 100], got %d", p.FieldBonus)
	}
	return nil
}

// Rates are the creature's modifiers, already reduced to numbers.
type Rates struct {
	BaseFrequencySeconds    float64 `yaml:"base_frequency_seconds" json:"baseFrequencySeconds"`
	RecoveryFactor          float64 `yaml:"recovery_factor" json:"recoveryFactor"`
	MaxEnergyFactor         float64 `yaml:"max_energy_factor" json:"maxEnergyFactor"`
	SkillTriggerProbability float64 `yaml:"skill_trigger_probability" json:"skillTriggerProbability"`
	Curve                   Curve   `yaml:"curve" json:"curve"`
}

// Validate fails fast on out-of-range rates.
func (r Rates) Validate() error {
	if r.BaseFrequencySeconds <= 0 || math.IsNaN(r.BaseFrequencySeconds) {
		return simerr.InvalidParameter("baseFrequencySeconds", "must be positive, got %v", r.BaseFrequencySeconds)
	}
	if r.RecoveryFactor <= 0 || math.IsNaN(r.RecoveryFactor) {
		return simerr.InvalidParameter("recoveryFactor", "must be positive, got %v", r.RecoveryFactor)
	}
	if r.MaxEnergyFactor <= 0 || math.IsNaN(r.MaxEnergyFactor) {
		return simerr.InvalidParameter("maxEnergyFactor", "must be positive, got %v", r.MaxEnergyFactor)
	}
	if r.SkillTriggerProbability < 0 || r.SkillTriggerProbability > 1 || math.IsNaN(r.SkillTriggerProbability) {
		return simerr.InvalidParameter("skillTriggerProbability", "must be in [0, 1], got %v", r.SkillTriggerProbability)
	}
	return r.Curve.Validate()
}
