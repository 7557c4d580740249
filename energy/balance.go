package energy

import (
	"math"

	"github.com/pthm-cable/drowse/simerr"
)

// CookBracket is the meal recovery applied when energy is below Below.
type CookBracket struct {
	Below  float64 `yaml:"below" json:"below"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// Balance holds the game-balance constants of the cycle. They come from
// configuration; DefaultBalance mirrors the shipped defaults.
type Balance struct {
	CycleMinutes         int           `yaml:"cycle_minutes"`
	FullSleepMinutes     int           `yaml:"full_sleep_minutes"`
	DecayIntervalMinutes int           `yaml:"decay_interval_minutes"`
	DecayAmount          float64       `yaml:"decay_amount"`
	CookMinutes          []int         `yaml:"cook_minutes"`
	CookRecovery         []CookBracket `yaml:"cook_recovery"`
	RecoveryBonusStep    float64       `yaml:"recovery_bonus_step"`
	HelpingBonusStep     float64       `yaml:"helping_bonus_step"`
	HelpingBonusMax      int           `yaml:"helping_bonus_max"`
	CampTicketSpeed      float64       `yaml:"camp_ticket_speed"`
}

// DefaultBalance returns the built-in constants.
func DefaultBalance() Balance {
	return Balance{
		CycleMinutes:         1440,
		FullSleepMinutes:     510,
		DecayIntervalMinutes: 10,
		DecayAmount:          1,
		CookMinutes:          []int{120, 360, 720},
		CookRecovery: []CookBracket{
			{Below: 80, Amount: 5},
			{Below: 100, Amount: 4},
			{Below: 150, Amount: 3},
		},
		RecoveryBonusStep: 0.14,
		HelpingBonusStep:  0.05,
		HelpingBonusMax:   5,
		CampTicketSpeed:   1.2,
	}
}

// Validate checks the constants are usable.
func (b Balance) Validate() error {
	if b.CycleMinutes <= 0 {
		return simerr.InvalidParameter("cycleMinutes", "must be positive, got %d", b.CycleMinutes)
	}
	if b.FullSleepMinutes < 0 || b.FullSleepMinutes >= b.CycleMinutes {
		return simerr.InvalidParameter("fullSleepMinutes", "must be in [0, %d), got %d", b.CycleMinutes, b.FullSleepMinutes)
	}
	if b.DecayIntervalMinutes <= 0 {
		return simerr.InvalidParameter("decayIntervalMinutes", "must be positive, got %d", b.DecayIntervalMinutes)
	}
	if b.DecayAmount <= 0 {
		return simerr.InvalidParameter("decayAmount", "must be positive, got %v", b.DecayAmount)
	}
	prev := 0
	for i, m := range b.CookMinutes {
		if m <= prev || m >= b.CycleMinutes {
			return simerr.InvalidParameter("cookMinutes", "entry %d (%d) must be increasing within (0, %d)", i, m, b.CycleMinutes)
		}
		prev = m
	}
	if b.CampTicketSpeed <= 0 {
		return simerr.InvalidParameter("campTicketSpeed", "must be positive, got %v", b.CampTicketSpeed)
	}
	if b.HelpingBonusStep < 0 || b.HelpingBonusStep*float64(b.HelpingBonusMax) >= 1 {
		return simerr.InvalidParameter("helpingBonusStep", "step %v x max %d must stay below 1", b.HelpingBonusStep, b.HelpingBonusMax)
	}
	return nil
}

// cookRecovery returns the meal recovery for the given energy.
func (b Balance) cookRecovery(energy float64) float64 {
	for _, c := range b.CookRecovery {
		if energy < c.Below {
			return c.Amount
		}
	}
	return 0
}

// SleepMinutes returns the sleep length for a sleep score.
func (b Balance) SleepMinutes(score int) int {
	return int(math.Round(float64(score) / 100 * float64(b.FullSleepMinutes)))
}

// Frequency applies the helping bonus and camp ticket to a resolved base
// help interval in seconds.
func (b Balance) Frequency(base float64, helpingBonus int, goodCampTicket bool) float64 {
	n := min(helpingBonus, b.HelpingBonusMax)
	freq := base * (1 - b.HelpingBonusStep*float64(n))
	if goodCampTicket {
		freq /= b.CampTicketSpeed
	}
	return freq
}

// floorGuard absorbs float drift so a product that should land on a whole
// second (e.g. level 10 with a 0.982 level factor) is not floored one below.
const floorGuard = 1e-6

// ResolveFrequency turns a species base frequency into whole seconds for a
// level and a combined nature/sub-skill speed factor.
func ResolveFrequency(base float64, level int, speedFactor float64) float64 {
	levelFactor := 1 - 0.002*float64(level-1)
	return math.Floor(base*levelFactor*speedFactor + floorGuard)
}
