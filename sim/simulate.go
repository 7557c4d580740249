// Package sim is the entry point to the simulation core. Simulate and
// ComputeDistribution are pure: every call builds fresh values from its
// inputs and shares nothing with other calls.
package sim

import (
	"fmt"

	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/efficiency"
	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/inventory"
)

// Result is the full simulation output.
type Result = efficiency.Result

// Options carries optional collaborators of a run.
type Options struct {
	// Balance overrides the built-in game-balance constants.
	Balance *energy.Balance
	// Adjust rewrites the skill trigger probability.
	Adjust efficiency.TriggerAdjuster
}

// Simulate projects energy and efficiency over one cycle. inv may be nil
// when the caller does not track the inventory; no snack is modelled then.
func Simulate(params energy.Parameters, rates energy.Rates, inv *energy.Inventory, opts Options) (*Result, error) {
	balance := energy.DefaultBalance()
	if opts.Balance != nil {
		balance = *opts.Balance
	}
	tl, err := energy.Build(params, rates, balance, inv)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return efficiency.Aggregate(tl, efficiency.Options{Adjust: opts.Adjust}), nil
}

// ComputeDistribution returns the inventory fill CDF.
func ComputeDistribution(dist inventory.Distribution, carry int, goodCampTicket bool) ([]float64, error) {
	cdf, err := inventory.ComputeDistribution(dist, carry, goodCampTicket)
	if err != nil {
		return nil, fmt.Errorf("compute distribution: %w", err)
	}
	return cdf, nil
}

// BalanceFromConfig converts loaded configuration into balance constants.
func BalanceFromConfig(cfg *config.Config) energy.Balance {
	b := energy.Balance{
		CycleMinutes:         cfg.Cycle.Minutes,
		FullSleepMinutes:     cfg.Sleep.FullMinutes,
		DecayIntervalMinutes: cfg.Decay.IntervalMinutes,
		DecayAmount:          cfg.Decay.Amount,
		CookMinutes:          append([]int(nil), cfg.Cook.Minutes...),
		RecoveryBonusStep:    cfg.Sleep.RecoveryBonusStep,
		HelpingBonusStep:     cfg.Frequency.HelpingBonusStep,
		HelpingBonusMax:      cfg.Frequency.HelpingBonusMax,
		CampTicketSpeed:      cfg.Frequency.CampTicketSpeed,
	}
	for _, step := range cfg.Cook.Recovery {
		b.CookRecovery = append(b.CookRecovery, energy.CookBracket{Below: step.Below, Amount: step.Amount})
	}
	return b
}

// CurveFromConfig builds the active efficiency curve.
func CurveFromConfig(cfg *config.Config) (energy.Curve, error) {
	c := cfg.Derived.Curve
	curve, err := energy.CurveFromRates(c.Thresholds, c.Rates, c.Baseline)
	if err != nil {
		return energy.Curve{}, fmt.Errorf("curve %s: %w", cfg.CurveVersion, err)
	}
	return curve, nil
}
