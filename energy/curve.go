package energy

import (
	"math"

	"github.com/pthm-cable/drowse/simerr"
)

// Bracket is one step of the energy -> efficiency curve. It applies while
// energy is strictly above Above.
type Bracket struct {
	Above      float64 `yaml:"above" json:"above"`
	Efficiency float64 `yaml:"efficiency" json:"efficiency"`
}

// Curve maps an energy level to a help-speed multiplier. Brackets are sorted
// by Above, highest first; Baseline applies when no bracket matches.
type Curve struct {
	Brackets []Bracket `yaml:"brackets" json:"brackets"`
	Baseline float64   `yaml:"baseline" json:"baseline"`
}

// CurveFromRates builds a curve from frequency multipliers (0.45 means a
// help takes 45% of the base time). Efficiency is the reciprocal.
func CurveFromRates(above, rates []float64, baseline float64) (Curve, error) {
	if len(above) != len(rates) {
		return Curve{}, simerr.InvalidParameter("curve", "%d thresholds for %d rates", len(above), len(rates))
	}
	c := Curve{Baseline: baseline, Brackets: make([]Bracket, len(rates))}
	for i, r := range rates {
		if r <= 0 {
			return Curve{}, simerr.InvalidParameter("curve", "rate %d must be positive, got %v", i, r)
		}
		c.Brackets[i] = Bracket{Above: above[i], Efficiency: 1 / r}
	}
	return c, c.Validate()
}

// DefaultCurve is the current game-balance curve (rates 0.45/0.52/0.58/0.66).
func DefaultCurve() Curve {
	c, _ := CurveFromRates(
		[]float64{80, 60, 40, 0},
		[]float64{0.45, 0.52, 0.58, 0.66},
		1,
	)
	return c
}

// Validate checks the curve is a monotonic step function.
func (c Curve) Validate() error {
	if len(c.Brackets) == 0 {
		return simerr.InvalidParameter("curve", "no brackets")
	}
	if c.Baseline <= 0 || math.IsNaN(c.Baseline) {
		return simerr.InvalidParameter("curve", "baseline must be positive, got %v", c.Baseline)
	}
	prev := Bracket{Above: math.Inf(1), Efficiency: math.Inf(1)}
	for i, b := range c.Brackets {
		if b.Above >= prev.Above {
			return simerr.InvalidParameter("curve", "bracket %d threshold %v not below %v", i, b.Above, prev.Above)
		}
		if b.Efficiency <= 0 || b.Efficiency > prev.Efficiency {
			return simerr.InvalidParameter("curve", "bracket %d efficiency %v breaks monotonicity", i, b.Efficiency)
		}
		prev = b
	}
	if prev.Above < 0 {
		return simerr.InvalidParameter("curve", "lowest threshold must be >= 0, got %v", prev.Above)
	}
	if c.Baseline > prev.Efficiency {
		return simerr.InvalidParameter("curve", "baseline %v above lowest bracket %v", c.Baseline, prev.Efficiency)
	}
	return nil
}

// Efficiency returns the multiplier for the given energy.
func (c Curve) Efficiency(energy float64) float64 {
	for _, b := range c.Brackets {
		if energy > b.Above {
			return b.Efficiency
		}
	}
	return c.Baseline
}

// Top returns the efficiency at full energy.
func (c Curve) Top() float64 {
	if len(c.Brackets) == 0 {
		return c.Baseline
	}
	return c.Brackets[0].Efficiency
}
