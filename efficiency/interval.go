// Package efficiency turns an energy timeline into efficiency intervals and
// aggregates them into averages, help counts and skill probabilities.
package efficiency

import "github.com/pthm-cable/drowse/energy"

// Interval is a span [Start, End) of constant efficiency and flags.
type Interval struct {
	Start      int     `json:"start" csv:"start"`
	End        int     `json:"end" csv:"end"`
	Efficiency float64 `json:"efficiency" csv:"efficiency"`
	IsAwake    bool    `json:"isAwake" csv:"is_awake"`
	IsSnacking bool    `json:"isSnacking" csv:"is_snacking"`
	IsInPeriod bool    `json:"isInPeriod" csv:"is_in_period"`
}

// Minutes returns the interval length.
func (iv Interval) Minutes() int { return iv.End - iv.Start }

func (iv Interval) sameAs(o Interval) bool {
	return iv.Efficiency == o.Efficiency &&
		iv.IsAwake == o.IsAwake &&
		iv.IsSnacking == o.IsSnacking &&
		iv.IsInPeriod == o.IsInPeriod
}

// Segment partitions [0, CycleMinutes) into intervals. A new interval starts
// wherever efficiency or any flag changes; equal neighbours are merged.
func Segment(tl *energy.Timeline) []Interval {
	var out []Interval
	for t := 0; t < tl.CycleMinutes; {
		end := nextBoundary(tl, t)
		iv := Interval{
			Start:      t,
			End:        end,
			Efficiency: efficiencyAt(tl, t),
			IsAwake:    tl.Awake(t),
			IsSnacking: tl.Snacking(t),
			IsInPeriod: t < tl.PeriodEnd,
		}
		if n := len(out); n > 0 && out[n-1].sameAs(iv) {
			out[n-1].End = end
		} else {
			out = append(out, iv)
		}
		t = end
	}
	return out
}

// efficiencyAt pins snacking spans to the curve's baseline.
func efficiencyAt(tl *energy.Timeline, minute int) float64 {
	if tl.Snacking(minute) {
		return tl.Curve.Baseline
	}
	return tl.EfficiencyAt(minute)
}

// nextBoundary is the earliest minute after t at which energy, an event, a
// snack span or the period edge can change the interval.
func nextBoundary(tl *energy.Timeline, t int) int {
	end := min(tl.NextEnergyChange(t), tl.NextSnackChange(t), tl.CycleMinutes)
	for _, ev := range tl.Events {
		if ev.Minutes > t {
			end = min(end, ev.Minutes)
			break
		}
	}
	if tl.PeriodEnd > t {
		end = min(end, tl.PeriodEnd)
	}
	return end
}
