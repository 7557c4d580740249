package efficiency

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SkillProbability is the chance a helper wakes up holding one or at least
// two triggered skills.
type SkillProbability struct {
	Once  float64 `json:"once"`
	Twice float64 `json:"twice"`
}

// TriggerAdjuster rewrites the per-help trigger probability for n untended
// helps, e.g. to model a guaranteed trigger after a dry streak.
type TriggerAdjuster func(p float64, n int) float64

// SkillAfterWakeup treats each untended asleep help as an independent
// Bernoulli trial.
func SkillAfterWakeup(helps, p float64, adjust TriggerAdjuster) SkillProbability {
	n := int(math.Round(helps))
	if adjust != nil {
		p = adjust(p, n)
	}
	if n <= 0 || p <= 0 {
		return SkillProbability{}
	}
	if p >= 1 {
		if n == 1 {
			return SkillProbability{Once: 1}
		}
		return SkillProbability{Twice: 1}
	}
	b := distuv.Binomial{N: float64(n), P: p}
	none := b.Prob(0)
	once := b.Prob(1)
	return SkillProbability{
		Once:  once,
		Twice: math.Max(0, 1-none-once),
	}
}
