package efficiency

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/drowse/energy"
)

// Averages are duration-weighted mean efficiencies over the period.
type Averages struct {
	Total  float64 `json:"total"`
	Awake  float64 `json:"awake"`
	Asleep float64 `json:"asleep"`
}

// HelpCount splits in-period helps by phase. Asleep helps are split by
// whether the inventory was already full.
type HelpCount struct {
	Awake         float64 `json:"awake"`
	AsleepFull    float64 `json:"asleepFull"`
	AsleepNotFull float64 `json:"asleepNotFull"`
}

// Total returns all helps in the period.
func (h HelpCount) Total() float64 {
	return h.Awake + h.AsleepFull + h.AsleepNotFull
}

// Result is the complete simulation output.
type Result struct {
	Events                      []energy.Event   `json:"events"`
	Efficiencies                []Interval       `json:"efficiencies"`
	AverageEfficiency           Averages         `json:"averageEfficiency"`
	HelpCount                   HelpCount        `json:"helpCount"`
	SkillProbabilityAfterWakeup SkillProbability `json:"skillProbabilityAfterWakeup"`
	// TimeToFullInventory is the snack minute, -1 if the inventory never
	// fills while asleep within the period.
	TimeToFullInventory float64 `json:"timeToFullInventory"`

	FrequencySeconds float64   `json:"frequencySeconds"`
	MaxEnergy        float64   `json:"maxEnergy"`
	PeriodEnd        int       `json:"periodEnd"`
	InventoryCDF     []float64 `json:"inventoryCdf,omitempty"`
}

// Options tune aggregation.
type Options struct {
	// Adjust rewrites the skill trigger probability; nil keeps it.
	Adjust TriggerAdjuster
}

// Aggregate segments the timeline and reduces it to a Result.
func Aggregate(tl *energy.Timeline, opts Options) *Result {
	intervals := Segment(tl)

	var all, awake, asleep weighted
	var helps HelpCount
	perMinute := 60 / tl.FrequencySeconds
	for _, iv := range intervals {
		if !iv.IsInPeriod {
			continue
		}
		w := float64(iv.Minutes())
		n := w * perMinute * iv.Efficiency
		all.add(iv.Efficiency, w)
		switch {
		case iv.IsAwake:
			awake.add(iv.Efficiency, w)
			helps.Awake += n
		case iv.IsSnacking:
			asleep.add(iv.Efficiency, w)
			helps.AsleepFull += n
		default:
			asleep.add(iv.Efficiency, w)
			helps.AsleepNotFull += n
		}
	}

	res := &Result{
		Events:       tl.Events,
		Efficiencies: intervals,
		AverageEfficiency: Averages{
			Total:  all.mean(),
			Awake:  awake.mean(),
			Asleep: asleep.mean(),
		},
		HelpCount:                   helps,
		SkillProbabilityAfterWakeup: SkillAfterWakeup(helps.AsleepNotFull, tl.SkillTriggerProbability, opts.Adjust),
		TimeToFullInventory:         -1,
		FrequencySeconds:            tl.FrequencySeconds,
		MaxEnergy:                   tl.MaxEnergy,
		PeriodEnd:                   tl.PeriodEnd,
		InventoryCDF:                tl.FillCDF,
	}
	for _, ev := range tl.Events {
		if ev.Kind == energy.EventSnack && ev.IsInPeriod {
			res.TimeToFullInventory = float64(ev.Minutes)
			break
		}
	}
	return res
}

type weighted struct {
	values  []float64
	weights []float64
}

func (w *weighted) add(v, weight float64) {
	w.values = append(w.values, v)
	w.weights = append(w.weights, weight)
}

func (w *weighted) mean() float64 {
	if floats.Sum(w.weights) == 0 {
		return 0
	}
	return stat.Mean(w.values, w.weights)
}

// LogValue implements slog.LogValuer.
func (r *Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("events", len(r.Events)),
		slog.Int("intervals", len(r.Efficiencies)),
		slog.Int("period_end", r.PeriodEnd),
		slog.Float64("frequency_s", r.FrequencySeconds),
		slog.Float64("avg_total", r.AverageEfficiency.Total),
		slog.Float64("avg_awake", r.AverageEfficiency.Awake),
		slog.Float64("avg_asleep", r.AverageEfficiency.Asleep),
		slog.Float64("helps_awake", r.HelpCount.Awake),
		slog.Float64("helps_asleep_full", r.HelpCount.AsleepFull),
		slog.Float64("helps_asleep_not_full", r.HelpCount.AsleepNotFull),
		slog.Float64("skill_once", r.SkillProbabilityAfterWakeup.Once),
		slog.Float64("skill_twice", r.SkillProbabilityAfterWakeup.Twice),
		slog.Float64("time_to_full", r.TimeToFullInventory),
	)
}
