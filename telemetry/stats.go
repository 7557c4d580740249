package telemetry

import (
	"log/slog"
	"sort"

	"github.com/pthm-cable/drowse/efficiency"
	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/inventory"
)

// Summary is one simulation run flattened to a row.
type Summary struct {
	Label        string  `csv:"label"`
	Period       float64 `csv:"period_h"`
	SleepScore   int     `csv:"sleep_score"`
	BurstCount   int     `csv:"burst_count"`
	BurstAmount  float64 `csv:"burst_amount"`
	AwakeTap     string  `csv:"awake_tap"`
	AsleepTap    string  `csv:"asleep_tap"`
	FieldBonus   int     `csv:"field_bonus"`
	FrequencySec float64 `csv:"frequency_s"`
	PeriodEnd    int     `csv:"period_end"`

	// Efficiency averages
	AvgTotal  float64 `csv:"avg_total"`
	AvgAwake  float64 `csv:"avg_awake"`
	AvgAsleep float64 `csv:"avg_asleep"`

	// Help counts
	HelpsAwake         float64 `csv:"helps_awake"`
	HelpsAsleepFull    float64 `csv:"helps_asleep_full"`
	HelpsAsleepNotFull float64 `csv:"helps_asleep_not_full"`

	SkillOnce  float64 `csv:"skill_once"`
	SkillTwice float64 `csv:"skill_twice"`

	// Inventory
	TimeToFull   float64 `csv:"time_to_full"`
	FillHelpsP50 int     `csv:"fill_helps_p50"` // -1 when unknown
	FillHelpsP90 int     `csv:"fill_helps_p90"`
}

// Summarize flattens a result.
func Summarize(label string, params energy.Parameters, res *efficiency.Result) Summary {
	s := Summary{
		Label:              label,
		Period:             float64(params.Period),
		SleepScore:         params.SleepScore,
		BurstCount:         params.BurstCount,
		BurstAmount:        params.BurstAmount,
		AwakeTap:           params.AwakeTap.String(),
		AsleepTap:          params.AsleepTap.String(),
		FieldBonus:         params.FieldBonus,
		FrequencySec:       res.FrequencySeconds,
		PeriodEnd:          res.PeriodEnd,
		AvgTotal:           res.AverageEfficiency.Total,
		AvgAwake:           res.AverageEfficiency.Awake,
		AvgAsleep:          res.AverageEfficiency.Asleep,
		HelpsAwake:         res.HelpCount.Awake,
		HelpsAsleepFull:    res.HelpCount.AsleepFull,
		HelpsAsleepNotFull: res.HelpCount.AsleepNotFull,
		SkillOnce:          res.SkillProbabilityAfterWakeup.Once,
		SkillTwice:         res.SkillProbabilityAfterWakeup.Twice,
		TimeToFull:         res.TimeToFullInventory,
		FillHelpsP50:       -1,
		FillHelpsP90:       -1,
	}
	if res.InventoryCDF != nil {
		s.FillHelpsP50 = inventory.HelpsAtProbability(res.InventoryCDF, 0.5)
		s.FillHelpsP90 = inventory.HelpsAtProbability(res.InventoryCDF, 0.9)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("label", s.Label),
		slog.Float64("period_h", s.Period),
		slog.Int("sleep_score", s.SleepScore),
		slog.Int("burst_count", s.BurstCount),
		slog.Float64("frequency_s", s.FrequencySec),
		slog.Float64("avg_total", s.AvgTotal),
		slog.Float64("avg_awake", s.AvgAwake),
		slog.Float64("avg_asleep", s.AvgAsleep),
		slog.Float64("helps_awake", s.HelpsAwake),
		slog.Float64("helps_asleep_full", s.HelpsAsleepFull),
		slog.Float64("helps_asleep_not_full", s.HelpsAsleepNotFull),
		slog.Float64("skill_once", s.SkillOnce),
		slog.Float64("skill_twice", s.SkillTwice),
		slog.Float64("time_to_full", s.TimeToFull),
		slog.Int("fill_helps_p50", s.FillHelpsP50),
		slog.Int("fill_helps_p90", s.FillHelpsP90),
	)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Spread summarizes a value across many runs.
type Spread struct {
	Mean, P10, P50, P90 float64
}

// ComputeSpread calculates mean and percentiles, e.g. of average efficiency
// across a box of helpers.
func ComputeSpread(values []float64) Spread {
	n := len(values)
	if n == 0 {
		return Spread{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return Spread{
		Mean: sum / float64(n),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}
