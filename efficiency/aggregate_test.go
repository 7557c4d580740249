package efficiency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/inventory"
)

func testRates() energy.Rates {
	return energy.Rates{
		BaseFrequencySeconds:    3000,
		RecoveryFactor:          1,
		MaxEnergyFactor:         1,
		SkillTriggerProbability: 0.05,
		Curve:                   energy.DefaultCurve(),
	}
}

func build(t *testing.T, params energy.Parameters, inv *energy.Inventory) *energy.Timeline {
	t.Helper()
	tl, err := energy.Build(params, testRates(), energy.DefaultBalance(), inv)
	require.NoError(t, err)
	return tl
}

func assertPartition(t *testing.T, intervals []Interval, cycle int) {
	t.Helper()
	require.NotEmpty(t, intervals)
	assert.Equal(t, 0, intervals[0].Start)
	assert.Equal(t, cycle, intervals[len(intervals)-1].End)
	for i, iv := range intervals {
		assert.Greater(t, iv.End, iv.Start, "interval %d is empty", i)
		if i > 0 {
			assert.Equal(t, intervals[i-1].End, iv.Start, "gap before interval %d", i)
			assert.False(t, intervals[i-1].sameAs(iv), "intervals %d and %d should have merged", i-1, i)
		}
	}
}

func TestSegment_Partition(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*energy.Parameters)
		inv    *energy.Inventory
	}{
		{"default", func(*energy.Parameters) {}, nil},
		{"no sleep", func(p *energy.Parameters) { p.SleepScore = 0 }, nil},
		{"truncated", func(p *energy.Parameters) { p.Period = 3 }, nil},
		{"bursts", func(p *energy.Parameters) { p.BurstCount = 4; p.BurstAmount = 18 }, nil},
		{"snacking", func(*energy.Parameters) {}, &energy.Inventory{CarryCapacity: 10, Distribution: inventory.Distribution{1: 1}}},
		{"midpoint tap", func(p *energy.Parameters) { p.AsleepTap = energy.TapCheckpoints }, &energy.Inventory{CarryCapacity: 5, Distribution: inventory.Distribution{1: 1}}},
		{"always full", func(p *energy.Parameters) { p.AlwaysFull = true }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := energy.DefaultParameters()
			tt.mutate(&params)
			tl := build(t, params, tt.inv)
			assertPartition(t, Segment(tl), tl.CycleMinutes)
		})
	}
}

func TestSegment_FollowsEnergy(t *testing.T) {
	tl := build(t, energy.DefaultParameters(), nil)
	intervals := Segment(tl)

	curve := energy.DefaultCurve()
	for _, iv := range intervals {
		for m := iv.Start; m < iv.End; m++ {
			want := curve.Efficiency(tl.EnergyAt(m))
			if iv.Efficiency != want {
				t.Fatalf("minute %d: interval efficiency %v, energy efficiency %v", m, iv.Efficiency, want)
			}
			if iv.IsAwake != (m < 930) {
				t.Fatalf("minute %d: awake flag %v", m, iv.IsAwake)
			}
		}
	}
}

func TestAggregate_AlwaysFull(t *testing.T) {
	params := energy.DefaultParameters()
	params.AlwaysFull = true
	res := Aggregate(build(t, params, nil), Options{})

	top := 1 / 0.45
	assert.InDelta(t, top, res.AverageEfficiency.Total, 1e-9)
	assert.InDelta(t, top, res.AverageEfficiency.Awake, 1e-9)
	assert.InDelta(t, top, res.AverageEfficiency.Asleep, 1e-9)
	assert.InDelta(t, 930*0.02*top, res.HelpCount.Awake, 1e-9)
	assert.InDelta(t, 510*0.02*top, res.HelpCount.AsleepNotFull, 1e-9)
	assert.Equal(t, 0.0, res.HelpCount.AsleepFull)
	assert.Equal(t, -1.0, res.TimeToFullInventory)
}

func TestAggregate_Truncated(t *testing.T) {
	params := energy.DefaultParameters()
	params.Period = 3
	res := Aggregate(build(t, params, nil), Options{})

	// energy stays above 80 for the first three hours
	assert.InDelta(t, 1/0.45, res.AverageEfficiency.Total, 1e-9)
	assert.InDelta(t, 1/0.45, res.AverageEfficiency.Awake, 1e-9)
	assert.Equal(t, 0.0, res.AverageEfficiency.Asleep)
	assert.InDelta(t, 8.0, res.HelpCount.Awake, 1e-9)
	assert.Equal(t, 0.0, res.HelpCount.AsleepNotFull)
	assert.Equal(t, SkillProbability{}, res.SkillProbabilityAfterWakeup)

	for _, iv := range res.Efficiencies {
		assert.Equal(t, iv.Start < 180, iv.IsInPeriod, "interval %d-%d", iv.Start, iv.End)
	}
}

func TestAggregate_Snacking(t *testing.T) {
	inv := &energy.Inventory{CarryCapacity: 10, Distribution: inventory.Distribution{1: 1}}
	res := Aggregate(build(t, energy.DefaultParameters(), inv), Options{})

	assert.Equal(t, 1322.0, res.TimeToFullInventory)
	assert.InDelta(t, 118*0.02, res.HelpCount.AsleepFull, 1e-9)
	assert.NotEmpty(t, res.InventoryCDF)

	last := res.Efficiencies[len(res.Efficiencies)-1]
	assert.True(t, last.IsSnacking)
	assert.Equal(t, 1322, last.Start)
	assert.Equal(t, 1.0, last.Efficiency)
}

func TestAggregate_MidpointTapSplitsSnacking(t *testing.T) {
	params := energy.DefaultParameters()
	params.AsleepTap = energy.TapCheckpoints
	inv := &energy.Inventory{CarryCapacity: 5, Distribution: inventory.Distribution{1: 1}}
	res := Aggregate(build(t, params, inv), Options{})

	// full at 1096, emptied by the tap at 1185, full again at 1436
	assert.Equal(t, 1096.0, res.TimeToFullInventory)
	assert.InDelta(t, (89+4)*0.02, res.HelpCount.AsleepFull, 1e-9)

	var snacking []Interval
	for _, iv := range res.Efficiencies {
		if iv.IsSnacking {
			snacking = append(snacking, iv)
		}
	}
	require.Len(t, snacking, 2)
	assert.Equal(t, 1096, snacking[0].Start)
	assert.Equal(t, 1185, snacking[0].End)
	assert.Equal(t, 1.0, snacking[0].Efficiency)
	assert.Equal(t, 1436, snacking[1].Start)
	assert.Equal(t, 1440, snacking[1].End)
}

func TestAggregate_WeightedAverage(t *testing.T) {
	res := Aggregate(build(t, energy.DefaultParameters(), nil), Options{})

	var sum, weight float64
	for _, iv := range res.Efficiencies {
		sum += iv.Efficiency * float64(iv.Minutes())
		weight += float64(iv.Minutes())
	}
	assert.InDelta(t, sum/weight, res.AverageEfficiency.Total, 1e-9)
	assert.Greater(t, res.AverageEfficiency.Awake, res.AverageEfficiency.Asleep)
	assert.InDelta(t, res.HelpCount.Awake+res.HelpCount.AsleepNotFull, res.HelpCount.Total(), 1e-12)
}

func TestSkillAfterWakeup(t *testing.T) {
	tests := []struct {
		name  string
		helps float64
		p     float64
	}{
		{"typical", 20, 0.1},
		{"rounded trials", 12.4, 0.05},
		{"single", 1, 0.3},
		{"many", 60, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := math.Round(tt.helps)
			wantOnce := n * tt.p * math.Pow(1-tt.p, n-1)
			wantTwice := 1 - math.Pow(1-tt.p, n) - wantOnce

			got := SkillAfterWakeup(tt.helps, tt.p, nil)
			assert.InDelta(t, wantOnce, got.Once, 1e-9)
			assert.InDelta(t, wantTwice, got.Twice, 1e-9)
		})
	}
}

func TestSkillAfterWakeup_Edges(t *testing.T) {
	assert.Equal(t, SkillProbability{}, SkillAfterWakeup(0, 0.5, nil))
	assert.Equal(t, SkillProbability{}, SkillAfterWakeup(10, 0, nil))
	assert.Equal(t, SkillProbability{Once: 1}, SkillAfterWakeup(1, 1, nil))
	assert.Equal(t, SkillProbability{Twice: 1}, SkillAfterWakeup(5, 1, nil))
}

func TestSkillAfterWakeup_Adjuster(t *testing.T) {
	var seen int
	guaranteed := func(p float64, n int) float64 {
		seen = n
		return 1
	}
	got := SkillAfterWakeup(7.6, 0.02, guaranteed)
	assert.Equal(t, 8, seen)
	assert.Equal(t, 1.0, got.Twice)
}
