package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/drowse/efficiency"
	"github.com/pthm-cable/drowse/energy"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpread(t *testing.T) {
	values := []float64{1.0, 1.9, 1.2, 1.5, 2.2, 1.6, 1.7, 1.8, 1.3, 1.4}
	s := ComputeSpread(values)

	if math.Abs(s.Mean-1.56) > 0.001 {
		t.Errorf("mean = %v, want 1.56", s.Mean)
	}
	if math.Abs(s.P50-1.55) > 0.01 {
		t.Errorf("p50 = %v, want ~1.55", s.P50)
	}
	if s.P10 > s.P50 || s.P50 > s.P90 {
		t.Errorf("percentiles out of order: %+v", s)
	}
	if values[0] != 1.0 {
		t.Error("input slice should not be reordered")
	}
}

func TestComputeSpreadEmpty(t *testing.T) {
	if s := ComputeSpread(nil); s != (Spread{}) {
		t.Errorf("empty slice should return zero spread, got %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	params := energy.DefaultParameters()
	res := &efficiency.Result{
		AverageEfficiency:   efficiency.Averages{Total: 1.8, Awake: 2.0, Asleep: 1.5},
		HelpCount:           efficiency.HelpCount{Awake: 30, AsleepNotFull: 10},
		TimeToFullInventory: -1,
		FrequencySeconds:    2800,
		PeriodEnd:           1440,
		InventoryCDF:        []float64{0, 0.1, 0.6, 0.95, 1},
	}

	s := Summarize("bulbasaur", params, res)
	if s.Label != "bulbasaur" || s.AwakeTap != "always" || s.AsleepTap != "none" {
		t.Errorf("unexpected labels: %+v", s)
	}
	if s.FillHelpsP50 != 2 || s.FillHelpsP90 != 3 {
		t.Errorf("fill quantiles = %d/%d, want 2/3", s.FillHelpsP50, s.FillHelpsP90)
	}
	if s.Period != 24 || s.HelpsAwake != 30 {
		t.Errorf("unexpected values: %+v", s)
	}

	res.InventoryCDF = nil
	if s := Summarize("x", params, res); s.FillHelpsP50 != -1 {
		t.Errorf("fill quantile without inventory = %d, want -1", s.FillHelpsP50)
	}
}
