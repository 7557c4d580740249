package energy

import (
	"math"
	"testing"
)

func TestCurveEfficiency(t *testing.T) {
	c := DefaultCurve()
	tests := []struct {
		energy float64
		want   float64
	}{
		{150, 1 / 0.45},
		{81, 1 / 0.45},
		{80, 1 / 0.52},
		{61, 1 / 0.52},
		{60, 1 / 0.58},
		{40, 1 / 0.66},
		{1, 1 / 0.66},
		{0.5, 1 / 0.66},
		{0, 1},
	}
	for _, tt := range tests {
		if got := c.Efficiency(tt.energy); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Efficiency(%v) = %v, want %v", tt.energy, got, tt.want)
		}
	}
	if c.Top() != 1/0.45 {
		t.Errorf("Top() = %v", c.Top())
	}
}

func TestCurveValidate(t *testing.T) {
	if err := DefaultCurve().Validate(); err != nil {
		t.Fatalf("default curve invalid: %v", err)
	}
	if _, err := CurveFromRates([]float64{80, 60}, []float64{0.66, 0.45}, 1); err == nil {
		t.Error("expected non-monotonic curve to fail")
	}
	if _, err := CurveFromRates([]float64{60, 80}, []float64{0.45, 0.66}, 1); err == nil {
		t.Error("expected unsorted thresholds to fail")
	}
	if _, err := CurveFromRates([]float64{80}, []float64{0.45, 0.5}, 1); err == nil {
		t.Error("expected length mismatch to fail")
	}
	if _, err := CurveFromRates([]float64{0}, []float64{0.66}, 2); err == nil {
		t.Error("expected baseline above lowest bracket to fail")
	}
}

func TestResolveFrequency(t *testing.T) {
	tests := []struct {
		name  string
		base  float64
		level int
		speed float64
		want  float64
	}{
		{"level 1", 3000, 1, 1, 3000},
		{"level 10", 3000, 10, 1, 2946},
		{"level 10 odd base", 2500, 10, 1, 2455},
		{"speed bonus", 3000, 1, 0.9, 2700},
		{"level 30", 2800, 30, 1, 2637},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFrequency(tt.base, tt.level, tt.speed); got != tt.want {
				t.Errorf("ResolveFrequency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalanceFrequency(t *testing.T) {
	b := DefaultBalance()
	if got := b.Frequency(3000, 0, false); got != 3000 {
		t.Errorf("no bonus = %v", got)
	}
	if got := b.Frequency(3000, 2, false); math.Abs(got-2700) > 1e-9 {
		t.Errorf("two bonuses = %v", got)
	}
	if got := b.Frequency(3000, 9, false); math.Abs(got-2250) > 1e-9 {
		t.Errorf("bonus cap = %v", got)
	}
	if got := b.Frequency(3000, 0, true); math.Abs(got-2500) > 1e-9 {
		t.Errorf("camp ticket = %v", got)
	}
}

func TestParseTapPolicy(t *testing.T) {
	for _, name := range []string{"always", "None", " checkpoints "} {
		if _, err := ParseTapPolicy(name); err != nil {
			t.Errorf("ParseTapPolicy(%q): %v", name, err)
		}
	}
	if _, err := ParseTapPolicy("sometimes"); err == nil {
		t.Error("expected unknown policy to fail")
	}
}
