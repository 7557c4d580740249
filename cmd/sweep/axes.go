package main

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/drowse/energy"
)

// AxisSpec defines a single swept parameter.
type AxisSpec struct {
	Name  string  // Column name in logs
	Min   float64 // First value
	Max   float64 // Last value
	Steps int     // Number of evenly spaced values
	Apply func(p *energy.Parameters, v float64)
}

// Values returns the evenly spaced axis values, Min and Max included.
func (a AxisSpec) Values() []float64 {
	if a.Steps <= 1 || a.Min == a.Max {
		return []float64{a.Min}
	}
	return floats.Span(make([]float64, a.Steps), a.Min, a.Max)
}

// Grid is the cartesian product of its axes.
type Grid struct {
	Axes []AxisSpec
}

// NewGrid creates the standard sleep score × burst count grid.
func NewGrid(scoreMin, scoreMax float64, scoreSteps, maxBursts int) *Grid {
	return &Grid{
		Axes: []AxisSpec{
			{
				Name: "sleep_score", Min: scoreMin, Max: scoreMax, Steps: scoreSteps,
				Apply: func(p *energy.Parameters, v float64) { p.SleepScore = int(math.Round(v)) },
			},
			{
				Name: "burst_count", Min: 0, Max: float64(maxBursts), Steps: maxBursts + 1,
				Apply: func(p *energy.Parameters, v float64) { p.BurstCount = int(math.Round(v)) },
			},
		},
	}
}

// Dim returns the number of axes.
func (g *Grid) Dim() int {
	return len(g.Axes)
}

// Cells enumerates every grid point, last axis varying fastest.
func (g *Grid) Cells() [][]float64 {
	cells := [][]float64{{}}
	for _, axis := range g.Axes {
		values := axis.Values()
		next := make([][]float64, 0, len(cells)*len(values))
		for _, prefix := range cells {
			for _, v := range values {
				cell := make([]float64, len(prefix), len(prefix)+1)
				copy(cell, prefix)
				next = append(next, append(cell, v))
			}
		}
		cells = next
	}
	return cells
}

// Apply returns base with the cell's values applied.
func (g *Grid) Apply(base energy.Parameters, cell []float64) energy.Parameters {
	p := base
	for i, axis := range g.Axes {
		axis.Apply(&p, cell[i])
	}
	return p
}

// Label names a cell, e.g. "sleep_score=80,burst_count=2".
func (g *Grid) Label(cell []float64) string {
	parts := make([]string, len(g.Axes))
	for i, axis := range g.Axes {
		parts[i] = fmt.Sprintf("%s=%g", axis.Name, math.Round(cell[i]))
	}
	return strings.Join(parts, ",")
}
