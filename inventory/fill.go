package inventory

import (
	"math"
	"sort"

	"github.com/pthm-cable/drowse/simerr"
)

const (
	// MaxSteps caps the number of helps the engine expands.
	MaxSteps = 100

	// ConvergedProbability stops the expansion once this much mass has filled.
	ConvergedProbability = 0.9999
)

// Capacity applies the good camp ticket bonus (x1.2, rounded up) to a
// carry capacity. Integer arithmetic keeps 10 -> 12 from becoming 13.
func Capacity(carry int, goodCampTicket bool) int {
	if !goodCampTicket {
		return carry
	}
	return (carry*6 + 4) / 5
}

// Fill is the outcome of one run of the fill engine.
type Fill struct {
	// CDF is P(inventory full by help i) for i = 0..n, padded.
	CDF []float64
	// ExpectedHelps is the mean number of helps until the inventory is full.
	ExpectedHelps float64
}

// ComputeDistribution returns P(inventory full by help i) for i = 0..n.
//
// Entry 0 is always 0, the sequence is non-decreasing, and it is padded with
// its final value up to ceil(capacity/minCount)+1 entries (at least 2).
func ComputeDistribution(dist Distribution, carry int, goodCampTicket bool) ([]float64, error) {
	fill, err := ComputeFill(dist, carry, goodCampTicket)
	if err != nil {
		return nil, err
	}
	return fill.CDF, nil
}

// ComputeFill runs the fill engine and returns the padded CDF along with the
// expected help count.
//
// The expectation sums P(not full) over the expanded helps only. Mass still
// unfilled when the expansion stops is credited with the renewal estimate of
// the helps it still needs, (remaining + overshoot) / mean.
func ComputeFill(dist Distribution, carry int, goodCampTicket bool) (Fill, error) {
	if err := dist.Validate(); err != nil {
		return Fill{}, err
	}
	if carry <= 0 {
		return Fill{}, simerr.InvalidParameter("carryCapacity", "must be positive, got %d", carry)
	}
	capacity := Capacity(carry, goodCampTicket)
	counts := dist.Counts()

	state := map[int]float64{0: 1}
	cdf := make([]float64, 1, MaxSteps+1)
	var cumulative float64

	for step := 0; step < MaxSteps; step++ {
		next := make(map[int]float64, len(state)*len(counts))
		var filled float64
		for _, used := range sortedKeys(state) {
			p := state[used]
			for _, count := range counts {
				mass := p * dist[count]
				if used+count >= capacity {
					filled += mass
				} else {
					next[used+count] += mass
				}
			}
		}

		cumulative += filled
		if cumulative > 1 {
			cumulative = 1
		}
		cdf = append(cdf, cumulative)
		state = next

		if cumulative >= ConvergedProbability || len(state) == 0 {
			break
		}
	}

	var expected float64
	for _, p := range cdf {
		expected += 1 - p
	}
	expected += remainingHelps(dist, state, capacity)

	target := targetLength(capacity, counts[0])
	last := cdf[len(cdf)-1]
	for len(cdf) < target {
		cdf = append(cdf, last)
	}
	return Fill{CDF: cdf, ExpectedHelps: expected}, nil
}

// remainingHelps is the expected number of helps, beyond the next one, that
// the unfilled mass in state still needs.
func remainingHelps(dist Distribution, state map[int]float64, capacity int) float64 {
	if len(state) == 0 {
		return 0
	}
	mean := dist.Mean()
	overshoot := dist.factorialMoment() / (2 * mean)
	var extra float64
	for _, used := range sortedKeys(state) {
		helps := (float64(capacity-used) + overshoot) / mean
		extra += state[used] * math.Max(helps-1, 0)
	}
	return extra
}

// targetLength is the number of entries callers may index: enough helps for
// the smallest per-help gain to fill the inventory, plus the zero entry.
func targetLength(capacity, minCount int) int {
	n := (capacity+minCount-1)/minCount + 1
	if n < 2 {
		n = 2
	}
	return n
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// HelpsAtProbability returns the first help count whose fill probability
// reaches q, or -1 when the CDF never gets there.
func HelpsAtProbability(cdf []float64, q float64) int {
	for i, p := range cdf {
		if p >= q {
			return i
		}
	}
	return -1
}
