// Package inventory computes when a helper's carried-item inventory fills up.
//
// The engine is an exact forward dynamic program over a per-help item-count
// distribution. It produces a cumulative distribution: entry i is the
// probability that the inventory is full after i helps.
package inventory

import (
	"math"
	"sort"

	"github.com/pthm-cable/drowse/simerr"
)

// probabilityTolerance bounds how far the probabilities may drift from 1.
const probabilityTolerance = 1e-6

// Distribution maps "items gained by one help" to its probability.
type Distribution map[int]float64

// Validate rejects distributions the fill engine cannot converge on.
func (d Distribution) Validate() error {
	if len(d) == 0 {
		return simerr.InvalidDistribution("distribution is empty")
	}
	var sum float64
	positive := false
	for count, p := range d {
		if count <= 0 {
			return simerr.InvalidDistribution("item count must be positive, got %d", count)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return simerr.InvalidDistribution("probability for %d items out of range: %v", count, p)
		}
		if p > 0 {
			positive = true
		}
		sum += p
	}
	if !positive {
		return simerr.InvalidDistribution("distribution has no probability mass")
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return simerr.InvalidDistribution("probabilities sum to %v, want 1", sum)
	}
	return nil
}

// Counts returns the item counts with non-zero probability in ascending order.
func (d Distribution) Counts() []int {
	counts := make([]int, 0, len(d))
	for count, p := range d {
		if p > 0 {
			counts = append(counts, count)
		}
	}
	sort.Ints(counts)
	return counts
}

// MinCount returns the smallest item count that can occur, or 0 if none can.
func (d Distribution) MinCount() int {
	counts := d.Counts()
	if len(counts) == 0 {
		return 0
	}
	return counts[0]
}

// Mean returns the expected number of items per help.
func (d Distribution) Mean() float64 {
	var mean float64
	for _, count := range d.Counts() {
		mean += float64(count) * d[count]
	}
	return mean
}

// factorialMoment returns E[X(X-1)] over the item counts.
func (d Distribution) factorialMoment() float64 {
	var moment float64
	for _, count := range d.Counts() {
		moment += float64(count*(count-1)) * d[count]
	}
	return moment
}
