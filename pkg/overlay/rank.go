// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package overlay

import (
	"math"
	"sort"
)

// Quantile returns the q-quantile of values using linear interpolation
// between the closest ranks. q is clamped to [0, 1].
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	q = math.Max(0, math.Min(1, q))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// RankCandidates returns the validators whose trust is at or above the
// (1 - topFraction) quantile of all trust scores, in table order.
func RankCandidates(nodes []Node, topFraction float64) []NodeID {
	if len(nodes) == 0 {
		return nil
	}

	scores := make([]float64, len(nodes))
	for i, node := range nodes {
		scores[i] = node.Trust
	}
	threshold := Quantile(scores, 1-topFraction)

	var candidates []NodeID
	for _, node := range nodes {
		if node.Trust >= threshold && node.ValidatorTrust > 0 {
			candidates = append(candidates, node.ID)
		}
	}
	return candidates
}
