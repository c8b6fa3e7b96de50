// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package overlay_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"storj.io/filetao/internal/testrand"
	"storj.io/filetao/pkg/overlay"
)

func TestQuantile(t *testing.T) {
	values := []float64{3, 1, 2, 4}

	assert.Equal(t, 1.0, overlay.Quantile(values, 0))
	assert.Equal(t, 4.0, overlay.Quantile(values, 1))
	assert.InDelta(t, 2.5, overlay.Quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 3.7, overlay.Quantile(values, 0.9), 1e-9)
	assert.Equal(t, 4.0, overlay.Quantile(values, 2))
	assert.True(t, math.IsNaN(overlay.Quantile(nil, 0.5)))

	// input is not reordered
	assert.Equal(t, []float64{3, 1, 2, 4}, values)
}

func TestRankCandidates(t *testing.T) {
	var nodes []overlay.Node
	for i := 1; i <= 10; i++ {
		nodes = append(nodes, overlay.Node{
			ID:             overlay.NodeID(string(rune('a' + i - 1))),
			Trust:          float64(i) / 10,
			ValidatorTrust: 1,
		})
	}

	assert.Equal(t, []overlay.NodeID{"j"}, overlay.RankCandidates(nodes, 0.1))
	assert.Equal(t, []overlay.NodeID{"i", "j"}, overlay.RankCandidates(nodes, 0.2))
	assert.Len(t, overlay.RankCandidates(nodes, 1), 10)
	assert.Empty(t, overlay.RankCandidates(nil, 0.1))
}

func TestRankCandidatesTies(t *testing.T) {
	nodes := []overlay.Node{
		{ID: "low", Trust: 0.5, ValidatorTrust: 1},
		{ID: "b", Trust: 1, ValidatorTrust: 1},
		{ID: "a", Trust: 1, ValidatorTrust: 1},
		{ID: "c", Trust: 1, ValidatorTrust: 1},
	}
	assert.Equal(t, []overlay.NodeID{"b", "a", "c"}, overlay.RankCandidates(nodes, 0.1))
}

func TestRankCandidatesValidators(t *testing.T) {
	nodes := []overlay.Node{
		{ID: "top-not-validator", Trust: 1, ValidatorTrust: 0},
		{ID: "second", Trust: 0.9, ValidatorTrust: 0.2},
		{ID: "third", Trust: 0.1, ValidatorTrust: 1},
	}
	assert.Empty(t, overlay.RankCandidates(nodes, 0.1))
	assert.Equal(t, []overlay.NodeID{"second"}, overlay.RankCandidates(nodes, 0.5))
}

func TestRankCandidatesDeterministic(t *testing.T) {
	nodes := []overlay.Node{
		{ID: "x", Trust: 0.3, ValidatorTrust: 1},
		{ID: "y", Trust: 0.7, ValidatorTrust: 1},
		{ID: "z", Trust: 0.7, ValidatorTrust: 1},
	}
	first := overlay.RankCandidates(nodes, 0.5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, overlay.RankCandidates(nodes, 0.5))
	}
}

func TestRankCandidatesRandom(t *testing.T) {
	nodes := make([]overlay.Node, 50)
	scores := make([]float64, len(nodes))
	for i := range nodes {
		nodes[i] = testrand.Node("127.0.0.1:0")
		scores[i] = nodes[i].Trust
	}
	threshold := overlay.Quantile(scores, 0.75)

	candidates := overlay.RankCandidates(nodes, 0.25)
	assert.NotEmpty(t, candidates)

	selected := map[overlay.NodeID]bool{}
	for _, id := range candidates {
		selected[id] = true
	}
	for _, node := range nodes {
		assert.Equal(t, node.Trust >= threshold, selected[node.ID], node.ID)
	}
}
