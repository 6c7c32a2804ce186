package pagerank

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// RankVector holds per-node probability mass, indexed by node id
type RankVector []float64

// NodeRank pairs a node with its rank
type NodeRank struct {
	Node int     `json:"node" yaml:"node" toml:"node"`
	Rank float64 `json:"rank" yaml:"rank" toml:"rank"`
}

// Sum returns the L1 mass of the vector
func (p RankVector) Sum() float64 {
	if len(p) == 0 {
		return 0
	}
	return floats.Sum(p)
}

// Normalize scales the vector in place so that its entries sum to 1.
// A vector whose sum is exactly zero is left unchanged.
func (p RankVector) Normalize() {
	s := p.Sum()
	if s == 0.0 {
		return
	}
	floats.Scale(1.0/s, p)
}

// MaxAbsDiff returns max over i of |p[i] - other[i]|
func (p RankVector) MaxAbsDiff(other RankVector) float64 {
	if len(p) == 0 {
		return 0
	}
	return floats.Distance(p, other, math.Inf(1))
}

// Clone returns an independent copy of the vector
func (p RankVector) Clone() RankVector {
	clone := make(RankVector, len(p))
	copy(clone, p)
	return clone
}

// Top returns the k highest ranked nodes, ties broken by node id.
// k <= 0 or k > len(p) returns every node.
func (p RankVector) Top(k int) []NodeRank {
	ranked := make([]NodeRank, len(p))
	for i, r := range p {
		ranked[i] = NodeRank{Node: i, Rank: r}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		return ranked[i].Node < ranked[j].Node
	})

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
