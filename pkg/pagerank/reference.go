package pagerank

import (
	"fmt"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// Directed converts the graph into a gonum directed graph. Self-loops and
// parallel edges cannot be represented and yield ErrNotSimple.
func (g *Graph) Directed() (*simple.DirectedGraph, error) {
	directed := simple.NewDirectedGraph()

	for u := 0; u < g.NumNodes; u++ {
		directed.AddNode(simple.Node(u))
	}

	for u, targets := range g.Adjacency {
		for _, v := range targets {
			if u == v {
				return nil, fmt.Errorf("%w: self-loop on node %d", ErrNotSimple, u)
			}
			if directed.HasEdgeFromTo(int64(u), int64(v)) {
				return nil, fmt.Errorf("%w: parallel edge %d->%d", ErrNotSimple, u, v)
			}
			directed.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		}
	}

	return directed, nil
}

// ReferenceRanks computes PageRank with gonum's sparse implementation using
// the same damping factor. It is used to cross-check the engine.
func ReferenceRanks(g *Graph, tolerance float64) (RankVector, error) {
	if g.NumNodes == 0 {
		return nil, ErrEmptyGraph
	}

	directed, err := g.Directed()
	if err != nil {
		return nil, err
	}

	scores := network.PageRankSparse(directed, Damping, tolerance)
	if len(scores) != g.NumNodes {
		return nil, fmt.Errorf("reference PageRank returned %d scores for %d nodes", len(scores), g.NumNodes)
	}

	ranks := make(RankVector, g.NumNodes)
	for id, score := range scores {
		ranks[id] = score
	}
	ranks.Normalize()

	return ranks, nil
}
