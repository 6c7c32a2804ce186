package pagerank

import (
	"fmt"
)

// Graph represents an unweighted directed graph using simple arrays
type Graph struct {
	NumNodes  int     `json:"num_nodes"`
	Adjacency [][]int `json:"-"`          // adjacency[u] = targets of edges u->v, in insertion order
	OutDegree []int   `json:"out_degree"` // outDegree[u] = number of edges leaving u
}

// NewGraph creates a new graph with n nodes and no edges
func NewGraph(numNodes int) *Graph {
	if numNodes < 0 {
		numNodes = 0
	}
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
		OutDegree: make([]int, numNodes),
	}
}

// AddEdge adds a directed edge u -> v. Duplicate edges are kept.
func (g *Graph) AddEdge(u, v int) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}

	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.OutDegree[u]++
	return nil
}

// NumEdges returns the total number of edges, counted with multiplicity
func (g *Graph) NumEdges() int {
	total := 0
	for _, d := range g.OutDegree {
		total += d
	}
	return total
}

// DanglingNodes returns the nodes without outgoing edges in ascending order
func (g *Graph) DanglingNodes() []int {
	dangling := make([]int, 0)
	for u, d := range g.OutDegree {
		if d == 0 {
			dangling = append(dangling, u)
		}
	}
	return dangling
}

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	copy(clone.OutDegree, g.OutDegree)

	for i := 0; i < g.NumNodes; i++ {
		if len(g.Adjacency[i]) == 0 {
			continue
		}
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
	}

	return clone
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return ErrEmptyGraph
	}

	if len(g.Adjacency) != g.NumNodes || len(g.OutDegree) != g.NumNodes {
		return fmt.Errorf("%w: expected %d adjacency lists and degrees, got %d and %d",
			ErrInvalidGraph, g.NumNodes, len(g.Adjacency), len(g.OutDegree))
	}

	for u := 0; u < g.NumNodes; u++ {
		if g.OutDegree[u] != len(g.Adjacency[u]) {
			return fmt.Errorf("%w: out-degree %d does not match %d targets for node %d",
				ErrInvalidGraph, g.OutDegree[u], len(g.Adjacency[u]), u)
		}

		for _, v := range g.Adjacency[u] {
			if v < 0 || v >= g.NumNodes {
				return fmt.Errorf("%w: invalid target %d for node %d", ErrInvalidGraph, v, u)
			}
		}
	}

	return nil
}
