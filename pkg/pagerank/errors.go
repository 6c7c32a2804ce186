package pagerank

import "errors"

var (
	// ErrEmptyGraph is returned when a graph has no nodes to rank.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrInvalidGraph is returned when adjacency and degree data disagree.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrNotConverged is returned when error-threshold mode exhausts the
	// configured iteration cap. The accompanying result holds the last vector.
	ErrNotConverged = errors.New("pagerank did not converge")

	// ErrNotSimple is returned by ReferenceRanks for graphs with self-loops
	// or parallel edges, which gonum's simple graphs cannot represent.
	ErrNotSimple = errors.New("graph is not simple")
)
