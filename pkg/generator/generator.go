package generator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

// Config controls synthetic graph generation
type Config struct {
	Nodes int   `json:"nodes"`
	Edges int   `json:"edges"`
	Seed  int64 `json:"seed"`
}

// DefaultConfig returns the settings used for the benchmark "big graph"
func DefaultConfig() Config {
	return Config{
		Nodes: 100,
		Edges: 500,
		Seed:  0,
	}
}

// Edge is a directed edge u -> v
type Edge struct {
	From int
	To   int
}

// Validate checks that the requested number of distinct edges exists
func (c Config) Validate() error {
	if c.Nodes <= 0 {
		return fmt.Errorf("node count must be positive: %d", c.Nodes)
	}
	if c.Edges < 0 {
		return fmt.Errorf("edge count must not be negative: %d", c.Edges)
	}
	if maxEdges := maxSimpleEdges(c.Nodes); c.Edges > maxEdges {
		return fmt.Errorf("cannot place %d distinct edges without self-loops on %d nodes (max %d)",
			c.Edges, c.Nodes, maxEdges)
	}
	return nil
}

// maxSimpleEdges returns n*(n-1), saturating at math.MaxInt
func maxSimpleEdges(n int) int {
	if n > 1 && n-1 > math.MaxInt/n {
		return math.MaxInt
	}
	return n * (n - 1)
}

// Edges draws distinct directed edges without self-loops, in draw order.
// The same seed always produces the same edges.
func Edges(config Config) ([]Edge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(config.Seed))
	seen := make(map[Edge]struct{}, config.Edges)
	edges := make([]Edge, 0, config.Edges)

	for len(edges) < config.Edges {
		e := Edge{From: rng.Intn(config.Nodes), To: rng.Intn(config.Nodes)}
		if e.From == e.To {
			continue
		}
		if _, exists := seen[e]; exists {
			continue
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	return edges, nil
}

// Generate builds a random simple directed graph
func Generate(config Config) (*pagerank.Graph, error) {
	edges, err := Edges(config)
	if err != nil {
		return nil, err
	}

	graph := pagerank.NewGraph(config.Nodes)
	for _, e := range edges {
		if err := graph.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}

	return graph, nil
}
