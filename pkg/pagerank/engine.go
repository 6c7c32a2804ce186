package pagerank

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Damping is the probability that the random surfer follows an outgoing
// edge instead of teleporting to a uniformly chosen node.
const Damping = 0.85

// Reporter receives a snapshot of the rank vector. Iteration 0 is the
// normalized starting vector.
type Reporter interface {
	Report(iteration int, ranks RankVector)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(iteration int, ranks RankVector)

// Report calls f(iteration, ranks)
func (f ReporterFunc) Report(iteration int, ranks RankVector) { f(iteration, ranks) }

// Result represents the algorithm output
type Result struct {
	Ranks         RankVector `json:"ranks"`
	Iterations    int        `json:"iterations"`
	Converged     bool       `json:"converged"` // only set in error-threshold mode
	Delta         float64    `json:"delta"`     // max abs change of the last iteration
	Mode          Mode       `json:"mode"`
	Policy        InitPolicy `json:"policy"`
	NumNodes      int        `json:"num_nodes"`
	NumEdges      int        `json:"num_edges"`
	DanglingNodes int        `json:"dangling_nodes"`
	RuntimeMS     int64      `json:"runtime_ms"`
}

// Top returns the k highest ranked nodes of the final vector
func (r *Result) Top(k int) []NodeRank {
	return r.Ranks.Top(k)
}

// Propagate performs one un-normalized power-method step: teleportation
// base, edge contributions from non-dangling nodes, and uniform
// redistribution of dangling mass. It returns the new vector and the
// dangling mass taken from prev.
func Propagate(graph *Graph, prev RankVector) (RankVector, float64) {
	n := graph.NumNodes
	next := make(RankVector, n)
	if n == 0 {
		return next, 0
	}
	nf := float64(n)

	base := (1.0 - Damping) / nf
	for i := range next {
		next[i] = base
	}

	danglingMass := 0.0
	for u, degree := range graph.OutDegree {
		if degree == 0 {
			danglingMass += prev[u]
		}
	}

	for u, degree := range graph.OutDegree {
		if degree == 0 {
			continue
		}
		contrib := Damping * (prev[u] / float64(degree))
		for _, v := range graph.Adjacency[u] {
			next[v] += contrib
		}
	}

	if danglingMass != 0.0 {
		floats.AddConst(Damping*danglingMass/nf, next)
	}

	return next, danglingMass
}

// Step computes the next normalized rank vector from prev
func Step(graph *Graph, prev RankVector) RankVector {
	next, _ := Propagate(graph, prev)
	next.Normalize()
	return next
}

// Run executes PageRank on graph until the configured termination mode is
// satisfied. reporter may be nil; it is only invoked for graphs with at most
// SmallGraphThreshold nodes.
func Run(ctx context.Context, graph *Graph, config *Config, reporter Reporter) (*Result, error) {
	startTime := time.Now()
	logger := config.CreateLogger()

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}

	n := graph.NumNodes
	mode := config.Mode(n)
	policy := config.Policy()
	maxIterations := config.MaxIterations()
	report := reporter != nil && n <= SmallGraphThreshold

	result := &Result{
		Mode:          mode,
		Policy:        policy,
		NumNodes:      n,
		NumEdges:      graph.NumEdges(),
		DanglingNodes: len(graph.DanglingNodes()),
	}

	logger.Info().
		Int("nodes", n).
		Int("edges", result.NumEdges).
		Int("dangling", result.DanglingNodes).
		Str("mode", mode.String()).
		Str("policy", policy.String()).
		Msg("Starting PageRank")

	current := Initialize(n, policy)
	if report {
		reporter.Report(0, current.Clone())
	}

	iteration := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		iteration++
		next := Step(graph, current)
		delta := next.MaxAbsDiff(current)

		if report {
			reporter.Report(iteration, next.Clone())
		}

		if config.EnableProgress() && config.ProgressInterval() > 0 && iteration%config.ProgressInterval() == 0 {
			logger.Debug().
				Int("iteration", iteration).
				Float64("delta", delta).
				Msg("Iteration progress")
		}

		current = next
		result.Iterations = iteration
		result.Delta = delta

		if mode.Kind == ModeFixedIterations {
			if iteration >= mode.Count {
				break
			}
			continue
		}

		if delta <= mode.Tolerance {
			result.Converged = true
			break
		}

		if maxIterations > 0 && iteration >= maxIterations {
			result.Ranks = current
			result.RuntimeMS = time.Since(startTime).Milliseconds()
			logger.Warn().
				Int("iterations", iteration).
				Float64("delta", delta).
				Float64("tolerance", mode.Tolerance).
				Msg("Iteration cap reached before convergence")
			return result, fmt.Errorf("%w: delta %g above tolerance %g after %d iterations",
				ErrNotConverged, delta, mode.Tolerance, iteration)
		}
	}

	result.Ranks = current
	result.RuntimeMS = time.Since(startTime).Milliseconds()

	logger.Info().
		Int("iterations", result.Iterations).
		Float64("delta", result.Delta).
		Bool("converged", result.Converged).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("PageRank completed")

	return result, nil
}
