package pagerank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Report(iteration int, ranks RankVector) {
	m.Called(iteration, ranks)
}

// quietConfig returns a config that does not log
func quietConfig(iterations, initialValue int) *Config {
	config := NewConfig()
	config.Set("algorithm.iterations", iterations)
	config.Set("algorithm.initial_value", initialValue)
	config.Set("logging.level", "disabled")
	return config
}

func buildGraph(t *testing.T, n int, edges [][2]int) *Graph {
	t.Helper()
	graph := NewGraph(n)
	for _, e := range edges {
		require.NoError(t, graph.AddEdge(e[0], e[1]))
	}
	return graph
}

// collectReporter records every reported vector
func collectReporter(into *[]RankVector) Reporter {
	return ReporterFunc(func(iteration int, ranks RankVector) {
		*into = append(*into, ranks)
	})
}

func TestRunCycleIsFixedPoint(t *testing.T) {
	graph := buildGraph(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	var reported []RankVector
	result, err := Run(context.Background(), graph, quietConfig(1, -1), collectReporter(&reported))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, FixedIterations(1), result.Mode)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, []float64(result.Ranks), 1e-12)

	require.Len(t, reported, 2)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, []float64(reported[0]), 1e-12)
}

func TestRunTwoNodesWithDanglingSink(t *testing.T) {
	graph := buildGraph(t, 2, [][2]int{{0, 1}})

	result, err := Run(context.Background(), graph, quietConfig(0, 1), nil)
	require.NoError(t, err)

	// p0 = 0.075 + 0.425*p1 with p0 + p1 = 1
	expected0 := 0.5 / 1.425
	assert.True(t, result.Converged)
	assert.InDelta(t, expected0, result.Ranks[0], 1e-4)
	assert.InDelta(t, 1-expected0, result.Ranks[1], 1e-4)
	assert.LessOrEqual(t, result.Delta, 1e-5)
	assert.Equal(t, 1, result.DanglingNodes)
}

func TestRunFixedIterationsReportsEachStep(t *testing.T) {
	graph := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}})

	for _, k := range []int{1, 3, 8} {
		reporter := &mockReporter{}
		reporter.On("Report", mock.AnythingOfType("int"), mock.AnythingOfType("pagerank.RankVector")).Return()

		result, err := Run(context.Background(), graph, quietConfig(k, -1), reporter)
		require.NoError(t, err)

		assert.Equal(t, k, result.Iterations)
		assert.False(t, result.Converged)
		reporter.AssertNumberOfCalls(t, "Report", k+1)
		for i := 0; i <= k; i++ {
			reporter.AssertCalled(t, "Report", i, mock.Anything)
		}
	}
}

func TestRunLargeGraphForcesThresholdAndSkipsReporting(t *testing.T) {
	edges := make([][2]int, 0, 11)
	for u := 0; u < 11; u++ {
		edges = append(edges, [2]int{u, (u + 1) % 11})
	}
	graph := buildGraph(t, 11, edges)

	reporter := &mockReporter{}
	result, err := Run(context.Background(), graph, quietConfig(3, -1), reporter)
	require.NoError(t, err)

	assert.Equal(t, ErrorThreshold(DefaultTolerance), result.Mode)
	assert.True(t, result.Converged)
	reporter.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
}

func TestRunVectorsStayNormalizedAndNonNegative(t *testing.T) {
	graph := buildGraph(t, 6, [][2]int{
		{0, 1}, {0, 2}, {1, 2}, {2, 0}, {3, 2}, {3, 3}, {4, 0}, {4, 0},
	})

	for _, code := range []int{0, 1, -1, -2, 9} {
		var reported []RankVector
		_, err := Run(context.Background(), graph, quietConfig(-8, code), collectReporter(&reported))
		require.NoError(t, err)

		for i, p := range reported {
			for node, v := range p {
				assert.GreaterOrEqual(t, v, 0.0, "code %d iteration %d node %d", code, i, node)
			}
			if i > 0 {
				assert.InDelta(t, 1.0, p.Sum(), 1e-12, "code %d iteration %d", code, i)
			}
		}
	}
}

func TestRunZeroInitialVector(t *testing.T) {
	graph := buildGraph(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	var reported []RankVector
	_, err := Run(context.Background(), graph, quietConfig(1, 0), collectReporter(&reported))
	require.NoError(t, err)

	require.Len(t, reported, 2)
	assert.Equal(t, RankVector{0, 0, 0}, reported[0])
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, []float64(reported[1]), 1e-12)
}

func TestRunIterationCap(t *testing.T) {
	graph := buildGraph(t, 2, [][2]int{{0, 1}})

	config := quietConfig(-15, 1)
	config.Set("algorithm.max_iterations", 3)

	result, err := Run(context.Background(), graph, config, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConverged))

	require.NotNil(t, result)
	assert.Equal(t, 3, result.Iterations)
	assert.False(t, result.Converged)
	assert.Greater(t, result.Delta, 1e-15)
	assert.Len(t, result.Ranks, 2)
}

func TestRunEmptyGraph(t *testing.T) {
	result, err := Run(context.Background(), NewGraph(0), quietConfig(0, -1), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestRunInvalidGraph(t *testing.T) {
	graph := NewGraph(2)
	graph.Adjacency[0] = []int{1}

	_, err := Run(context.Background(), graph, quietConfig(0, -1), nil)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestRunCancelled(t *testing.T) {
	graph := buildGraph(t, 2, [][2]int{{0, 1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, graph, quietConfig(0, -1), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPropagateConservesMass(t *testing.T) {
	graph := buildGraph(t, 5, [][2]int{{0, 1}, {0, 4}, {1, 2}, {2, 2}, {3, 0}, {3, 0}})

	for _, policy := range []InitPolicy{InitUniform, InitOnes, InitInverseSqrt} {
		prev := Initialize(5, policy)
		prev[0] *= 3
		prev.Normalize()

		next, danglingMass := Propagate(graph, prev)
		assert.InDelta(t, 1.0, next.Sum(), 1e-12)
		assert.InDelta(t, prev[4], danglingMass, 1e-15)
	}
}

func TestPropagateDanglingNodeOnlyRedistributes(t *testing.T) {
	// node 2 is dangling and holds all the mass
	graph := buildGraph(t, 3, [][2]int{{0, 1}, {1, 0}})

	next, danglingMass := Propagate(graph, RankVector{0, 0, 1})
	assert.Equal(t, 1.0, danglingMass)
	for i := range next {
		assert.InDelta(t, 1.0/3, next[i], 1e-15, "node %d", i)
	}
}

func TestStepNormalizes(t *testing.T) {
	graph := buildGraph(t, 3, [][2]int{{0, 1}, {0, 2}})

	next := Step(graph, RankVector{0.7, 0.2, 0.1})
	assert.InDelta(t, 1.0, next.Sum(), 1e-12)
}

func TestResultTop(t *testing.T) {
	graph := buildGraph(t, 3, [][2]int{{0, 2}, {1, 2}})

	result, err := Run(context.Background(), graph, quietConfig(0, -1), nil)
	require.NoError(t, err)

	top := result.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].Node)
}
