package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

func sinkResult(t *testing.T) *pagerank.Result {
	t.Helper()
	graph := pagerank.NewGraph(3)
	require.NoError(t, graph.AddEdge(0, 2))
	require.NoError(t, graph.AddEdge(1, 2))

	result, err := pagerank.Run(context.Background(), graph, quietConfig(0, -1), nil)
	require.NoError(t, err)
	return result
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		"JSON":   FormatJSON,
		"yaml":   FormatYAML,
		"yml":    FormatYAML,
		" toml ": FormatTOML,
	}
	for input, expected := range tests {
		format, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, format)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewSummary(t *testing.T) {
	result := sinkResult(t)
	summary := NewSummary(result, 2)

	assert.Equal(t, 3, summary.Nodes)
	assert.Equal(t, 2, summary.Edges)
	assert.Equal(t, 1, summary.DanglingNodes)
	assert.Equal(t, "threshold", summary.Mode)
	assert.Equal(t, pagerank.DefaultTolerance, summary.Tolerance)
	assert.Equal(t, "uniform", summary.Policy)
	assert.True(t, summary.Converged)
	require.Len(t, summary.Top, 2)
	assert.Equal(t, 2, summary.Top[0].Node)
	assert.Len(t, summary.Ranks, 3)
}

func TestExport(t *testing.T) {
	result := sinkResult(t)

	decoders := map[Format]func([]byte, any) error{
		FormatJSON: json.Unmarshal,
		FormatYAML: yaml.Unmarshal,
		FormatTOML: toml.Unmarshal,
	}

	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, result, format, 1))

			var decoded Summary
			require.NoError(t, decode(buf.Bytes(), &decoded))

			assert.Equal(t, 3, decoded.Nodes)
			assert.Equal(t, result.Iterations, decoded.Iterations)
			require.Len(t, decoded.Top, 1)
			assert.Equal(t, 2, decoded.Top[0].Node)
			assert.InDeltaSlice(t, []float64(result.Ranks), decoded.Ranks, 1e-12)
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Export(&buf, sinkResult(t), Format("csv"), 3))
}
