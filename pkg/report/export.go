package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

// Format selects the serialization used by Export
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml and toml (case-insensitive)
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// Summary is the serializable view of a run
type Summary struct {
	Nodes         int                 `json:"nodes" yaml:"nodes" toml:"nodes"`
	Edges         int                 `json:"edges" yaml:"edges" toml:"edges"`
	DanglingNodes int                 `json:"dangling_nodes" yaml:"dangling_nodes" toml:"dangling_nodes"`
	Mode          string              `json:"mode" yaml:"mode" toml:"mode"`
	Tolerance     float64             `json:"tolerance,omitempty" yaml:"tolerance,omitempty" toml:"tolerance,omitempty"`
	Policy        string              `json:"policy" yaml:"policy" toml:"policy"`
	Iterations    int                 `json:"iterations" yaml:"iterations" toml:"iterations"`
	Converged     bool                `json:"converged" yaml:"converged" toml:"converged"`
	Delta         float64             `json:"delta" yaml:"delta" toml:"delta"`
	RuntimeMS     int64               `json:"runtime_ms" yaml:"runtime_ms" toml:"runtime_ms"`
	Ranks         []float64           `json:"ranks" yaml:"ranks" toml:"ranks"`
	Top           []pagerank.NodeRank `json:"top" yaml:"top" toml:"top"`
}

// NewSummary builds the serializable view, keeping the topK best nodes
func NewSummary(result *pagerank.Result, topK int) Summary {
	s := Summary{
		Nodes:         result.NumNodes,
		Edges:         result.NumEdges,
		DanglingNodes: result.DanglingNodes,
		Mode:          result.Mode.Kind.String(),
		Policy:        result.Policy.String(),
		Iterations:    result.Iterations,
		Converged:     result.Converged,
		Delta:         result.Delta,
		RuntimeMS:     result.RuntimeMS,
		Ranks:         []float64(result.Ranks.Clone()),
		Top:           result.Top(topK),
	}
	if result.Mode.Kind == pagerank.ModeErrorThreshold {
		s.Tolerance = result.Mode.Tolerance
	}
	return s
}

// Export writes the run summary to w in the requested format
func Export(w io.Writer, result *pagerank.Result, format Format, topK int) error {
	summary := NewSummary(result, topK)

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(summary); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(summary)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}
