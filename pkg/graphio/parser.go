package graphio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

var (
	// ErrEmptyFile is returned when the input has no non-blank line.
	ErrEmptyFile = errors.New("empty graph file")

	// ErrMalformedHeader is returned when the first line is not "N M".
	ErrMalformedHeader = errors.New("first line must be: N M")

	// ErrTooManyNodes is returned when the header declares more nodes than
	// the caller allows.
	ErrTooManyNodes = errors.New("too many nodes")
)

// LoadStats describes what the parser accepted and skipped
type LoadStats struct {
	DeclaredNodes int `json:"declared_nodes"`
	DeclaredEdges int `json:"declared_edges"`
	Edges         int `json:"edges"`   // edges added to the graph
	Skipped       int `json:"skipped"` // blank or short lines consumed from the edge budget
	Dropped       int `json:"dropped"` // edges with an endpoint outside [0, N)
}

// ReadFile loads an edge-list graph from path
func ReadFile(path string) (*pagerank.Graph, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("could not open graph file %s: %w", path, err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads an edge list. The first non-blank line holds "N M"; up to M
// following lines are read as "u v" pairs. Blank and short lines use up a
// slot without adding an edge, out-of-range endpoints are dropped, and
// running out of input before M lines is not an error.
func Parse(r io.Reader) (*pagerank.Graph, LoadStats, error) {
	return ParseLimit(r, 0)
}

// ParseLimit is Parse with an upper bound on the declared node count,
// checked before any graph storage is allocated. maxNodes <= 0 disables it.
func ParseLimit(r io.Reader, maxNodes int) (*pagerank.Graph, LoadStats, error) {
	var stats LoadStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	headerFound := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		n, m, err := parseHeader(line)
		if err != nil {
			return nil, stats, err
		}
		stats.DeclaredNodes = n
		stats.DeclaredEdges = m
		headerFound = true
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read graph header: %w", err)
	}
	if !headerFound {
		return nil, stats, ErrEmptyFile
	}
	if maxNodes > 0 && stats.DeclaredNodes > maxNodes {
		return nil, stats, fmt.Errorf("%w: header declares %d, limit is %d", ErrTooManyNodes, stats.DeclaredNodes, maxNodes)
	}

	graph := pagerank.NewGraph(stats.DeclaredNodes)

	for i := 0; i < stats.DeclaredEdges && scanner.Scan(); i++ {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			stats.Skipped++
			continue
		}

		u, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: invalid source node %q: %w", lineNo, parts[0], err)
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: invalid target node %q: %w", lineNo, parts[1], err)
		}

		if err := graph.AddEdge(u, v); err != nil {
			stats.Dropped++
			continue
		}
		stats.Edges++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read edges: %w", err)
	}

	return graph, stats, nil
}

func parseHeader(line string) (int, int, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0, 0, ErrMalformedHeader
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid node count %q", ErrMalformedHeader, parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid edge count %q", ErrMalformedHeader, parts[1])
	}
	if n < 0 || m < 0 {
		return 0, 0, fmt.Errorf("%w: negative counts %d %d", ErrMalformedHeader, n, m)
	}

	return n, m, nil
}
