package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

// Write emits graph in the edge-list format read by Parse
func Write(w io.Writer, graph *pagerank.Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d %d\n", graph.NumNodes, graph.NumEdges())
	for u, targets := range graph.Adjacency {
		for _, v := range targets {
			fmt.Fprintf(bw, "%d %d\n", u, v)
		}
	}

	return bw.Flush()
}

// WriteFile writes graph to path, creating or truncating it
func WriteFile(path string, graph *pagerank.Graph) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}

	if err := Write(file, graph); err != nil {
		file.Close()
		return fmt.Errorf("failed to write graph file: %w", err)
	}

	return file.Close()
}
