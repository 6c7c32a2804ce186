package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gilchrisn/pagerank-service/pkg/pagerank"
)

// ConsoleReporter prints rank vectors in the classic pgrk text format:
//
//	Base : 0 :P[ 0]=0.3333333 P[ 1]=0.3333333 P[ 2]=0.3333333
//	Iter : 1 :P[ 0]=0.3333333 P[ 1]=0.3333333 P[ 2]=0.3333333
//
// Write errors are kept and returned by Err.
type ConsoleReporter struct {
	out io.Writer
	err error
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Report implements pagerank.Reporter
func (c *ConsoleReporter) Report(iteration int, ranks pagerank.RankVector) {
	label := fmt.Sprintf("Iter : %d :", iteration)
	if iteration == 0 {
		label = "Base : 0 :"
	}
	c.write(label + FormatVector(ranks, " ") + "\n")
}

// Summary prints the final vector of graphs too large for per-iteration
// output. Small graphs were already printed by Report, so nothing is written.
func (c *ConsoleReporter) Summary(result *pagerank.Result) {
	if result.NumNodes <= pagerank.SmallGraphThreshold {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Iter : %d\n", result.Iterations)
	for i, r := range result.Ranks {
		b.WriteString(formatEntry(i, r))
		b.WriteByte('\n')
	}
	c.write(b.String())
}

// Err returns the first write error, if any
func (c *ConsoleReporter) Err() error {
	return c.err
}

func (c *ConsoleReporter) write(s string) {
	if c.err != nil {
		return
	}
	_, c.err = io.WriteString(c.out, s)
}

// FormatVector renders every entry as P[i]=value joined by sep
func FormatVector(ranks pagerank.RankVector, sep string) string {
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = formatEntry(i, r)
	}
	return strings.Join(parts, sep)
}

func formatEntry(i int, r float64) string {
	return fmt.Sprintf("P[%2d]=%.7f", i, r)
}
