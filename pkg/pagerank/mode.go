package pagerank

import (
	"fmt"
	"math"
)

const (
	// DefaultTolerance is used when iterations is 0 and for graphs larger
	// than SmallGraphThreshold.
	DefaultTolerance = 1e-5

	// SmallGraphThreshold is the largest graph that honours the requested
	// iteration setting and gets per-iteration reporting.
	SmallGraphThreshold = 10
)

// ModeKind identifies the termination policy
type ModeKind int

const (
	ModeErrorThreshold ModeKind = iota
	ModeFixedIterations
)

func (k ModeKind) String() string {
	if k == ModeFixedIterations {
		return "fixed"
	}
	return "threshold"
}

// Mode is the termination policy of a run. Count is meaningful for
// ModeFixedIterations, Tolerance for ModeErrorThreshold.
type Mode struct {
	Kind      ModeKind `json:"kind" yaml:"kind" toml:"kind"`
	Count     int      `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`
	Tolerance float64  `json:"tolerance,omitempty" yaml:"tolerance,omitempty" toml:"tolerance,omitempty"`
}

// FixedIterations runs exactly count iterations regardless of convergence
func FixedIterations(count int) Mode {
	return Mode{Kind: ModeFixedIterations, Count: count}
}

// ErrorThreshold runs until successive vectors differ by at most tolerance
func ErrorThreshold(tolerance float64) Mode {
	return Mode{Kind: ModeErrorThreshold, Tolerance: tolerance}
}

// ModeFromIterations decodes the signed iteration argument:
// 0 -> ErrorThreshold(1e-5), k < 0 -> ErrorThreshold(10^k), k > 0 -> FixedIterations(k).
func ModeFromIterations(iterations int) Mode {
	switch {
	case iterations == 0:
		return ErrorThreshold(DefaultTolerance)
	case iterations < 0:
		return ErrorThreshold(math.Pow(10, float64(iterations)))
	default:
		return FixedIterations(iterations)
	}
}

// ResolveMode picks the mode for a graph of numNodes nodes. Graphs larger
// than SmallGraphThreshold always run in ErrorThreshold(1e-5).
func ResolveMode(numNodes, iterations int) Mode {
	if numNodes > SmallGraphThreshold {
		return ErrorThreshold(DefaultTolerance)
	}
	return ModeFromIterations(iterations)
}

func (m Mode) String() string {
	if m.Kind == ModeFixedIterations {
		return fmt.Sprintf("fixed(%d)", m.Count)
	}
	return fmt.Sprintf("threshold(%g)", m.Tolerance)
}
