package pagerank

import (
	"math"
)

// InitPolicy selects how the starting rank vector is filled
type InitPolicy int

const (
	// InitUniform fills every entry with 1/N. It is also the fallback for
	// unknown selector codes.
	InitUniform InitPolicy = iota
	// InitZero fills every entry with 0; normalization leaves it all-zero.
	InitZero
	// InitOnes fills every entry with 1.
	InitOnes
	// InitInverseSqrt fills every entry with 1/sqrt(N).
	InitInverseSqrt
)

// PolicyFromCode maps the command-line selector code onto a policy:
// 0 -> InitZero, 1 -> InitOnes, -1 -> InitUniform, -2 -> InitInverseSqrt,
// anything else -> InitUniform.
func PolicyFromCode(code int) InitPolicy {
	switch code {
	case 0:
		return InitZero
	case 1:
		return InitOnes
	case -1:
		return InitUniform
	case -2:
		return InitInverseSqrt
	default:
		return InitUniform
	}
}

// Code returns the selector code for the policy
func (p InitPolicy) Code() int {
	switch p {
	case InitZero:
		return 0
	case InitOnes:
		return 1
	case InitInverseSqrt:
		return -2
	default:
		return -1
	}
}

func (p InitPolicy) String() string {
	switch p {
	case InitZero:
		return "zero"
	case InitOnes:
		return "ones"
	case InitInverseSqrt:
		return "inverse-sqrt"
	default:
		return "uniform"
	}
}

// Initialize builds the normalized starting vector for n nodes
func Initialize(n int, policy InitPolicy) RankVector {
	if n <= 0 {
		return RankVector{}
	}

	var value float64
	switch policy {
	case InitZero:
		value = 0.0
	case InitOnes:
		value = 1.0
	case InitInverseSqrt:
		value = 1.0 / math.Sqrt(float64(n))
	default:
		value = 1.0 / float64(n)
	}

	p := make(RankVector, n)
	for i := range p {
		p[i] = value
	}

	p.Normalize()
	return p
}
