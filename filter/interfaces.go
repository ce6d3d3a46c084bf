package filter

import (
	"github.com/s0up4200/siftapi/sift"
)

// Filter decides whether a sift is kept
type Filter interface {
	// Match checks if a sift matches the filter criteria
	Match(s sift.Sift) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}
