// Package uid provides ID generators behind small interfaces so callers can
// swap the strategy (or a deterministic fake in tests) without caring about
// the underlying scheme.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
