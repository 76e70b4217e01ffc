// Package transform defines the source transformation boundary: a pure
// function from raw playground source to lowered, executable code.
//
// The engine is treated as opaque. Every compile cycle re-transforms the
// full buffer from scratch; there is no caching and no retry. Failures
// are narrowed into the single CompileError shape at this boundary, so
// the rest of the system only ever handles one concrete error type.
package transform

import "context"

// Engine transforms raw source text into executable code.
//
// On failure the returned error narrows (via errors.Narrow) to a
// *errors.CompileError carrying a human-readable message.
type Engine interface {
	Transform(ctx context.Context, source string) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, source string) (string, error)

// Transform implements Engine.
func (f EngineFunc) Transform(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}
