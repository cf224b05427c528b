// Package requestid carries a per-request correlation id through contexts,
// logs and published events.
package requestid

import (
	"context"

	"github.com/jaevor/go-nanoid"
)

// Header is the HTTP header used to accept and echo request ids.
const Header = "X-Request-ID"

// DefaultLength is the length of generated request ids.
const DefaultLength = 16

// Generator returns a fresh request id.
type Generator func() string

type contextKey struct{}

// NewGenerator creates a nanoid-backed id generator.
func NewGenerator(length int) (Generator, error) {
	if length <= 0 {
		length = DefaultLength
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, err
	}

	return Generator(gen), nil
}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// From extracts the request id from ctx, or "" when absent.
func From(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}

	return ""
}
