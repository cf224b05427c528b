// Package shortener holds the link domain and the services that create and
// resolve links.
package shortener

import (
	"context"

	"github.com/qazsato/shorturl/internal/validator"
)

// Token is the external short identifier and the mapping's primary key.
type Token string

// ShortURL is a persisted token to long URL mapping. Records are immutable.
type ShortURL struct {
	Token   Token
	LongURL string
}

// Result is returned by a successful shorten.
type Result struct {
	Token    Token
	ShortURL string
	LongURL  string
}

// Repository persists mappings. Put must never overwrite an existing token.
type Repository interface {
	// Put returns ErrConflict if token already exists.
	Put(ctx context.Context, token Token, longURL string) error
	// Get returns ErrNotFound if token does not exist.
	Get(ctx context.Context, token Token) (*ShortURL, error)
}

type Allocator interface {
	Allocate(ctx context.Context) (uint64, error)
}

type Codec interface {
	Encode(id uint64) (string, error)
	Name() string
}

type Validator interface {
	Validate(raw string) validator.Result
}
