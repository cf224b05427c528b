package shortener

import (
	"errors"

	"github.com/qazsato/shorturl/internal/validator"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidFormat    = errors.New("invalid url format")
	ErrDomainNotAllowed = errors.New("domain not allowed")

	ErrAllocationFailed = errors.New("allocation failed")
	ErrEncodingFailed   = errors.New("encoding failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConflict         = errors.New("token already exists")
	ErrNotFound         = errors.New("short url not found")
)

// RejectionError is returned when a request is refused before any id is
// allocated. It unwraps to the sentinel matching its reason.
type RejectionError struct {
	Reason validator.Reason
}

func (e *RejectionError) Error() string {
	return "rejected: " + string(e.Reason)
}

func (e *RejectionError) Unwrap() error {
	switch e.Reason {
	case validator.ReasonInvalidFormat:
		return ErrInvalidFormat
	case validator.ReasonDomainNotAllowed:
		return ErrDomainNotAllowed
	default:
		return ErrInvalidRequest
	}
}

func reject(reason validator.Reason) error {
	return &RejectionError{Reason: reason}
}
