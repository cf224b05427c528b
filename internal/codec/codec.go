// Package codec turns allocated sequence ids into short tokens.
//
// Every codec is deterministic and injective for a fixed configuration, so
// unique ids always produce unique tokens. Tokens are used as opaque lookup
// keys; nothing on the read path decodes them.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jxskiss/base62"
	"github.com/speps/go-hashids/v2"
)

const (
	KindDecimal = "decimal"
	KindBase62  = "base62"
	KindHashids = "hashids"
)

var (
	ErrUnknownKind = errors.New("unknown codec")
	ErrMissingKey  = errors.New("codec key is required")
	ErrOutOfRange  = errors.New("id out of codec range")
)

// Codec encodes a sequence id into a token.
type Codec interface {
	Encode(id uint64) (string, error)
	Name() string
}

// Config selects and parameterises a codec.
type Config struct {
	Kind      string
	Key       string
	MinLength int
}

// New returns the codec named by cfg.Kind.
func New(cfg Config) (Codec, error) {
	switch cfg.Kind {
	case KindDecimal:
		return Decimal{}, nil
	case KindBase62, "":
		return Base62{}, nil
	case KindHashids:
		return NewHashids(cfg.Key, cfg.MinLength)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// Decimal renders the id as a base-10 string.
type Decimal struct{}

// Encode returns the decimal digits of id.
func (Decimal) Encode(id uint64) (string, error) {
	return strconv.FormatUint(id, 10), nil
}

// Name returns KindDecimal.
func (Decimal) Name() string { return KindDecimal }

// Base62 renders the id in base62.
type Base62 struct{}

// Encode returns id in base62 over 0-9A-Za-z.
func (Base62) Encode(id uint64) (string, error) {
	return string(base62.FormatUint(id)), nil
}

// Name returns KindBase62.
func (Base62) Name() string { return KindBase62 }

// Hashids obfuscates issuance order with a keyed, reversible transform.
// Changing the key changes future tokens only.
type Hashids struct {
	h *hashids.HashID
}

// NewHashids builds a hashids codec salted with key.
func NewHashids(key string, minLength int) (*Hashids, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	data := hashids.NewData()
	data.Salt = key
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("create hashids codec: %w", err)
	}

	return &Hashids{h: h}, nil
}

// Encode returns the hashids token for id. Ids above math.MaxInt64 fail with
// ErrOutOfRange.
func (c *Hashids) Encode(id uint64) (string, error) {
	if id > math.MaxInt64 {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}

	token, err := c.h.EncodeInt64([]int64{int64(id)})
	if err != nil {
		return "", fmt.Errorf("encode %d: %w", id, err)
	}

	return token, nil
}

// Name returns KindHashids.
func (*Hashids) Name() string { return KindHashids }
