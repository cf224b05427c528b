// Package audit describes the events the shortening service emits for
// out-of-band bookkeeping. Events are informational only; losing one never
// affects a mapping or the counter.
package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicLinkCreated        = "link.created"
	TopicIdentifierOrphaned = "sequence.orphaned"
)

// Stage names the step at which an allocated id was abandoned.
type Stage string

const (
	StageEncode  Stage = "encode"
	StagePersist Stage = "persist"
)

// LinkCreatedEvent is emitted after a mapping has been persisted.
type LinkCreatedEvent struct {
	EventID   string    `json:"eventId"`
	ID        uint64    `json:"id"`
	Token     string    `json:"token"`
	LongURL   string    `json:"longUrl"`
	Codec     string    `json:"codec"`
	CreatedAt time.Time `json:"createdAt"`
}

// IdentifierOrphanedEvent records an id that was allocated but never mapped.
// The counter has moved past it and it will never be issued again.
type IdentifierOrphanedEvent struct {
	EventID    string    `json:"eventId"`
	ID         uint64    `json:"id"`
	Token      string    `json:"token,omitempty"`
	Stage      Stage     `json:"stage"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewLinkCreatedEvent(id uint64, token, longURL, codec string) *LinkCreatedEvent {
	return &LinkCreatedEvent{
		EventID:   uuid.NewString(),
		ID:        id,
		Token:     token,
		LongURL:   longURL,
		Codec:     codec,
		CreatedAt: time.Now().UTC(),
	}
}

func NewIdentifierOrphanedEvent(id uint64, token string, stage Stage, cause error) *IdentifierOrphanedEvent {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return &IdentifierOrphanedEvent{
		EventID:    uuid.NewString(),
		ID:         id,
		Token:      token,
		Stage:      stage,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
