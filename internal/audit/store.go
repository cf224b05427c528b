package audit

import "context"

// Store persists audit events received by the consumer.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveIdentifierOrphaned(ctx context.Context, event *IdentifierOrphanedEvent) error
}
