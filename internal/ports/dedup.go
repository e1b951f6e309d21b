package ports

import "context"

// DedupStore remembers inbound message IDs so a redelivered message is relayed once.
type DedupStore interface {
	// Seen marks id as processed and reports whether it had been marked before.
	Seen(ctx context.Context, id string) (bool, error)
}
