// Package event is the in-process bus modules use to announce content
// changes. Handlers run synchronously on Publish or on their own goroutine
// with PublishAsync; a panicking handler is logged and skipped.
package event

import (
	"context"
	"time"
)

// Topics published by the content modules.
const (
	TopicUmkmSaved        = "umkm.saved"
	TopicUmkmDeleted      = "umkm.deleted"
	TopicUmkmPublished    = "umkm.published"
	TopicProdukSaved      = "produk.saved"
	TopicProdukDeleted    = "produk.deleted"
	TopicProdukPublished  = "produk.published"
	TopicKesehatanChanged = "kesehatan.changed"
	TopicLaporanCreated   = "laporan.created"
	TopicLaporanUpdated   = "laporan.updated"
)

// Event is a single notification.
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Change is the payload of content events.
type Change struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	ActorID string `json:"actor_id,omitempty"`
}

// Handler receives events.
type Handler func(ctx context.Context, e Event)

// Publisher is the side of the bus modules write to.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	PublishAsync(ctx context.Context, e Event)
}

// Subscriber is the side of the bus consumers register on.
type Subscriber interface {
	Subscribe(topic string, h Handler) (unsubscribe func())
	SubscribeAll(h Handler) (unsubscribe func())
}
