package plugin

import (
	"context"

	"github.com/ngipak/infodesa/internal/event"
)

// HTTPProvider is implemented by plugins that expose REST API routes.
type HTTPProvider interface {
	Routes() []Route
}

// HealthStatus is reported by plugins that implement HealthChecker.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok" or "degraded"
	Details map[string]string `json:"details,omitempty"`
}

// HealthChecker is implemented by plugins that report their health status.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// Subscription binds an event handler to a topic. An empty topic receives
// every event.
type Subscription struct {
	Topic   string
	Handler event.Handler
}

// EventSubscriber is implemented by plugins that declare event subscriptions at init.
type EventSubscriber interface {
	Subscriptions() []Subscription
}

// Validator is implemented by plugins that validate their config post-init.
type Validator interface {
	ValidateConfig() error
}
