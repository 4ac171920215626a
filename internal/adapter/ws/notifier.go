package ws

import (
	"context"

	"github.com/aiudex/aiudexd/internal/port/notifier"
)

// Notifier delivers toast notifications over the WebSocket hub.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a Notifier bound to the given hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// Name returns the notifier identifier.
func (n *Notifier) Name() string { return "ws" }

// Send broadcasts the notification to all connected clients.
// A hub with no connections is not an error; the toast is simply unseen.
func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	n.hub.BroadcastEvent(ctx, EventNotification, notification)
	return nil
}
