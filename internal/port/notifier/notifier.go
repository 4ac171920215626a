// Package notifier defines the user-facing notification port. The reference
// UI surfaced these as inline toast messages; adapters decide the transport.
package notifier

import "context"

// Notification is the payload sent through a Notifier.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   string `json:"level"`  // "info", "success", "warning", "error"
	Source  string `json:"source"` // e.g. "timer.paused", "document.generated"
}

// Notifier is the port interface for delivering notifications.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "ws").
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
