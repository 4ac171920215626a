// Package service contains the application services of the AIudex core.
package service

import (
	"context"
	"log/slog"

	"github.com/aiudex/aiudexd/internal/port/notifier"
)

// NotificationService dispatches user-facing notifications (the toast
// surface of the reference UI) to all registered notifiers.
type NotificationService struct {
	notifiers []notifier.Notifier
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifiers ...notifier.Notifier) *NotificationService {
	return &NotificationService{notifiers: notifiers}
}

// Notify sends a notification to all registered notifiers.
// Errors are logged but do not interrupt delivery to other notifiers.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) {
	if s == nil {
		return
	}
	for _, provider := range s.notifiers {
		if err := provider.Send(ctx, n); err != nil {
			slog.Warn("notification send failed",
				"provider", provider.Name(),
				"title", n.Title,
				"error", err,
			)
			continue
		}
		slog.Debug("notification sent", "provider", provider.Name(), "title", n.Title)
	}
}
