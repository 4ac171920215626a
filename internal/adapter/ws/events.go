package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTimerState         = "timer.state"
	EventGenerationProgress = "generation.progress"
	EventNotification       = "notification"
)

// TimerStateEvent is broadcast when a task's stopwatch changes state.
type TimerStateEvent struct {
	TaskID      int64 `json:"task_id"`
	TimeSeconds int64 `json:"time_seconds"`
	Running     bool  `json:"running"`
}

// GenerationProgressEvent is broadcast for each stage of a document
// generation invocation.
type GenerationProgressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
