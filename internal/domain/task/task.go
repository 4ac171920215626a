// Package task defines the Kanban Task domain entity.
package task

import "time"

// Status represents the workflow stage of a task on the board.
type Status string

const (
	StatusTodo       Status = "a_fazer"
	StatusInProgress Status = "em_andamento"
	StatusReview     Status = "revisao"
	StatusDone       Status = "concluido"
)

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "baixa"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

// Task represents a unit of work on the Kanban board.
//
// ID is derived from the creation instant (Unix milliseconds) and is
// immutable once created. TimeSeconds accumulates stopwatch ticks and is
// never negative; Running true implies an active timer registration exists
// for this id.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Client      string    `json:"client"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"due_date"`
	Tags        []string  `json:"tags"`
	TimeSeconds int64     `json:"time_seconds"`
	Running     bool      `json:"running"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
// Time and running state are never client-settable: new tasks start at zero.
type CreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Client      string   `json:"client"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"`
	Tags        []string `json:"tags"`
}

// UpdateRequest holds the editable fields of an existing task.
// Accumulated time, running state and CreatedAt are preserved by updates.
type UpdateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Client      string   `json:"client"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"`
	Tags        []string `json:"tags"`
}

// ValidStatus reports whether s is one of the fixed workflow stages.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
