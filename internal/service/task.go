package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/task"
	"github.com/aiudex/aiudexd/internal/port/database"
	"github.com/aiudex/aiudexd/internal/port/messagequeue"
)

// TaskService handles Kanban task CRUD. Timer state transitions live in
// TimerService; deleting a task also cancels its timer registration here.
type TaskService struct {
	store database.Store
	queue messagequeue.Queue
	timer *TimerService
	now   func() time.Time // for testing
}

// NewTaskService creates a TaskService.
func NewTaskService(store database.Store, queue messagequeue.Queue, timer *TimerService) *TaskService {
	return &TaskService{store: store, queue: queue, timer: timer, now: time.Now}
}

// List returns all tasks on the board.
func (s *TaskService) List(ctx context.Context) ([]task.Task, error) {
	return s.store.ListTasks(ctx)
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id int64) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// Create creates a task with zero accumulated time and no running timer.
// The id is derived from the creation instant (Unix milliseconds) and is
// immutable afterwards.
func (s *TaskService) Create(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: título é obrigatório", domain.ErrValidation)
	}
	if req.Status == "" {
		req.Status = task.StatusTodo
	}
	if !task.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: status inválido %q", domain.ErrValidation, req.Status)
	}
	if req.Priority == "" {
		req.Priority = task.PriorityMedium
	}
	if !task.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%w: prioridade inválida %q", domain.ErrValidation, req.Priority)
	}

	now := s.now()
	t := &task.Task{
		ID:          now.UnixMilli(),
		Title:       req.Title,
		Description: req.Description,
		Client:      req.Client,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		TimeSeconds: 0,
		Running:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.publish(ctx, messagequeue.SubjectTaskCreated, t)
	return t, nil
}

// Update edits a task's form fields. Accumulated time, running state and
// CreatedAt are preserved.
func (s *TaskService) Update(ctx context.Context, id int64, req task.UpdateRequest) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if req.Status != "" && !task.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: status inválido %q", domain.ErrValidation, req.Status)
	}
	if req.Priority != "" && !task.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%w: prioridade inválida %q", domain.ErrValidation, req.Priority)
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Client = req.Client
	if req.Status != "" {
		t.Status = req.Status
	}
	if req.Priority != "" {
		t.Priority = req.Priority
	}
	t.DueDate = req.DueDate
	t.Tags = req.Tags
	t.UpdatedAt = s.now()

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return t, nil
}

// Delete removes a task and cancels any active timer registration for it.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if s.timer != nil {
		s.timer.CancelRegistration(ctx, id)
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.publish(ctx, messagequeue.SubjectTaskDeleted, map[string]int64{"id": id})
	return nil
}

func (s *TaskService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal task event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		// Task is saved in the store; a lost event can be replayed later.
		slog.Error("failed to publish task event", "subject", subject, "error", err)
	}
}
