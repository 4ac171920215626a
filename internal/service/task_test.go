package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/task"
	"github.com/aiudex/aiudexd/internal/port/messagequeue"
	"github.com/aiudex/aiudexd/internal/service"
)

func TestTaskCreateDefaults(t *testing.T) {
	store := newMemStore()
	queue := &memQueue{}
	svc := service.NewTaskService(store, queue, nil)

	created, err := svc.Create(context.Background(), task.CreateRequest{Title: "Elaborar contestação"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == 0 {
		t.Error("id should be derived from the creation instant")
	}
	if created.Status != task.StatusTodo {
		t.Errorf("status = %q, want default %q", created.Status, task.StatusTodo)
	}
	if created.Priority != task.PriorityMedium {
		t.Errorf("priority = %q, want default %q", created.Priority, task.PriorityMedium)
	}
	if created.TimeSeconds != 0 || created.Running {
		t.Error("new tasks must start with a zeroed, stopped timer")
	}
	if _, ok := queue.lastMessage(messagequeue.SubjectTaskCreated); !ok {
		t.Error("expected a tasks.created event")
	}
}

func TestTaskCreateValidation(t *testing.T) {
	svc := service.NewTaskService(newMemStore(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, task.CreateRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty title: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, task.CreateRequest{Title: "x", Status: "arquivado"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, task.CreateRequest{Title: "x", Priority: "urgentíssima"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad priority: err = %v, want ErrValidation", err)
	}
}

func TestTaskUpdatePreservesTimerState(t *testing.T) {
	store := newMemStore()
	svc := service.NewTaskService(store, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, task.CreateRequest{Title: "Audiência"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.UpdateTaskTimer(ctx, created.ID, 450, true); err != nil {
		t.Fatalf("seed timer state: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, task.UpdateRequest{
		Title:  "Audiência de instrução",
		Status: task.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "Audiência de instrução" || updated.Status != task.StatusInProgress {
		t.Errorf("form fields not applied: %+v", updated)
	}
	if updated.TimeSeconds != 450 || !updated.Running {
		t.Errorf("timer state lost on update: time=%d running=%v", updated.TimeSeconds, updated.Running)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must be preserved")
	}
}

func TestTaskDeleteCancelsTimer(t *testing.T) {
	store := newMemStore()
	store.tasks[7] = task.Task{ID: 7, Title: "Prazo fatal"}
	kv := newMemKV()
	queue := &memQueue{}
	notify := service.NewNotificationService(&captureNotifier{})
	timer := service.NewTimerService(store, kv, queue, notify, service.TimerOptions{})
	svc := service.NewTaskService(store, queue, timer)
	ctx := context.Background()

	if _, err := timer.Start(ctx, 7); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := len(timer.Running()); got != 0 {
		t.Errorf("timer registration survived the delete, running = %d", got)
	}
	if _, err := store.GetTask(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("task still present: %v", err)
	}
	if _, ok := queue.lastMessage(messagequeue.SubjectTaskDeleted); !ok {
		t.Error("expected a tasks.deleted event")
	}
}
