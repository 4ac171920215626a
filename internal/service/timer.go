package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	aiudexotel "github.com/aiudex/aiudexd/internal/adapter/otel"
	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/task"
	"github.com/aiudex/aiudexd/internal/port/database"
	"github.com/aiudex/aiudexd/internal/port/kvstore"
	"github.com/aiudex/aiudexd/internal/port/messagequeue"
	"github.com/aiudex/aiudexd/internal/port/notifier"
)

// snapshotKey is where the timer registration snapshot lives in the KV port.
const snapshotKey = "kanban.timers"

// registration tracks one running task stopwatch. StartedAt is persisted so
// a restart can resume accounting without resetting the instant to now.
type registration struct {
	StartedAt time.Time `json:"started_at"`
}

// timerSnapshot is the persisted view of the registration set. It is a
// derived snapshot written after every mutation; the in-memory registration
// map is the source of truth.
type timerSnapshot struct {
	Running map[string]registration `json:"running"`
}

// TimerEvent is published on the queue when a timer changes state.
type TimerEvent struct {
	TaskID      int64 `json:"task_id"`
	TimeSeconds int64 `json:"time_seconds"`
	Running     bool  `json:"running"`
}

// TimerService implements per-task stopwatch tracking with start/stop/reset,
// persisted across restarts. Multiple timers may run concurrently; each is
// independent.
//
// Accounting is a monotonic counter: while a task runs, every observed
// 1-second tick adds exactly 1 to its accumulated time. Elapsed wall-clock
// time and the counter can diverge under system sleep or throttling; this
// mirrors the reference behavior and is deliberate.
type TimerService struct {
	mu      sync.Mutex
	store   database.Store
	kv      kvstore.KV
	queue   messagequeue.Queue
	notify  *NotificationService
	regs    map[int64]registration
	stop    chan struct{}
	stopped bool

	// creditOfflineTime switches restore to wall-clock reconciliation:
	// time elapsed while the process was down is credited once on restore.
	// Default false keeps the documented tick-only behavior.
	creditOfflineTime bool

	tickInterval time.Duration
	now          func() time.Time // for testing
	metrics      *aiudexotel.Metrics
}

// SetMetrics attaches metric instruments. A nil receiver field disables
// metric recording.
func (s *TimerService) SetMetrics(m *aiudexotel.Metrics) {
	s.metrics = m
}

// TimerOptions configures a TimerService.
type TimerOptions struct {
	TickInterval      time.Duration
	CreditOfflineTime bool
}

// NewTimerService creates a TimerService. Call Restore before Run to pick up
// registrations persisted by a previous process.
func NewTimerService(store database.Store, kv kvstore.KV, queue messagequeue.Queue, notify *NotificationService, opts TimerOptions) *TimerService {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &TimerService{
		store:             store,
		kv:                kv,
		queue:             queue,
		notify:            notify,
		regs:              make(map[int64]registration),
		stop:              make(chan struct{}),
		creditOfflineTime: opts.CreditOfflineTime,
		tickInterval:      opts.TickInterval,
		now:               time.Now,
	}
}

// Restore reloads the persisted registration set. Tasks marked running keep
// their persisted start instant and resume forward ticking only: time that
// passed while the process was down is not credited unless the
// CreditOfflineTime option is set, in which case the difference is added
// once here.
func (s *TimerService) Restore(ctx context.Context) error {
	data, ok, err := s.kv.Load(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("load timer snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	var snap timerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode timer snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, reg := range snap.Running {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			slog.Warn("timer snapshot has invalid task id", "key", key)
			continue
		}
		t, err := s.store.GetTask(ctx, id)
		if err != nil {
			// The task was deleted while we were down; drop the ghost entry.
			slog.Warn("timer snapshot references missing task", "task_id", id, "error", err)
			continue
		}

		seconds := t.TimeSeconds
		if s.creditOfflineTime {
			if gap := int64(s.now().Sub(reg.StartedAt).Seconds()); gap > 0 {
				seconds += gap
			}
		}

		s.regs[id] = reg
		if s.metrics != nil {
			s.metrics.TimersRunning.Add(ctx, 1)
		}
		if err := s.store.UpdateTaskTimer(ctx, id, seconds, true); err != nil {
			slog.Error("failed to restore task timer state", "task_id", id, "error", err)
		}
		slog.Info("timer restored", "task_id", id, "started_at", reg.StartedAt, "time_seconds", seconds)
	}

	return s.persistLocked(ctx)
}

// Run drives the shared tick loop until ctx is cancelled or Close is called.
func (s *TimerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Close stops the tick loop.
func (s *TimerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
}

// Tick credits one second to every running task. Exported so the loop and
// tests share the exact same accounting path.
func (s *TimerService) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.regs {
		t, err := s.store.GetTask(ctx, id)
		if err != nil {
			slog.Error("tick: task lookup failed", "task_id", id, "error", err)
			continue
		}
		if err := s.store.UpdateTaskTimer(ctx, id, t.TimeSeconds+1, true); err != nil {
			slog.Error("tick: timer update failed", "task_id", id, "error", err)
			continue
		}
		if s.metrics != nil {
			s.metrics.TimerTicks.Add(ctx, 1)
		}
	}
}

// Start begins (or restarts) the stopwatch for a task. An existing
// registration for the same id is replaced, so there is no duplicate
// accounting. Other tasks' timers are unaffected.
func (s *TimerService) Start(ctx context.Context, id int64) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("start timer %d: %w", id, err)
	}

	_, replaced := s.regs[id]
	s.regs[id] = registration{StartedAt: s.now()}
	if err := s.store.UpdateTaskTimer(ctx, id, t.TimeSeconds, true); err != nil {
		return nil, fmt.Errorf("start timer %d: %w", id, err)
	}
	t.Running = true
	if !replaced && s.metrics != nil {
		s.metrics.TimersRunning.Add(ctx, 1)
	}

	if err := s.persistLocked(ctx); err != nil {
		slog.Error("failed to persist timer snapshot", "error", err)
	}
	s.publishEvent(ctx, messagequeue.SubjectTimerStarted, TimerEvent{TaskID: id, TimeSeconds: t.TimeSeconds, Running: true})
	return t, nil
}

// Stop halts the stopwatch for a task and removes its registration. The
// accumulated time stays at whatever the tick loop has already credited;
// stopping itself adds nothing.
func (s *TimerService) Stop(ctx context.Context, id int64) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(ctx, id)
}

func (s *TimerService) stopLocked(ctx context.Context, id int64) (*task.Task, error) {
	if _, ok := s.regs[id]; !ok {
		return nil, fmt.Errorf("stop timer %d: no active registration: %w", id, domain.ErrNotFound)
	}

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("stop timer %d: %w", id, err)
	}

	delete(s.regs, id)
	if err := s.store.UpdateTaskTimer(ctx, id, t.TimeSeconds, false); err != nil {
		return nil, fmt.Errorf("stop timer %d: %w", id, err)
	}
	t.Running = false
	if s.metrics != nil {
		s.metrics.TimersRunning.Add(ctx, -1)
	}

	if err := s.persistLocked(ctx); err != nil {
		slog.Error("failed to persist timer snapshot", "error", err)
	}
	s.publishEvent(ctx, messagequeue.SubjectTimerStopped, TimerEvent{TaskID: id, TimeSeconds: t.TimeSeconds, Running: false})
	return t, nil
}

// Toggle stops the timer when running, starts it otherwise.
func (s *TimerService) Toggle(ctx context.Context, id int64) (*task.Task, error) {
	s.mu.Lock()
	_, running := s.regs[id]
	s.mu.Unlock()

	if running {
		return s.Stop(ctx, id)
	}
	return s.Start(ctx, id)
}

// Reset zeroes a task's accumulated time and stops it. It is destructive, so
// the caller must pass confirmed=true; a declined confirmation is a normal
// no-op, not an error. The returned bool reports whether the reset applied.
func (s *TimerService) Reset(ctx context.Context, id int64, confirmed bool) (bool, error) {
	if !confirmed {
		s.notify.Notify(ctx, notifier.Notification{
			Title:  "Reset cancelado",
			Level:  "info",
			Source: "timer.reset",
		})
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetTask(ctx, id); err != nil {
		return false, fmt.Errorf("reset timer %d: %w", id, err)
	}

	if _, ok := s.regs[id]; ok {
		delete(s.regs, id)
		if s.metrics != nil {
			s.metrics.TimersRunning.Add(ctx, -1)
		}
	}
	if err := s.store.UpdateTaskTimer(ctx, id, 0, false); err != nil {
		return false, fmt.Errorf("reset timer %d: %w", id, err)
	}

	if err := s.persistLocked(ctx); err != nil {
		slog.Error("failed to persist timer snapshot", "error", err)
	}
	s.publishEvent(ctx, messagequeue.SubjectTimerReset, TimerEvent{TaskID: id})
	return true, nil
}

// PauseAll stops every running timer. When none is running it is a no-op
// and a distinct notification is emitted instead.
func (s *TimerService) PauseAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.regs) == 0 {
		s.notify.Notify(ctx, notifier.Notification{
			Title:  "Nenhum timer em execução",
			Level:  "info",
			Source: "timer.paused",
		})
		return nil
	}

	for id := range s.regs {
		if _, err := s.stopLocked(ctx, id); err != nil {
			slog.Error("pause all: stop failed", "task_id", id, "error", err)
		}
	}

	s.notify.Notify(ctx, notifier.Notification{
		Title:  "Todos os timers pausados",
		Level:  "success",
		Source: "timer.paused",
	})
	return nil
}

// ResetAll stops every running timer and zeroes every task's accumulated
// time. Destructive: requires confirmed=true, otherwise a no-op.
func (s *TimerService) ResetAll(ctx context.Context, confirmed bool) (bool, error) {
	if !confirmed {
		s.notify.Notify(ctx, notifier.Notification{
			Title:  "Reset cancelado",
			Level:  "info",
			Source: "timer.reset",
		})
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return false, fmt.Errorf("reset all timers: %w", err)
	}

	if n := len(s.regs); n > 0 && s.metrics != nil {
		s.metrics.TimersRunning.Add(ctx, int64(-n))
	}
	s.regs = make(map[int64]registration)
	for i := range tasks {
		if err := s.store.UpdateTaskTimer(ctx, tasks[i].ID, 0, false); err != nil {
			slog.Error("reset all: timer update failed", "task_id", tasks[i].ID, "error", err)
		}
	}

	if err := s.persistLocked(ctx); err != nil {
		slog.Error("failed to persist timer snapshot", "error", err)
	}
	s.notify.Notify(ctx, notifier.Notification{
		Title:  "Todos os timers zerados",
		Level:  "success",
		Source: "timer.reset",
	})
	return true, nil
}

// CancelRegistration drops any registration for a deleted task without
// touching the store row (the row is going away).
func (s *TimerService) CancelRegistration(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[id]; !ok {
		return
	}
	delete(s.regs, id)
	if s.metrics != nil {
		s.metrics.TimersRunning.Add(ctx, -1)
	}
	if err := s.persistLocked(ctx); err != nil {
		slog.Error("failed to persist timer snapshot", "error", err)
	}
}

// Running returns the set of task ids with an active registration.
func (s *TimerService) Running() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.regs))
	for id := range s.regs {
		ids = append(ids, id)
	}
	return ids
}

// persistLocked writes the registration snapshot to the KV port.
// Must be called with s.mu held.
func (s *TimerService) persistLocked(ctx context.Context) error {
	snap := timerSnapshot{Running: make(map[string]registration, len(s.regs))}
	for id, reg := range s.regs {
		snap.Running[strconv.FormatInt(id, 10)] = reg
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode timer snapshot: %w", err)
	}
	if err := s.kv.Save(ctx, snapshotKey, data); err != nil {
		return fmt.Errorf("save timer snapshot: %w", err)
	}
	return nil
}

func (s *TimerService) publishEvent(ctx context.Context, subject string, ev TimerEvent) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal timer event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		// State is already persisted; a lost event is logged, not fatal.
		slog.Error("failed to publish timer event", "subject", subject, "task_id", ev.TaskID, "error", err)
	}
}
