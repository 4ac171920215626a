package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/domain/task"
	"github.com/aiudex/aiudexd/internal/port/messagequeue"
	"github.com/aiudex/aiudexd/internal/port/notifier"
)

var errMockNotFound = fmt.Errorf("mock: %w", domain.ErrNotFound)

// memStore is an in-memory database.Store (and credits.Ledger) for tests.
type memStore struct {
	mu        sync.Mutex
	tasks     map[int64]task.Task
	documents map[string]document.Document
	office    *dossier.Office
	balance   int
	consumed  []string

	createDocErr error
	getTaskErr   error
}

func newMemStore() *memStore {
	return &memStore{
		tasks:     make(map[int64]task.Task),
		documents: make(map[string]document.Document),
	}
}

func (m *memStore) ListTasks(_ context.Context) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) GetTask(_ context.Context, id int64) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getTaskErr != nil {
		return nil, m.getTaskErr
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, errMockNotFound
	}
	return &t, nil
}

func (m *memStore) CreateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return errMockNotFound
	}
	m.tasks[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTaskTimer(_ context.Context, id int64, seconds int64, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return errMockNotFound
	}
	t.TimeSeconds = seconds
	t.Running = running
	m.tasks[id] = t
	return nil
}

func (m *memStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return errMockNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) ListDocuments(_ context.Context) ([]document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]document.Document, 0, len(m.documents))
	for _, d := range m.documents {
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) GetDocument(_ context.Context, id string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, errMockNotFound
	}
	return &d, nil
}

func (m *memStore) CreateDocument(_ context.Context, d *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createDocErr != nil {
		return m.createDocErr
	}
	m.documents[d.ID] = *d
	return nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return errMockNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *memStore) GetOffice(_ context.Context) (*dossier.Office, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.office == nil {
		return nil, errMockNotFound
	}
	o := *m.office
	return &o, nil
}

func (m *memStore) SaveOffice(_ context.Context, o *dossier.Office) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.office = &cp
	return nil
}

// credits.Ledger

func (m *memStore) CanGeneratePetition(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance > 0, nil
}

func (m *memStore) Consume(_ context.Context, label string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance <= 0 {
		return false, nil
	}
	m.balance--
	m.consumed = append(m.consumed, label)
	return true, nil
}

func (m *memStore) Balance(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

func (m *memStore) timeSeconds(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id].TimeSeconds
}

// memKV is an in-memory kvstore.KV.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memKV) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// memQueue is an in-memory messagequeue.Queue recording published messages.
type memQueue struct {
	mu       sync.Mutex
	messages []publishedMsg
}

type publishedMsg struct {
	Subject string
	Data    []byte
}

func (m *memQueue) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMsg{Subject: subject, Data: data})
	return nil
}

func (m *memQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *memQueue) Close() error { return nil }

func (m *memQueue) lastMessage(subject string) (publishedMsg, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Subject == subject {
			return m.messages[i], true
		}
	}
	return publishedMsg{}, false
}

// captureNotifier records notifications sent through a NotificationService.
type captureNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
}

func (n *captureNotifier) Name() string { return "capture" }

func (n *captureNotifier) Send(_ context.Context, msg notifier.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, msg := range n.sent {
		out[i] = msg.Title
	}
	return out
}

// stubLLM answers every Ask with a fixed response.
type stubLLM struct {
	name     string
	response string
	err      error

	mu      sync.Mutex
	prompts []string
}

func (c *stubLLM) Name() string { return c.name }

func (c *stubLLM) Ask(_ context.Context, _ string, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

// memCache is an in-memory cache.Cache without eviction.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
