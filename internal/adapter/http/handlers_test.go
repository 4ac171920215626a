package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	aiudexhttp "github.com/aiudex/aiudexd/internal/adapter/http"
	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/domain/task"
	"github.com/aiudex/aiudexd/internal/port/llm"
	"github.com/aiudex/aiudexd/internal/service"
)

var errNotFound = fmt.Errorf("mock: %w", domain.ErrNotFound)

// mockStore implements database.Store and credits.Ledger for handler tests.
type mockStore struct {
	mu        sync.Mutex
	tasks     map[int64]task.Task
	documents map[string]document.Document
	office    *dossier.Office
	balance   int
}

func newMockStore() *mockStore {
	return &mockStore{
		tasks:     make(map[int64]task.Task),
		documents: make(map[string]document.Document),
	}
}

func (m *mockStore) ListTasks(_ context.Context) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) GetTask(_ context.Context, id int64) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, errNotFound
	}
	return &t, nil
}

func (m *mockStore) CreateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m *mockStore) UpdateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return errNotFound
	}
	m.tasks[t.ID] = *t
	return nil
}

func (m *mockStore) UpdateTaskTimer(_ context.Context, id int64, seconds int64, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return errNotFound
	}
	t.TimeSeconds = seconds
	t.Running = running
	m.tasks[id] = t
	return nil
}

func (m *mockStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return errNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockStore) ListDocuments(_ context.Context) ([]document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]document.Document, 0, len(m.documents))
	for _, d := range m.documents {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, errNotFound
	}
	return &d, nil
}

func (m *mockStore) CreateDocument(_ context.Context, d *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[d.ID] = *d
	return nil
}

func (m *mockStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return errNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *mockStore) GetOffice(_ context.Context) (*dossier.Office, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.office == nil {
		return nil, errNotFound
	}
	o := *m.office
	return &o, nil
}

func (m *mockStore) SaveOffice(_ context.Context, o *dossier.Office) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.office = &cp
	return nil
}

func (m *mockStore) CanGeneratePetition(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance > 0, nil
}

func (m *mockStore) Consume(_ context.Context, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance <= 0 {
		return false, nil
	}
	m.balance--
	return true, nil
}

func (m *mockStore) Balance(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

// mockKV implements kvstore.KV.
type mockKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mockKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *mockKV) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = data
	return nil
}

func (m *mockKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// mockLLM answers with a fixed response.
type mockLLM struct {
	name     string
	response string
}

func (c *mockLLM) Name() string { return c.name }
func (c *mockLLM) Ask(_ context.Context, _, _ string) (string, error) {
	return c.response, nil
}

func newTestRouter(store *mockStore) chi.Router {
	notify := service.NewNotificationService()
	timer := service.NewTimerService(store, &mockKV{}, nil, notify, service.TimerOptions{})
	tasks := service.NewTaskService(store, nil, timer)
	office := service.NewOfficeService(store, nil, time.Minute)
	docs := service.NewDocumentService(store)
	clients := map[string]llm.Client{"gemini": &mockLLM{name: "gemini", response: "PETIÇÃO INICIAL\n\nTexto."}}
	gen := service.NewGenerationService(store, store, clients, "gemini-2.0-flash", office, nil, notify, nil)

	h := &aiudexhttp.Handlers{
		Tasks:      tasks,
		Timer:      timer,
		Documents:  docs,
		Generation: gen,
		Office:     office,
		Credits:    store,
	}
	r := chi.NewRouter()
	aiudexhttp.MountRoutes(r, h)
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetTask(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodPost, "/api/v1/tasks", task.CreateRequest{Title: "Elaborar recurso"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created task.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Status != task.StatusTodo {
		t.Errorf("status = %q, want default", created.Status)
	}

	rec = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestCreateTaskMissingTitle(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodPost, "/api/v1/tasks", map[string]string{"description": "sem título"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodGet, "/api/v1/tasks/42", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetTaskBadID(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodGet, "/api/v1/tasks/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTimerStartStop(t *testing.T) {
	store := newMockStore()
	store.tasks[1] = task.Task{ID: 1, Title: "Prazo"}
	r := newTestRouter(store)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/tasks/1/timer/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body)
	}
	var got task.Task
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Running {
		t.Error("started task should report running")
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/tasks/1/timer/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d", rec.Code)
	}
}

func TestTimerResetConfirmFlag(t *testing.T) {
	store := newMockStore()
	store.tasks[1] = task.Task{ID: 1, Title: "Prazo", TimeSeconds: 99}
	r := newTestRouter(store)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/tasks/1/timer/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("declined reset status = %d", rec.Code)
	}
	var resp struct {
		Reset bool `json:"reset"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Reset {
		t.Error("reset must not apply without confirm=true")
	}
	if store.tasks[1].TimeSeconds != 99 {
		t.Error("declined reset touched the stored time")
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/tasks/1/timer/reset?confirm=true", nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Reset {
		t.Error("confirmed reset should apply")
	}
	if store.tasks[1].TimeSeconds != 0 {
		t.Error("confirmed reset should zero the stored time")
	}
}

func TestGenerateDocumentNoCredits(t *testing.T) {
	store := newMockStore()
	r := newTestRouter(store)

	body := map[string]any{
		"dossier": map[string]any{
			"area":          "Direito Civil",
			"document_type": "Petição Inicial",
			"facts":         "Fatos do caso.",
			"parties":       []map[string]any{{"name": "João", "polo": "autor"}},
		},
	}
	rec := doRequest(t, r, http.MethodPost, "/api/v1/documents/generate", body)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402, body = %s", rec.Code, rec.Body)
	}
}

func TestGenerateDocumentSuccess(t *testing.T) {
	store := newMockStore()
	store.balance = 1
	r := newTestRouter(store)

	body := map[string]any{
		"dossier": map[string]any{
			"area":          "Direito Civil",
			"document_type": "Petição Inicial",
			"facts":         "Fatos do caso.",
			"parties":       []map[string]any{{"name": "João", "polo": "autor"}},
		},
	}
	rec := doRequest(t, r, http.MethodPost, "/api/v1/documents/generate", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var doc document.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.HTML == "" {
		t.Error("generated document should carry formatted HTML")
	}
	if len(store.documents) != 1 {
		t.Errorf("document count = %d, want 1", len(store.documents))
	}
}

func TestGenerateDocumentMissingFields(t *testing.T) {
	store := newMockStore()
	store.balance = 1
	r := newTestRouter(store)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/documents/generate", map[string]any{"dossier": map[string]any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body)
	}
}

func TestOfficeRoundTrip(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodGet, "/api/v1/office", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unconfigured office status = %d", rec.Code)
	}

	o := dossier.Office{LawyerName: "Maria Advogada", OABNumber: "123456", OABState: "SP"}
	rec = doRequest(t, r, http.MethodPut, "/api/v1/office", o)
	if rec.Code != http.StatusOK {
		t.Fatalf("save office status = %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/v1/office", nil)
	var got dossier.Office
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.LawyerName != "Maria Advogada" {
		t.Errorf("LawyerName = %q", got.LawyerName)
	}
}

func TestCreditBalance(t *testing.T) {
	store := newMockStore()
	store.balance = 7
	r := newTestRouter(store)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/credits", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]int
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["balance"] != 7 {
		t.Errorf("balance = %d, want 7", resp["balance"])
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(newMockStore())

	rec := doRequest(t, r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
