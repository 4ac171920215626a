package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/domain/task"
)

// Store implements database.Store and credits.Ledger using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Tasks ---

const taskColumns = `id, title, description, client, status, priority, due_date, tags, time_seconds, running, created_at, updated_at`

func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	tagsJSON, err := json.Marshal(emptyIfNil(t.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, client, status, priority, due_date, tags, time_seconds, running, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Title, t.Description, t.Client, t.Status, t.Priority, t.DueDate, tagsJSON,
		t.TimeSeconds, t.Running, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask edits the form fields of a task; timer columns and created_at
// are untouched here (see UpdateTaskTimer).
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	tagsJSON, err := json.Marshal(emptyIfNil(t.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, client = $4, status = $5, priority = $6, due_date = $7, tags = $8, updated_at = $9
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Client, t.Status, t.Priority, t.DueDate, tagsJSON, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task %d: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateTaskTimer(ctx context.Context, id int64, seconds int64, running bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET time_seconds = $2, running = $3, updated_at = now() WHERE id = $1`,
		id, seconds, running)
	if err != nil {
		return fmt.Errorf("update task timer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update task timer %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Documents ---

const documentColumns = `id, title, area, document_type, client, raw_text, html, model, created_at, updated_at`

func (s *Store) ListDocuments(ctx context.Context) ([]document.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, title, area, document_type, client, raw_text, html, model, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.Title, d.Area, d.DocumentType, d.Client, d.RawText, d.HTML, d.Model, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Office identity ---

func (s *Store) GetOffice(ctx context.Context) (*dossier.Office, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT lawyer_name, oab_number, oab_state, office_name, office_address, office_phone, office_email
		 FROM office_config WHERE id = 1`)

	var o dossier.Office
	err := row.Scan(&o.LawyerName, &o.OABNumber, &o.OABState, &o.OfficeName,
		&o.OfficeAddress, &o.OfficePhone, &o.OfficeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get office config: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get office config: %w", err)
	}
	return &o, nil
}

func (s *Store) SaveOffice(ctx context.Context, o *dossier.Office) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO office_config (id, lawyer_name, oab_number, oab_state, office_name, office_address, office_phone, office_email, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (id) DO UPDATE SET
		   lawyer_name = EXCLUDED.lawyer_name,
		   oab_number = EXCLUDED.oab_number,
		   oab_state = EXCLUDED.oab_state,
		   office_name = EXCLUDED.office_name,
		   office_address = EXCLUDED.office_address,
		   office_phone = EXCLUDED.office_phone,
		   office_email = EXCLUDED.office_email,
		   updated_at = now()`,
		o.LawyerName, o.OABNumber, o.OABState, o.OfficeName, o.OfficeAddress, o.OfficePhone, o.OfficeEmail)
	if err != nil {
		return fmt.Errorf("save office config: %w", err)
	}
	return nil
}

// --- Petition credits (credits.Ledger) ---

func (s *Store) CanGeneratePetition(ctx context.Context) (bool, error) {
	balance, err := s.Balance(ctx)
	if err != nil {
		return false, err
	}
	return balance > 0, nil
}

// Consume atomically debits one credit and records the usage label.
// Returns false when the balance was already zero.
func (s *Store) Consume(ctx context.Context, label string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("consume credit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE petition_credits SET balance = balance - 1 WHERE id = 1 AND balance > 0`)
	if err != nil {
		return false, fmt.Errorf("consume credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `INSERT INTO credit_usage (label) VALUES ($1)`, label); err != nil {
		return false, fmt.Errorf("record credit usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("consume credit: %w", err)
	}
	return true, nil
}

func (s *Store) Balance(ctx context.Context) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx, `SELECT balance FROM petition_credits WHERE id = 1`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return balance, nil
}

// --- scan helpers ---

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var tagsJSON []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Client, &t.Status, &t.Priority,
		&t.DueDate, &tagsJSON, &t.TimeSeconds, &t.Running, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return task.Task{}, err
	}
	if err := json.Unmarshal(tagsJSON, &t.Tags); err != nil {
		return task.Task{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	return t, nil
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var d document.Document
	err := row.Scan(&d.ID, &d.Title, &d.Area, &d.DocumentType, &d.Client,
		&d.RawText, &d.HTML, &d.Model, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return document.Document{}, err
	}
	return d, nil
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
