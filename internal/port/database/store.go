// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/domain/task"
)

// Store is the port interface for database operations.
type Store interface {
	// Tasks
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id int64) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	UpdateTaskTimer(ctx context.Context, id int64, seconds int64, running bool) error
	DeleteTask(ctx context.Context, id int64) error

	// Documents
	ListDocuments(ctx context.Context) ([]document.Document, error)
	GetDocument(ctx context.Context, id string) (*document.Document, error)
	CreateDocument(ctx context.Context, d *document.Document) error
	DeleteDocument(ctx context.Context, id string) error

	// Office identity
	GetOffice(ctx context.Context) (*dossier.Office, error)
	SaveOffice(ctx context.Context, o *dossier.Office) error
}
