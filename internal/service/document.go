package service

import (
	"context"

	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/port/database"
)

// DocumentService handles stored-document queries. Creation happens through
// the generation pipeline, not here.
type DocumentService struct {
	store database.Store
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(store database.Store) *DocumentService {
	return &DocumentService{store: store}
}

// List returns all stored documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]document.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get returns a document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*document.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}
