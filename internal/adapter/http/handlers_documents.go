package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aiudex/aiudexd/internal/domain/document"
	"github.com/aiudex/aiudexd/internal/service"
)

// GenerateDocument handles POST /api/v1/documents/generate
func (h *Handlers) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.GenerationRequest](w, r)
	if !ok {
		return
	}

	doc, err := h.Generation.Generate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "document generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ListDocuments handles GET /api/v1/documents
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Documents.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if docs == nil {
		docs = []document.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument handles GET /api/v1/documents/{id}
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Documents.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/v1/documents/{id}
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Documents.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
