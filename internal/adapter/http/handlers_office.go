package http

import (
	"net/http"

	"github.com/aiudex/aiudexd/internal/domain/dossier"
)

// GetOffice handles GET /api/v1/office
func (h *Handlers) GetOffice(w http.ResponseWriter, r *http.Request) {
	o, err := h.Office.Get(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// SaveOffice handles PUT /api/v1/office
func (h *Handlers) SaveOffice(w http.ResponseWriter, r *http.Request) {
	o, ok := readJSON[dossier.Office](w, r)
	if !ok {
		return
	}
	if err := h.Office.Save(r.Context(), &o); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CreditBalance handles GET /api/v1/credits
func (h *Handlers) CreditBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Credits.Balance(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}
