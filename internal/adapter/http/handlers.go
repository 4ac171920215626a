package http

import (
	"net/http"

	"github.com/aiudex/aiudexd/internal/port/credits"
	"github.com/aiudex/aiudexd/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Tasks      *service.TaskService
	Timer      *service.TimerService
	Documents  *service.DocumentService
	Generation *service.GenerationService
	Office     *service.OfficeService
	Credits    credits.Ledger
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
