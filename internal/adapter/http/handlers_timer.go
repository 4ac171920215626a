package http

import (
	"net/http"
)

type resetResponse struct {
	Reset bool `json:"reset"`
}

// StartTimer handles POST /api/v1/tasks/{id}/timer/start
func (h *Handlers) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.Timer.Start(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// StopTimer handles POST /api/v1/tasks/{id}/timer/stop
func (h *Handlers) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.Timer.Stop(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ToggleTimer handles POST /api/v1/tasks/{id}/timer/toggle
func (h *Handlers) ToggleTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.Timer.Toggle(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ResetTimer handles POST /api/v1/tasks/{id}/timer/reset?confirm=true
//
// Without confirm=true the reset is declined: nothing changes and the
// response reports reset=false.
func (h *Handlers) ResetTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	done, err := h.Timer.Reset(r.Context(), id, confirmed(r))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Reset: done})
}

// PauseAllTimers handles POST /api/v1/timers/pause-all
func (h *Handlers) PauseAllTimers(w http.ResponseWriter, r *http.Request) {
	if err := h.Timer.PauseAll(r.Context()); err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetAllTimers handles POST /api/v1/timers/reset-all?confirm=true
func (h *Handlers) ResetAllTimers(w http.ResponseWriter, r *http.Request) {
	done, err := h.Timer.ResetAll(r.Context(), confirmed(r))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{Reset: done})
}

// RunningTimers handles GET /api/v1/timers/running
func (h *Handlers) RunningTimers(w http.ResponseWriter, _ *http.Request) {
	ids := h.Timer.Running()
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"running": ids})
}
