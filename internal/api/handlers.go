package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHealth returns liveness information.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStatus returns the controller's synchronization status: load
// phase, offline flag, transport connectivity and collection size.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.GetStatus())
}

// handleListDevices returns the full device collection.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.controller.Devices()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns one device by id.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := s.controller.Device(id)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleListSchedules returns the schedule collection.
func (s *Server) handleListSchedules(w http.ResponseWriter, _ *http.Request) {
	schedules := s.controller.Schedules()
	writeJSON(w, http.StatusOK, map[string]any{
		"schedules": schedules,
		"count":     len(schedules),
	})
}
