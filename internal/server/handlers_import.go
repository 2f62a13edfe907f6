package server

import (
	"net/http"
	"strconv"
)

// maxImportBytes caps an uploaded export.
const maxImportBytes = 32 << 20

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	if s.Alpha == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "history import not configured"})
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	result, err := s.Alpha.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes), dryRun)
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
