package server

import (
	"net/http"

	"github.com/meltforce/freecoach/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.Store.ListExercises(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleRestFor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "exerciseID")
	if !ok {
		return
	}
	ex, err := s.Store.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ex == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercise_id":  id,
		"rest_seconds": s.Rest.ResolveFor(r.Context(), *ex, nil),
	})
}

// restOverride sets or, with a null rest_seconds, clears an override.
type restOverride struct {
	RestSeconds *int `json:"rest_seconds" validate:"omitempty,min=0,max=900"`
}

func (s *Server) handleSetRestOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "exerciseID")
	if !ok {
		return
	}
	var ro restOverride
	if !decodeJSON(w, r, &ro) {
		return
	}
	if err := models.Validate(ro); err != nil {
		s.writeError(w, r, err)
		return
	}
	ex, err := s.Store.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ex == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	if err := s.Store.SetRestOverride(r.Context(), id, ro.RestSeconds); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templateRequest struct {
	Name        string  `json:"name"`
	ExerciseIDs []int64 `json:"exercise_ids"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Templates.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ts == nil {
		ts = []models.WorkoutTemplate{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tr templateRequest
	if !decodeJSON(w, r, &tr) {
		return
	}
	t, err := s.Templates.Create(r.Context(), tr.Name, tr.ExerciseIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	t, err := s.Templates.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := s.Templates.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBestRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "exerciseID")
	if !ok {
		return
	}
	rec, err := s.Records.Best(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record for exercise"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not set up"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := models.Validate(p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Store.SaveProfile(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("profile saved", "experience_level", p.ExperienceLevel)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleVolumeSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	summary, err := s.Store.GetVolumeSummary(r.Context(), start, end, r.URL.Query().Get("bucket"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
