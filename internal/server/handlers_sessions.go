package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/session"
)

func (s *Server) handleRecoverable(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Recoverable(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type sessionRef struct {
	SessionID uuid.UUID `json:"session_id"`
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var ref sessionRef
	if !decodeJSON(w, r, &ref) {
		return
	}
	status, err := s.Sessions.Discard(r.Context(), ref.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": ref.SessionID, "status": status})
}

func (s *Server) handleRecoveryResume(w http.ResponseWriter, r *http.Request) {
	var ref sessionRef
	if !decodeJSON(w, r, &ref) {
		return
	}
	sess, err := s.Sessions.Resume(r.Context(), ref.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleStartSession starts from the posted plan. A request with a template
// id and no plan starts the template's exercises with no planned sets.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req session.StartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Plan.Exercises) == 0 && req.TemplateID != nil {
		t, err := s.Templates.Get(r.Context(), *req.TemplateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		for _, id := range t.ExerciseIDs {
			req.Plan.Exercises = append(req.Plan.Exercises, models.ExercisePlan{ExerciseID: id})
		}
	}

	sess, err := s.Sessions.Start(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.Sessions.Pause)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.Sessions.ResumePaused)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess, err := fn(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type finishRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var fr finishRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &fr) {
		return
	}
	res, err := s.Sessions.Finish(r.Context(), id, fr.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type currentResponse struct {
	Exercises []session.ExerciseView `json:"exercises"`
	Current   *models.WorkoutSet     `json:"current,omitempty"`
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	views, err := s.Sessions.Views(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := currentResponse{Exercises: views}
	if set, ok := session.CurrentSet(views); ok {
		resp.Current = &set
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var ps models.PlannedSet
	if !decodeJSON(w, r, &ps) {
		return
	}
	set, err := s.Sessions.AddSet(r.Context(), id, ps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleExerciseNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var nr notesRequest
	if !decodeJSON(w, r, &nr) {
		return
	}
	if err := s.Sessions.SaveExerciseNotes(r.Context(), id, nr.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Sessions.RemoveExercise(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var entry session.SetLog
	if !decodeJSON(w, r, &entry) {
		return
	}
	res, err := s.Sessions.CompleteSet(r.Context(), id, entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSkipSet(w http.ResponseWriter, r *http.Request) {
	s.setAction(w, r, s.Sessions.SkipSet)
}

func (s *Server) handleUnskipSet(w http.ResponseWriter, r *http.Request) {
	s.setAction(w, r, s.Sessions.UnskipSet)
}

func (s *Server) setAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*session.SetResult, error)) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := fn(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Sessions.DeleteSet(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestRemaining(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"remaining_seconds": int(s.Sessions.RestRemaining().Round(time.Second).Seconds()),
	})
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"skipped": s.Sessions.SkipRest()})
}

type extendRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleExtendRest(w http.ResponseWriter, r *http.Request) {
	var er extendRequest
	if !decodeJSON(w, r, &er) {
		return
	}
	if er.Seconds <= 0 || er.Seconds > 600 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be between 1 and 600"})
		return
	}
	extended := s.Sessions.ExtendRest(time.Duration(er.Seconds) * time.Second)
	writeJSON(w, http.StatusOK, map[string]any{
		"extended":          extended,
		"remaining_seconds": int(s.Sessions.RestRemaining().Round(time.Second).Seconds()),
	})
}
