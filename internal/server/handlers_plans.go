package server

import (
	"net/http"
	"strconv"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/safety"
)

func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var br plan.BuildRequest
	if !decodeJSON(w, r, &br) {
		return
	}
	build, err := s.Planner.Build(r.Context(), br)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, build)
}

// validateRequest checks a user-edited plan against the current profile and
// history of the exercises it contains.
type validateRequest struct {
	Plan models.GeneratedPlan `json:"plan"`
}

func (s *Server) handleValidatePlan(w http.ResponseWriter, r *http.Request) {
	var vr validateRequest
	if !decodeJSON(w, r, &vr) {
		return
	}
	ids := make([]int64, 0, len(vr.Plan.Exercises))
	for _, ep := range vr.Plan.Exercises {
		ids = append(ids, ep.ExerciseID)
	}

	req, _, err := s.Planner.Assemble(r.Context(), plan.BuildRequest{ExerciseIDs: ids})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"violations": nonNil(safety.Validate(vr.Plan, req))})
}

func nonNil(v []models.SafetyViolation) []models.SafetyViolation {
	if v == nil {
		return []models.SafetyViolation{}
	}
	return v
}

// buildRequestFromQuery reads exercise_ids, weeks_since_last_deload and
// deload_requested query parameters.
func buildRequestFromQuery(r *http.Request) (plan.BuildRequest, error) {
	q := r.URL.Query()
	ids, err := parseIDList(q.Get("exercise_ids"))
	if err != nil {
		return plan.BuildRequest{}, err
	}
	br := plan.BuildRequest{ExerciseIDs: ids}
	if v := q.Get("weeks_since_last_deload"); v != "" {
		weeks, err := strconv.Atoi(v)
		if err != nil {
			return plan.BuildRequest{}, err
		}
		br.WeeksSinceLastDeload = &weeks
	}
	if v := q.Get("deload_requested"); v != "" {
		br.DeloadRequested, err = strconv.ParseBool(v)
		if err != nil {
			return plan.BuildRequest{}, err
		}
	}
	return br, nil
}

func (s *Server) handlePeriodization(w http.ResponseWriter, r *http.Request) {
	br, err := buildRequestFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req, day, err := s.Planner.Assemble(r.Context(), br)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"experience_level": req.Level,
		"day_plan":         day,
	})
}

func (s *Server) handleDeload(w http.ResponseWriter, r *http.Request) {
	br, err := buildRequestFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req, _, err := s.Planner.Assemble(r.Context(), br)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      req.Deload,
		"recommended": req.Deload.Recommended(),
	})
}
