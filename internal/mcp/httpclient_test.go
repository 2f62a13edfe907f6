package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/storage"
)

const testAPIKey = "test-key"

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths, query params and
// the API key header.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != testAPIKey {
			t.Errorf("X-API-Key=%q, want %q", got, testAPIKey)
		}
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestBuildPlan verifies the plan request body and the decoded build.
func TestBuildPlan(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method=%s, want POST", r.Method)
			}
			var br plan.BuildRequest
			if err := json.NewDecoder(r.Body).Decode(&br); err != nil {
				t.Fatal(err)
			}
			if len(br.ExerciseIDs) != 2 || br.ExerciseIDs[1] != 9 {
				t.Errorf("exercise_ids=%v, want [1 9]", br.ExerciseIDs)
			}
			writeTestJSON(t, w, plan.Build{
				Source:  plan.SourceCached,
				Deload:  models.DeloadNotNeeded,
				DayPlan: models.DayPlan{Model: models.ModelLinear, DayType: models.DayHypertrophy},
				Plan:    &models.GeneratedPlan{Exercises: []models.ExercisePlan{{ExerciseID: 1}, {ExerciseID: 9}}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, testAPIKey)
	b, err := client.BuildPlan(context.Background(), plan.BuildRequest{ExerciseIDs: []int64{1, 9}})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != plan.SourceCached {
		t.Errorf("source=%s, want CACHED", b.Source)
	}
	if b.Plan == nil || len(b.Plan.Exercises) != 2 {
		t.Errorf("plan=%+v, want 2 exercises", b.Plan)
	}
}

// TestDeloadParams verifies deload query parameters.
func TestDeloadParams(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/deload": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("exercise_ids"); got != "3,4,5" {
				t.Errorf("exercise_ids=%q, want 3,4,5", got)
			}
			if got := q.Get("weeks_since_last_deload"); got != "6" {
				t.Errorf("weeks_since_last_deload=%q, want 6", got)
			}
			if q.Has("deload_requested") {
				t.Error("deload_requested should be omitted when false")
			}
			writeTestJSON(t, w, DeloadResult{Status: models.DeloadProactive, Recommended: true})
		},
	})
	defer ts.Close()

	weeks := 6
	client := NewHTTPClient(ts.URL+"/", testAPIKey)
	r, err := client.Deload(context.Background(), plan.BuildRequest{ExerciseIDs: []int64{3, 4, 5}, WeeksSinceLastDeload: &weeks})
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != models.DeloadProactive || !r.Recommended {
		t.Errorf("deload=%+v, want proactive", r)
	}
}

// TestBestRecordNotFound verifies a 404 maps to a nil record.
func TestBestRecordNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records/12": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"no record"}`))
		},
	})
	defer ts.Close()

	rec, err := NewHTTPClient(ts.URL, testAPIKey).BestRecord(context.Background(), 12)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("record=%+v, want nil", rec)
	}
}

// TestRestSeconds verifies the rest endpoint path and decoding.
func TestRestSeconds(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/rest/4": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]int{"exercise_id": 4, "rest_seconds": 150})
		},
	})
	defer ts.Close()

	secs, err := NewHTTPClient(ts.URL, testAPIKey).RestSeconds(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if secs != 150 {
		t.Errorf("rest_seconds=%d, want 150", secs)
	}
}

// TestGetVolumeSummary verifies time range and bucket params.
func TestGetVolumeSummary(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats/volume": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("bucket"); got != "1 month" {
				t.Errorf("bucket=%q, want '1 month'", got)
			}
			if got := q.Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q", got)
			}
			writeTestJSON(t, w, []storage.VolumeSummaryPeriod{{Period: "2026-01-01", Sessions: 8, WorkingSets: 96}})
		},
	})
	defer ts.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	summary, err := NewHTTPClient(ts.URL, testAPIKey).GetVolumeSummary(context.Background(), start, end, "1 month")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 1 || summary[0].Sessions != 8 {
		t.Errorf("summary=%+v", summary)
	}
}

// TestServerError verifies non-200 responses surface the status and body.
func TestServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal error"}`))
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, testAPIKey).ListExercises(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error=%v, want status code", err)
	}
}
