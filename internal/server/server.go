package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/ingest"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/session"
	"github.com/meltforce/freecoach/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Planner builds plans and the decisions behind them.
type Planner interface {
	Assemble(ctx context.Context, br plan.BuildRequest) (models.PlanRequest, models.DayPlan, error)
	Build(ctx context.Context, br plan.BuildRequest) (*plan.Build, error)
}

// Sessions is the live session tracker.
type Sessions interface {
	Recoverable(ctx context.Context) (*session.Recoverable, error)
	Discard(ctx context.Context, id uuid.UUID) (models.SessionStatus, error)
	Resume(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	Start(ctx context.Context, req session.StartRequest) (*models.WorkoutSession, error)
	Pause(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	ResumePaused(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	Finish(ctx context.Context, id uuid.UUID, notes string) (*session.FinishResult, error)
	CompleteSet(ctx context.Context, setID uuid.UUID, entry session.SetLog) (*session.SetResult, error)
	SkipSet(ctx context.Context, setID uuid.UUID) (*session.SetResult, error)
	UnskipSet(ctx context.Context, setID uuid.UUID) (*session.SetResult, error)
	DeleteSet(ctx context.Context, setID uuid.UUID) error
	AddSet(ctx context.Context, workoutExerciseID uuid.UUID, ps models.PlannedSet) (*models.WorkoutSet, error)
	RemoveExercise(ctx context.Context, workoutExerciseID uuid.UUID) error
	SaveExerciseNotes(ctx context.Context, workoutExerciseID uuid.UUID, notes string) error
	Views(ctx context.Context, sessionID uuid.UUID) ([]session.ExerciseView, error)
	SkipRest() bool
	ExtendRest(d time.Duration) bool
	RestRemaining() time.Duration
}

// Templates manages workout templates.
type Templates interface {
	Create(ctx context.Context, name string, exerciseIDs []int64) (*models.WorkoutTemplate, error)
	Get(ctx context.Context, id int64) (*models.WorkoutTemplate, error)
	List(ctx context.Context) ([]models.WorkoutTemplate, error)
	Delete(ctx context.Context, id int64) error
}

// Records reads personal records.
type Records interface {
	Best(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error)
}

// RestResolver resolves rest durations.
type RestResolver interface {
	ResolveFor(ctx context.Context, ex models.Exercise, aiPlanSeconds *int) int
}

// Store is the direct storage surface used by settings endpoints.
type Store interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p models.UserProfile) error
	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	SetRestOverride(ctx context.Context, exerciseID int64, seconds *int) error
	GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.VolumeSummaryPeriod, error)
}

// HistoryImporter imports training history exported by another app.
type HistoryImporter interface {
	Import(ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error)
}

// Deps are the components the HTTP API serves.
type Deps struct {
	Planner   Planner
	Sessions  Sessions
	Templates Templates
	Records   Records
	Rest      RestResolver
	Store     Store
	Alpha     HistoryImporter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	Deps
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		Deps:   deps,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		// Planning
		r.Post("/plans", s.handleBuildPlan)
		r.Post("/plans/validate", s.handleValidatePlan)
		r.Get("/periodization", s.handlePeriodization)
		r.Get("/deload", s.handleDeload)

		// Recovery
		r.Get("/sessions/recovery", s.handleRecoverable)
		r.Post("/sessions/recovery/discard", s.handleDiscard)
		r.Post("/sessions/recovery/resume", s.handleRecoveryResume)

		// Live session
		r.Post("/sessions", s.handleStartSession)
		r.Post("/sessions/{id}/pause", s.handlePauseSession)
		r.Post("/sessions/{id}/resume", s.handleResumeSession)
		r.Post("/sessions/{id}/finish", s.handleFinishSession)
		r.Get("/sessions/{id}/current", s.handleCurrent)
		r.Post("/session-exercises/{id}/sets", s.handleAddSet)
		r.Put("/session-exercises/{id}/notes", s.handleExerciseNotes)
		r.Delete("/session-exercises/{id}", s.handleRemoveExercise)
		r.Post("/sets/{id}/complete", s.handleCompleteSet)
		r.Post("/sets/{id}/skip", s.handleSkipSet)
		r.Post("/sets/{id}/unskip", s.handleUnskipSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		// Rest timer
		r.Get("/rest", s.handleRestRemaining)
		r.Post("/rest/skip", s.handleSkipRest)
		r.Post("/rest/extend", s.handleExtendRest)
		r.Get("/rest/{exerciseID}", s.handleRestFor)
		r.Put("/rest/{exerciseID}", s.handleSetRestOverride)

		// Library and settings
		r.Get("/exercises", s.handleListExercises)
		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates", s.handleCreateTemplate)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Delete("/templates/{id}", s.handleDeleteTemplate)
		r.Get("/records/{exerciseID}", s.handleBestRecord)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Get("/stats/volume", s.handleVolumeSummary)

		// History import
		r.Post("/import/alpha", s.handleAlphaImport)
	})
}
