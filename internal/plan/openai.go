package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const systemPrompt = `You are a certified strength and conditioning coach.
Write one training session for the exercises provided. Respond with a JSON
object only, shaped as:
{"notes": string, "exercises": [{"exercise_id": int, "rest_seconds": int,
 "notes": string, "sets": [{"type": "WARMUP"|"WORKING", "weight": number,
 "reps": int}]}]}
Weights are in kilograms. Use every exercise_id exactly once and no others.
Respect the day type and, when a deload is recommended, reduce volume and
load.`

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	RequestsPerMinute int
}

// OpenAIProvider asks an OpenAI-compatible model for a plan.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewOpenAIProvider creates a provider. A RequestsPerMinute of zero disables
// client-side rate limiting.
func NewOpenAIProvider(cfg OpenAIConfig, log *slog.Logger) *OpenAIProvider {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// promptRequest is the request as sent to the model.
type promptRequest struct {
	Level     models.ExperienceLevel `json:"experience_level"`
	DayType   models.DayType         `json:"day_type"`
	Deload    bool                   `json:"deload_recommended"`
	Age       *int                   `json:"age,omitempty"`
	Exercises []promptExercise       `json:"exercises"`
}

type promptExercise struct {
	ID           int64               `json:"exercise_id"`
	Name         string              `json:"name"`
	Equipment    string              `json:"equipment"`
	MovementType models.MovementType `json:"movement_type"`
	LastMaxKg    float64             `json:"last_max_kg,omitempty"`
}

type aiPlan struct {
	Notes     string `json:"notes"`
	Exercises []struct {
		ExerciseID  int64  `json:"exercise_id"`
		RestSeconds int    `json:"rest_seconds"`
		Notes       string `json:"notes"`
		Sets        []struct {
			Type   models.SetType `json:"type"`
			Weight float64        `json:"weight"`
			Reps   int            `json:"reps"`
		} `json:"sets"`
	} `json:"exercises"`
}

// GeneratePlan implements AIProvider.
func (p *OpenAIProvider) GeneratePlan(ctx context.Context, req models.PlanRequest) (*models.GeneratedPlan, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	prompt, err := json.Marshal(buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("encoding prompt: %w", err)
	}

	p.log.Debug("requesting ai plan", "model", p.model, "exercises", len(req.Exercises))
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(prompt)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("calling chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return parsePlan(resp.Choices[0].Message.Content, req)
}

func buildPrompt(req models.PlanRequest) promptRequest {
	day := req.DayType
	if day == "" {
		day = models.DayHypertrophy
	}
	pr := promptRequest{
		Level:   requestLevel(req),
		DayType: day,
		Deload:  req.Deload.Recommended(),
	}
	if req.Profile != nil {
		pr.Age = req.Profile.Age
	}
	for _, e := range req.Exercises {
		pe := promptExercise{ID: e.ID, Name: e.Name, Equipment: e.Equipment, MovementType: e.MovementType}
		if h, ok := req.HistoryFor(e.ID); ok {
			pe.LastMaxKg = h.LastMax()
		}
		pr.Exercises = append(pr.Exercises, pe)
	}
	return pr
}

// parsePlan decodes the model output, dropping exercises that were not
// requested and sets without reps.
func parsePlan(content string, req models.PlanRequest) (*models.GeneratedPlan, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw aiPlan
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decoding ai plan: %w", err)
	}

	day := req.DayType
	if day == "" {
		day = models.DayHypertrophy
	}
	out := &models.GeneratedPlan{DayType: day, Notes: raw.Notes}
	seen := map[int64]bool{}
	for _, re := range raw.Exercises {
		ex, ok := req.ExerciseByID(re.ExerciseID)
		if !ok || seen[ex.ID] {
			continue
		}
		ep := models.ExercisePlan{
			ExerciseID:  ex.ID,
			StableID:    ex.StableID,
			RestSeconds: max(re.RestSeconds, 0),
			Notes:       re.Notes,
		}
		for _, s := range re.Sets {
			if s.Reps <= 0 || s.Weight < 0 {
				continue
			}
			t := s.Type
			if t != models.SetWarmup {
				t = models.SetWorking
			}
			ep.Sets = append(ep.Sets, models.PlannedSet{Type: t, Weight: s.Weight, Reps: s.Reps})
		}
		if len(ep.Sets) == 0 {
			continue
		}
		seen[ex.ID] = true
		out.Exercises = append(out.Exercises, ep)
	}
	if len(out.Exercises) == 0 {
		return nil, fmt.Errorf("ai plan has no usable exercises")
	}
	return out, nil
}
