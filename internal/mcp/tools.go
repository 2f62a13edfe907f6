package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
)

// defaultTimeRange returns start/end defaulting to the last 12 weeks.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -84)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// exerciseIDs reads an array of positive integer ids. JSON numbers arrive
// as float64.
func exerciseIDs(req mcp.CallToolRequest) ([]int64, error) {
	raw, ok := req.GetArguments()["exercise_ids"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("exercise_ids must be a non-empty array of exercise ids")
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok || f != float64(int64(f)) || f <= 0 {
			return nil, fmt.Errorf("invalid exercise id %v", v)
		}
		ids = append(ids, int64(f))
	}
	return ids, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var exerciseIDsParam = mcp.WithArray("exercise_ids",
	mcp.Required(),
	mcp.Description("Catalog exercise ids for the session (see the exercise_catalog resource)"),
	mcp.Items(map[string]any{"type": "integer"}),
)

var toolGeneratePlan = mcp.NewTool("generate_plan",
	mcp.WithDescription("Generate the next session plan for the given exercises. Runs periodization and deload detection, then AI generation with cache and offline baseline fallbacks, safety validation and exercise ordering. Returns the plan, its source (AI_GENERATED, CACHED, BASELINE or MANUAL) and any safety violations."),
	exerciseIDsParam,
	mcp.WithBoolean("deload_requested", mcp.Description("Force a deload session")),
	mcp.WithNumber("weeks_since_last_deload", mcp.Description("Weeks since the last deload, for scheduled deloads")),
)

var toolValidatePlan = mcp.NewTool("validate_plan",
	mcp.WithDescription("Check a plan against the safety rules: weight jumps, session and muscle-group volume, age-adjusted intensity, difficulty gating and minimum rest. Returns the violations found; an empty list means the plan passed."),
	mcp.WithObject("plan", mcp.Required(), mcp.Description("Plan object with exercises[].exercise_id, exercises[].sets[] {type, weight, reps} and exercises[].rest_seconds")),
)

var toolGetDayType = mcp.NewTool("get_day_type",
	mcp.WithDescription("Determine the periodization model and day type (HYPERTROPHY, STRENGTH or POWER) of the next session from the user's level and recent history."),
	exerciseIDsParam,
)

var toolGetDeloadStatus = mcp.NewTool("get_deload_status",
	mcp.WithDescription("Check whether a deload is recommended: USER_REQUESTED, PROACTIVE_RECOMMENDED (scheduled), REACTIVE_RECOMMENDED (stalls or regression) or NOT_NEEDED."),
	exerciseIDsParam,
	mcp.WithNumber("weeks_since_last_deload", mcp.Description("Weeks since the last deload")),
)

var toolGetRestSeconds = mcp.NewTool("get_rest_seconds",
	mcp.WithDescription("Resolve the rest time between sets of an exercise from the user's override, global default or the level-based baseline."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Catalog exercise id")),
)

var toolGetPersonalRecord = mcp.NewTool("get_personal_record",
	mcp.WithDescription("Get the user's heaviest completed working set (MAX_WEIGHT record) for an exercise."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Catalog exercise id")),
)

var toolGetVolumeSummary = mcp.NewTool("get_volume_summary",
	mcp.WithDescription("Weekly or monthly completed working sets, reps and tonnage per muscle group."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 12 weeks ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 week'."), mcp.Enum("1 week", "1 month")),
)

// --- Tool handlers ---

func buildRequest(req mcp.CallToolRequest) (plan.BuildRequest, error) {
	ids, err := exerciseIDs(req)
	if err != nil {
		return plan.BuildRequest{}, err
	}
	br := plan.BuildRequest{
		ExerciseIDs:     ids,
		DeloadRequested: req.GetBool("deload_requested", false),
	}
	if weeks := req.GetInt("weeks_since_last_deload", -1); weeks >= 0 {
		br.WeeksSinceLastDeload = &weeks
	}
	return br, nil
}

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	br, err := buildRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	build, err := h.ds.BuildPlan(ctx, br)
	if err != nil {
		h.log.Error("mcp generate_plan", "error", err)
		return mcp.NewToolResultError("plan generation failed: " + err.Error()), nil
	}
	return jsonResult(build)
}

func (h *handlers) validatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["plan"]
	if !ok {
		return mcp.NewToolResultError("plan parameter is required"), nil
	}
	// Round-trip through JSON to decode the loosely typed argument.
	b, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid plan: " + err.Error()), nil
	}
	var p models.GeneratedPlan
	if err := json.Unmarshal(b, &p); err != nil {
		return mcp.NewToolResultError("invalid plan: " + err.Error()), nil
	}
	if len(p.Exercises) == 0 {
		return mcp.NewToolResultError("plan has no exercises"), nil
	}

	violations, err := h.ds.ValidatePlan(ctx, p)
	if err != nil {
		h.log.Error("mcp validate_plan", "error", err)
		return mcp.NewToolResultError("validation failed: " + err.Error()), nil
	}
	if violations == nil {
		violations = []models.SafetyViolation{}
	}
	return jsonResult(map[string]any{"violations": violations})
}

func (h *handlers) getDayType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := exerciseIDs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	day, err := h.ds.DayPlan(ctx, ids)
	if err != nil {
		h.log.Error("mcp get_day_type", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(day)
}

func (h *handlers) getDeloadStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	br, err := buildRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status, err := h.ds.Deload(ctx, br)
	if err != nil {
		h.log.Error("mcp get_deload_status", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(status)
}

func (h *handlers) getRestSeconds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	secs, err := h.ds.RestSeconds(ctx, int64(id))
	if err != nil {
		h.log.Error("mcp get_rest_seconds", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"exercise_id": id, "rest_seconds": secs})
}

func (h *handlers) getPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	rec, err := h.ds.BestRecord(ctx, int64(id))
	if err != nil {
		h.log.Error("mcp get_personal_record", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No personal record yet for exercise %d.", id)), nil
	}
	return jsonResult(rec)
}

func (h *handlers) getVolumeSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	summary, err := h.ds.GetVolumeSummary(ctx, start, end, req.GetString("bucket", "1 week"))
	if err != nil {
		h.log.Error("mcp get_volume_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}
