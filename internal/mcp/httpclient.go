package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/storage"
)

// HTTPClient implements DataSource by calling the FreeCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the engine runs on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// Plan generation may wait on the AI provider.
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// errNotFound is returned by do for 404 responses.
var errNotFound = errors.New("httpclient: not found")

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, out)
	}

	return out, nil
}

func idList(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) BuildPlan(ctx context.Context, br plan.BuildRequest) (*plan.Build, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/plans", nil, br)
	if err != nil {
		return nil, err
	}
	var b plan.Build
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &b, nil
}

func (c *HTTPClient) ValidatePlan(ctx context.Context, p models.GeneratedPlan) ([]models.SafetyViolation, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/plans/validate", nil, map[string]any{"plan": p})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Violations []models.SafetyViolation `json:"violations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode violations: %w", err)
	}
	return resp.Violations, nil
}

func (c *HTTPClient) DayPlan(ctx context.Context, exerciseIDs []int64) (*DayPlanResult, error) {
	params := url.Values{}
	params.Set("exercise_ids", idList(exerciseIDs))
	body, err := c.do(ctx, http.MethodGet, "/api/v1/periodization", params, nil)
	if err != nil {
		return nil, err
	}
	var r DayPlanResult
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("httpclient: decode day plan: %w", err)
	}
	return &r, nil
}

func (c *HTTPClient) Deload(ctx context.Context, br plan.BuildRequest) (*DeloadResult, error) {
	params := url.Values{}
	params.Set("exercise_ids", idList(br.ExerciseIDs))
	if br.WeeksSinceLastDeload != nil {
		params.Set("weeks_since_last_deload", strconv.Itoa(*br.WeeksSinceLastDeload))
	}
	if br.DeloadRequested {
		params.Set("deload_requested", "true")
	}
	body, err := c.do(ctx, http.MethodGet, "/api/v1/deload", params, nil)
	if err != nil {
		return nil, err
	}
	var r DeloadResult
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("httpclient: decode deload: %w", err)
	}
	return &r, nil
}

func (c *HTTPClient) RestSeconds(ctx context.Context, exerciseID int64) (int, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/rest/"+strconv.FormatInt(exerciseID, 10), nil, nil)
	if err != nil {
		return 0, err
	}
	var r struct {
		RestSeconds int `json:"rest_seconds"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return 0, fmt.Errorf("httpclient: decode rest: %w", err)
	}
	return r.RestSeconds, nil
}

// BestRecord returns nil when the exercise has no record.
func (c *HTTPClient) BestRecord(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/records/"+strconv.FormatInt(exerciseID, 10), nil, nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r models.PersonalRecord
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("httpclient: decode record: %w", err)
	}
	return &r, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil, nil)
	if err != nil {
		return nil, err
	}
	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.VolumeSummaryPeriod, error) {
	params := timeParams(start, end)
	params.Set("bucket", bucket)
	body, err := c.do(ctx, http.MethodGet, "/api/v1/stats/volume", params, nil)
	if err != nil {
		return nil, err
	}
	var summary []storage.VolumeSummaryPeriod
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume summary: %w", err)
	}
	return summary, nil
}
