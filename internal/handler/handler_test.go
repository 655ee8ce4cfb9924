package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/servicedesk-stats/internal/gateway"
	"github.com/naka-gawa/servicedesk-stats/internal/usecase"
)

const threeIssues = `{"results":[
	{"type":"problem","priority":"high","created":"2024-01-01T00:00:00Z","updated":"2024-01-01T02:00:00Z","satisfaction_rating":{"score":5}},
	{"type":"question","priority":"normal","created":"2024-01-01T00:00:00Z","updated":"2024-01-01T04:00:00Z","satisfaction_rating":{"score":2}},
	{"type":"task","priority":"low","created":"2024-01-01T00:00:00Z","updated":"2024-01-01T01:00:00Z"}
]}`

// setupTestServer wires the real gateway and use case against a fake data source.
func setupTestServer(t *testing.T, source http.HandlerFunc) *httptest.Server {
	upstream := httptest.NewServer(source)
	t.Cleanup(upstream.Close)

	logger := log.New(io.Discard, "", 0)
	fetcher, err := gateway.NewServiceDeskGateway(gateway.Options{
		SourceURL: upstream.URL,
		Timeout:   5 * time.Second,
	}, logger)
	require.NoError(t, err)

	h := New(usecase.NewAggregator(fetcher, logger), logger)
	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)
	return server
}

func okSource(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp
}

func TestGetTypePercentages(t *testing.T) {
	server := setupTestServer(t, okSource(threeIssues))

	var body map[string]float64
	resp := getJSON(t, server.URL+"/api/type-of-issues-percentage", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Len(t, body, 3)
	assert.InDelta(t, 33.3333, body["problem"], 1e-3)
	assert.InDelta(t, 33.3333, body["questions"], 1e-3)
	assert.InDelta(t, 33.3333, body["tasks"], 1e-3)
	assert.InDelta(t, 100, body["problem"]+body["questions"]+body["tasks"], 1e-9)
}

func TestGetTypePercentages_EmptyResults(t *testing.T) {
	server := setupTestServer(t, okSource(`{"results":[]}`))

	var body map[string]float64
	resp := getJSON(t, server.URL+"/api/type-of-issues-percentage", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]float64{"problem": 0, "questions": 0, "tasks": 0}, body)
}

func TestFetchFailures(t *testing.T) {
	testCases := []struct {
		name   string
		source http.HandlerFunc
		path   string
	}{
		{
			name: "source returns 500",
			source: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			path: "/api/type-of-issues-percentage",
		},
		{
			name:   "source returns malformed json",
			source: okSource(`not json`),
			path:   "/api/type-of-issues-percentage",
		},
		{
			name: "source drops the connection",
			source: func(w http.ResponseWriter, r *http.Request) {
				hj, ok := w.(http.Hijacker)
				require.True(t, ok)
				conn, _, err := hj.Hijack()
				require.NoError(t, err)
				conn.Close()
			},
			path: "/api/type-of-issues-percentage",
		},
		{
			name: "summary with failing source",
			source: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			path: "/api/summary",
		},
		{
			name: "raw data with failing source",
			source: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			path: "/api/data",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := setupTestServer(t, tc.source)

			var body map[string]string
			resp := getJSON(t, server.URL+tc.path, &body)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, map[string]string{"error": "Issue fetching data..."}, body)
		})
	}
}

func TestGetSummary(t *testing.T) {
	server := setupTestServer(t, okSource(threeIssues))

	var body struct {
		Total                              int            `json:"total"`
		PriorityPercentages                map[string]any `json:"priority_percentages"`
		TypePercentages                    map[string]any `json:"type_percentages"`
		AverageResolutionHours             float64        `json:"average_resolution_hours"`
		LongestResolutionSatisfactionScore *float64       `json:"longest_resolution_satisfaction_score"`
	}
	resp := getJSON(t, server.URL+"/api/summary", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Total)
	assert.Len(t, body.PriorityPercentages, 3)
	assert.Len(t, body.TypePercentages, 3)
	assert.Equal(t, 2.0, body.AverageResolutionHours)
	require.NotNil(t, body.LongestResolutionSatisfactionScore)
	assert.Equal(t, 2.0, *body.LongestResolutionSatisfactionScore)
}

func TestGetData(t *testing.T) {
	server := setupTestServer(t, okSource(threeIssues))

	var body struct {
		Results []map[string]any `json:"results"`
	}
	resp := getJSON(t, server.URL+"/api/data", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Results, 3)
	assert.Equal(t, "problem", body.Results[0]["type"])
	assert.NotContains(t, body.Results[2], "satisfaction_rating")
}

func TestGetData_PassesUnmodeledFieldsThrough(t *testing.T) {
	payload := `{"results":[{"id":17,"subject":"printer","status":"solved","type":"problem","priority":"high","created":"2024-01-01T00:00:00Z","updated":"2024-01-01T01:00:00Z"}],"meta":{"count":1}}`
	server := setupTestServer(t, okSource(payload))

	resp, err := http.Get(server.URL + "/api/data")
	require.NoError(t, err)
	defer resp.Body.Close()
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, payload, string(got))
}

func TestZoneLessTimestamps(t *testing.T) {
	payload := `{"results":[
		{"type":"problem","priority":"high","created":"2024-01-01T00:00:00","updated":"2024-01-01T03:00:00","satisfaction_rating":{"score":4}},
		{"type":"task","priority":"low","created":"2024-01-01T00:00:00Z","updated":"2024-01-01T01:00:00Z"}
	]}`
	server := setupTestServer(t, okSource(payload))

	var percentages map[string]float64
	resp := getJSON(t, server.URL+"/api/type-of-issues-percentage", &percentages)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]float64{"problem": 50, "questions": 0, "tasks": 50}, percentages)

	var summary struct {
		AverageResolutionHours             float64  `json:"average_resolution_hours"`
		LongestResolutionSatisfactionScore *float64 `json:"longest_resolution_satisfaction_score"`
	}
	resp = getJSON(t, server.URL+"/api/summary", &summary)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3.0, summary.AverageResolutionHours)
	require.NotNil(t, summary.LongestResolutionSatisfactionScore)
	assert.Equal(t, 4.0, *summary.LongestResolutionSatisfactionScore)
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, okSource(threeIssues))

	for _, path := range []string{"/health", "/api/data", "/api/summary", "/api/type-of-issues-percentage"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(server.URL+path, "application/json", nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Method not allowed", body["error"])
		})
	}
}

func TestRequestID(t *testing.T) {
	server := setupTestServer(t, okSource(threeIssues))

	var body map[string]string
	resp := getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, "healthy", body["status"])

	_, err := uuid.Parse(resp.Header.Get("X-Request-ID"))
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}
