package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func analyzeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze_Success(t *testing.T) {
	srv := analyzeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["image"], "data:image/png;base64,")

		json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"detected":       true,
			"detectionType":  "pothole",
			"detectionCount": 2,
			"detections": []map[string]any{
				{"confidence": 0.42, "boundingBox": map[string]float64{"x1": 1, "y1": 2, "x2": 3, "y2": 4}},
				{"confidence": 0.91, "boundingBox": map[string]float64{"x1": 5, "y1": 6, "x2": 7, "y2": 8}},
			},
			"suggestedSeverity": "High",
			"suggestedCategory": "Roads",
			"severityScore":     7.5,
			"reasoning":         "two potholes covering a large area",
		})
	})

	c := New(srv.URL, zap.NewNop())
	analysis := c.Analyze(context.Background(), "data:image/png;base64,aGk=")

	require.NotNil(t, analysis)
	assert.True(t, analysis.Detected)
	assert.True(t, analysis.MLServiceAvailable)
	assert.Equal(t, "pothole", analysis.DetectionType)
	assert.Equal(t, 2, analysis.DetectionCount)
	assert.Equal(t, "High", analysis.SuggestedSeverity)
	assert.Len(t, analysis.BoundingBoxes, 2)
	assert.InDelta(t, 0.91, analysis.Confidence, 1e-9,
		"confidence is the maximum per-detection confidence, not an average")
}

func TestAnalyze_ServiceReportsFailure(t *testing.T) {
	srv := analyzeServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "model not loaded"})
	})

	c := New(srv.URL, zap.NewNop())
	analysis := c.Analyze(context.Background(), "data:image/png;base64,aGk=")

	require.NotNil(t, analysis)
	assert.False(t, analysis.Detected)
	assert.Equal(t, "none", analysis.DetectionType)
	assert.False(t, analysis.MLServiceAvailable)
}

func TestAnalyze_HTTPError(t *testing.T) {
	srv := analyzeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := New(srv.URL, zap.NewNop())
	analysis := c.Analyze(context.Background(), "data:image/png;base64,aGk=")

	require.NotNil(t, analysis)
	assert.False(t, analysis.Detected)
	assert.False(t, analysis.MLServiceAvailable)
}

func TestAnalyze_ServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection refused from here on

	c := New(url, zap.NewNop())
	analysis := c.Analyze(context.Background(), "data:image/png;base64,aGk=")

	require.NotNil(t, analysis, "the adapter never errors past the boundary")
	assert.False(t, analysis.Detected)
	assert.Equal(t, "none", analysis.DetectionType)
	assert.False(t, analysis.MLServiceAvailable)
}

func TestAnalyze_CallerContextCancellation(t *testing.T) {
	srv := analyzeServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	c := New(srv.URL, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis := c.Analyze(ctx, "data:image/png;base64,aGk=")
	require.NotNil(t, analysis)
	assert.False(t, analysis.MLServiceAvailable)
}

func TestHealthy(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want bool
	}{
		{"healthy and loaded", map[string]any{"status": "healthy", "model_loaded": true}, true},
		{"healthy but model missing", map[string]any{"status": "healthy", "model_loaded": false}, false},
		{"degraded", map[string]any{"status": "degraded", "model_loaded": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := analyzeServer(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/health", r.URL.Path)
				json.NewEncoder(w).Encode(tt.body)
			})
			c := New(srv.URL, zap.NewNop())
			assert.Equal(t, tt.want, c.Healthy(context.Background()))
		})
	}
}

func TestHealthy_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, zap.NewNop())
	assert.False(t, c.Healthy(context.Background()))
}
