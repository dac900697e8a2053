// Package mlclient talks to the external image-analysis service. The service
// is advisory: every failure mode collapses into a neutral fallback verdict
// so complaint submission never depends on it.
package mlclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/models"
)

// Detection is one region the model flagged in the analyzed image.
type Detection struct {
	Confidence  float64            `json:"confidence"`
	BoundingBox models.BoundingBox `json:"boundingBox"`
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Success           bool             `json:"success"`
	Error             string           `json:"error"`
	Detected          bool             `json:"detected"`
	DetectionType     string           `json:"detectionType"`
	DetectionCount    int              `json:"detectionCount"`
	Detections        []Detection      `json:"detections"`
	SuggestedSeverity string           `json:"suggestedSeverity"`
	SuggestedCategory string           `json:"suggestedCategory"`
	SeverityScore     float64          `json:"severityScore"`
	Reasoning         string           `json:"reasoning"`
	Metrics           models.MLMetrics `json:"metrics"`
	ProcessedAt       string           `json:"processedAt"`
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Client is the adapter in front of the ML service.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.MLAnalyzeTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: client, logger: logger}
}

// Fallback is the neutral verdict used whenever the service is unreachable,
// times out, or reports a failure. The pipeline proceeds with the
// user-supplied severity and category.
func Fallback() *models.MLAnalysis {
	return &models.MLAnalysis{
		Detected:           false,
		DetectionType:      "none",
		ProcessedAt:        time.Now(),
		MLServiceAvailable: false,
	}
}

// Analyze sends a data-URL encoded image for analysis. The timeout is
// enforced on our side through ctx as well as the client timeout, since a
// network partition will not honor the callee's own limit. Analyze never
// returns an error to the caller.
func (c *Client) Analyze(ctx context.Context, dataURL string) *models.MLAnalysis {
	ctx, cancel := context.WithTimeout(ctx, config.MLAnalyzeTimeout)
	defer cancel()

	var out analyzeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Image: dataURL}).
		SetResult(&out).
		Post("/analyze")

	if err != nil {
		c.logger.Warn("ML analysis call failed, using fallback", zap.Error(err))
		return Fallback()
	}
	if resp.IsError() || !out.Success {
		c.logger.Warn("ML service reported failure, using fallback",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", out.Error),
		)
		return Fallback()
	}

	analysis := formatAnalysis(&out)
	c.logger.Info("ML analysis completed",
		zap.Bool("detected", analysis.Detected),
		zap.String("type", analysis.DetectionType),
		zap.String("suggested_severity", analysis.SuggestedSeverity),
		zap.Int("count", analysis.DetectionCount),
	)
	return analysis
}

// Healthy probes the service's lightweight health endpoint. It is off the
// submission path and uses its own short timeout.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, config.MLHealthTimeout)
	defer cancel()

	var out healthResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/health")

	if err != nil || resp.IsError() {
		c.logger.Warn("ML service health check failed", zap.Error(err))
		return false
	}
	return out.Status == "healthy" && out.ModelLoaded
}

// formatAnalysis flattens the wire response for storage. Confidence is the
// maximum per-detection confidence, not an average.
func formatAnalysis(data *analyzeResponse) *models.MLAnalysis {
	confidence := 0.0
	boxes := make([]models.BoundingBox, 0, len(data.Detections))
	for _, d := range data.Detections {
		if d.Confidence > confidence {
			confidence = d.Confidence
		}
		boxes = append(boxes, d.BoundingBox)
	}

	processedAt := time.Now()
	if data.ProcessedAt != "" {
		if t, err := time.Parse(time.RFC3339, data.ProcessedAt); err == nil {
			processedAt = t
		}
	}

	return &models.MLAnalysis{
		Detected:           data.Detected,
		DetectionType:      data.DetectionType,
		DetectionCount:     data.DetectionCount,
		Confidence:         confidence,
		SuggestedSeverity:  data.SuggestedSeverity,
		SuggestedCategory:  data.SuggestedCategory,
		SeverityScore:      data.SeverityScore,
		Reasoning:          data.Reasoning,
		BoundingBoxes:      boxes,
		Metrics:            data.Metrics,
		ProcessedAt:        processedAt,
		MLServiceAvailable: true,
	}
}
