package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Complaint statuses. Pending is the initial state; Resolved, Rejected and
// Closed are terminal.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
	StatusClosed     = "Closed"
)

// Severity levels, ordered by urgency.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Categories accepted on submission.
var Categories = []string{
	"Roads",
	"Street Lighting",
	"Water Supply",
	"Drainage",
	"Waste Management",
	"Public Transport",
	"Parks & Recreation",
	"Traffic",
	"Electricity",
	"Other",
}

// Complaint is the central persisted entity: one citizen-reported issue
// routed to a division and driven through the status state machine.
type Complaint struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `gorm:"index" json:"category"`
	Severity    string `gorm:"index" json:"severity"`
	Status      string `gorm:"index;default:Pending" json:"status"`
	Location    string `json:"location"`

	// Geographic point, [longitude, latitude] convention.
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`

	// Division is set once at creation and is the sole admin-visibility
	// partition key.
	Division string `gorm:"index" json:"division"`

	UserID     string `gorm:"index" json:"userId"`
	AssignedTo string `json:"assignedTo,omitempty"`

	AdminNotes      string `json:"adminNotes,omitempty"`
	ResolutionNotes string `json:"resolutionNotes,omitempty"`

	Priority            int        `gorm:"default:3" json:"priority"`
	EstimatedResolution *time.Time `json:"estimatedResolution,omitempty"`
	ActualResolution    *time.Time `json:"actualResolution,omitempty"`

	Tags     pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	IsPublic bool           `gorm:"default:true" json:"isPublic"`

	Upvotes   int `gorm:"default:0" json:"upvotes"`
	Downvotes int `gorm:"default:0" json:"downvotes"`

	// Uploaded photo, stored raw. Read responses replace this with a
	// base64 data URL (or null if conversion fails).
	Photo     []byte `gorm:"type:bytea" json:"-"`
	PhotoMime string `json:"-"`

	Attachments []Attachment `gorm:"type:jsonb;serializer:json" json:"attachments,omitempty"`
	MLAnalysis  *MLAnalysis  `gorm:"type:jsonb;serializer:json" json:"mlAnalysis,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attachment describes one extra file linked to a complaint.
type Attachment struct {
	Filename   string    `json:"filename"`
	FileID     string    `json:"fileId"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// MLAnalysis is the advisory verdict attached after photo ingestion.
// SuggestedSeverity/SuggestedCategory never replace the authoritative
// Severity/Category fields on their own; the lifecycle manager decides.
type MLAnalysis struct {
	Detected           bool          `json:"detected"`
	DetectionType      string        `json:"detectionType"` // pothole, garbage, none, other
	DetectionCount     int           `json:"detectionCount"`
	Confidence         float64       `json:"confidence"` // max per-detection confidence, [0,1]
	SuggestedSeverity  string        `json:"suggestedSeverity,omitempty"`
	SuggestedCategory  string        `json:"suggestedCategory,omitempty"`
	SeverityScore      float64       `json:"severityScore"` // [0,10]
	Reasoning          string        `json:"reasoning,omitempty"`
	BoundingBoxes      []BoundingBox `json:"boundingBoxes,omitempty"`
	Metrics            MLMetrics     `json:"metrics"`
	ProcessedAt        time.Time     `json:"processedAt"`
	MLServiceAvailable bool          `json:"mlServiceAvailable"`
}

// BoundingBox is one detection region in image pixel space.
type BoundingBox struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MLMetrics aggregates detection geometry across all boxes.
type MLMetrics struct {
	TotalArea      float64 `json:"totalArea"`
	AreaPercentage float64 `json:"areaPercentage"`
	MaxConfidence  float64 `json:"maxConfidence"`
	Count          int     `json:"count"`
}

// BeforeCreate generates a new UUID when the ID is not set yet.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ValidSeverity reports whether s is one of the four severity levels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidCategory reports whether c is an accepted category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known complaint status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected, StatusClosed:
		return true
	}
	return false
}
