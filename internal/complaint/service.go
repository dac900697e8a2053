// Package complaint implements the complaint lifecycle: creation with photo
// ingestion and ML enrichment, status transitions, filtered listing, partial
// updates, deletion and statistics.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"urbaneye/backend/internal/auth"
	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/events"
	"urbaneye/backend/internal/models"
	"urbaneye/backend/internal/photo"
	"urbaneye/backend/internal/storage"
)

// Analyzer is the ML advisor contract the lifecycle manager depends on.
// Implementations must absorb every failure into a fallback verdict.
type Analyzer interface {
	Analyze(ctx context.Context, dataURL string) *models.MLAnalysis
}

// Service orchestrates the complaint lifecycle.
type Service struct {
	Storage  storage.Storage
	Analyzer Analyzer
	Bus      *events.Bus
	Logger   *zap.Logger
}

func NewService(s storage.Storage, analyzer Analyzer, bus *events.Bus, logger *zap.Logger) *Service {
	return &Service{Storage: s, Analyzer: analyzer, Bus: bus, Logger: logger}
}

// CreateInput carries a validated-enough submission into the lifecycle.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Severity    string
	Location    string
	Division    string
	Longitude   *float64
	Latitude    *float64
	Tags        []string
	Photo       *photo.Blob
}

// Create validates the submission, resolves the division, runs the photo
// through the ML advisor and persists the complaint in Pending state.
//
// Override policy (pinned): when the advisor reports detected=true, its
// suggested severity and category replace the user-supplied values; on
// detected=false or advisor failure the user values persist unchanged.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.Complaint, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	division, err := s.resolveDivision(actor.UserID, in.Division)
	if err != nil {
		return nil, err
	}

	severity := in.Severity
	category := in.Category

	var photoBytes []byte
	var photoMime string
	var analysis *models.MLAnalysis

	if in.Photo != nil {
		photoBytes = in.Photo.Bytes
		photoMime = in.Photo.Mime

		if dataURL, ok := in.Photo.DataURL(); ok && s.Analyzer != nil {
			analysis = s.Analyzer.Analyze(ctx, dataURL)
			if analysis.Detected {
				if models.ValidSeverity(analysis.SuggestedSeverity) {
					severity = analysis.SuggestedSeverity
				}
				if models.ValidCategory(analysis.SuggestedCategory) {
					category = analysis.SuggestedCategory
				}
			}
		}
	}

	complaint := &models.Complaint{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Severity:    severity,
		Status:      models.StatusPending,
		Location:    strings.TrimSpace(in.Location),
		Longitude:   in.Longitude,
		Latitude:    in.Latitude,
		Division:    division,
		UserID:      actor.UserID,
		Priority:    3,
		Tags:        pq.StringArray(in.Tags),
		IsPublic:    true,
		Photo:       photoBytes,
		PhotoMime:   photoMime,
		MLAnalysis:  analysis,
	}

	if err := s.Storage.CreateComplaint(complaint); err != nil {
		return nil, err
	}

	s.Logger.Info("complaint created",
		zap.String("id", complaint.ID),
		zap.String("division", complaint.Division),
		zap.String("severity", complaint.Severity),
		zap.Bool("ml_enriched", analysis != nil && analysis.Detected),
	)

	s.publish(events.Event{
		Type:        events.ComplaintCreated,
		ComplaintID: complaint.ID,
		Division:    complaint.Division,
		Title:       complaint.Title,
		Severity:    complaint.Severity,
		Status:      complaint.Status,
	})

	return complaint, nil
}

// Get returns a single complaint by id.
func (s *Service) Get(id string) (*models.Complaint, error) {
	complaint, err := s.Storage.GetComplaintByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return complaint, err
}

// Pagination describes the page served by List.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListResult bundles one page of complaints with its pagination block.
type ListResult struct {
	Complaints []models.Complaint `json:"complaints"`
	Pagination Pagination         `json:"pagination"`
}

// List returns complaints matching the filter. Admins with an assigned
// division are always pinned to it, whatever the filter asks for.
// A page past the end yields an empty list, not an error.
func (s *Service) List(actor auth.Actor, filter storage.ListFilter) (*ListResult, error) {
	if actor.IsAdmin() && actor.Division != "" {
		filter.Division = actor.Division
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = config.DefaultPageLimit
	}
	if filter.Limit > config.MaxPageLimit {
		filter.Limit = config.MaxPageLimit
	}

	complaints, total, err := s.Storage.ListComplaints(filter)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	if complaints == nil {
		complaints = []models.Complaint{}
	}

	return &ListResult{
		Complaints: complaints,
		Pagination: Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// StatusUpdate is an admin-driven state machine step.
type StatusUpdate struct {
	Status          string
	AdminNotes      string
	ResolutionNotes string
	AssignedTo      string
}

// UpdateStatus transitions the complaint through the state machine.
// Admin-only, division-gated. Transitioning to Resolved stamps the
// resolution time exactly once.
func (s *Service) UpdateStatus(actor auth.Actor, id string, update StatusUpdate) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	if !models.ValidStatus(update.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, update.Status)
	}

	complaint, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(actor, complaint) {
		return nil, fmt.Errorf("%w: outside your division", ErrForbidden)
	}
	if !CanTransition(complaint.Status, update.Status) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s",
			ErrValidation, complaint.Status, update.Status)
	}

	fields := map[string]any{"status": update.Status}
	if update.AdminNotes != "" {
		fields["admin_notes"] = update.AdminNotes
	}
	if update.ResolutionNotes != "" {
		fields["resolution_notes"] = update.ResolutionNotes
	}
	if update.AssignedTo != "" {
		fields["assigned_to"] = update.AssignedTo
	}
	if update.Status == models.StatusResolved && complaint.ActualResolution == nil {
		fields["actual_resolution"] = time.Now()
	}

	if err := s.Storage.UpdateComplaintFields(id, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldStatus := complaint.Status
	complaint, err = s.Get(id)
	if err != nil {
		return nil, err
	}

	if oldStatus != complaint.Status {
		s.publish(events.Event{
			Type:        events.StatusChanged,
			ComplaintID: complaint.ID,
			Division:    complaint.Division,
			Title:       complaint.Title,
			Severity:    complaint.Severity,
			Status:      complaint.Status,
			OldStatus:   oldStatus,
		})
	}

	return complaint, nil
}

// UpdateInput is a partial update of the editable descriptive fields.
// Nil pointers leave the field untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Severity    *string
	Location    *string
	Tags        []string
}

// Update edits descriptive fields. The owner may edit their own complaint;
// admins are division-gated. Status and admin notes go through UpdateStatus.
func (s *Service) Update(actor auth.Actor, id string, in UpdateInput) (*models.Complaint, error) {
	complaint, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.canModify(actor, complaint) {
		return nil, ErrForbidden
	}

	fields := map[string]any{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *in.Category)
		}
		fields["category"] = *in.Category
	}
	if in.Severity != nil {
		if !models.ValidSeverity(*in.Severity) {
			return nil, fmt.Errorf("%w: unknown severity %q", ErrValidation, *in.Severity)
		}
		fields["severity"] = *in.Severity
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Tags != nil {
		fields["tags"] = pq.StringArray(in.Tags)
	}
	if len(fields) == 0 {
		return complaint, nil
	}

	if err := s.Storage.UpdateComplaintFields(id, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(id)
}

// Delete removes the complaint permanently. Owner or division-gated admin.
func (s *Service) Delete(actor auth.Actor, id string) error {
	complaint, err := s.Get(id)
	if err != nil {
		return err
	}
	if !s.canModify(actor, complaint) {
		return ErrForbidden
	}
	if err := s.Storage.DeleteComplaint(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.Logger.Info("complaint deleted", zap.String("id", id), zap.String("by", actor.UserID))
	return nil
}

// Stats aggregates per-division counts, serving cached results when fresh.
// Admins with a division only see their own partition.
func (s *Service) Stats(ctx context.Context, actor auth.Actor, division string) (*storage.Stats, error) {
	if actor.IsAdmin() && actor.Division != "" {
		division = actor.Division
	}

	key := "stats:all"
	if division != "" {
		key = "stats:" + division
	}
	if cached, ok := s.Storage.CachedStats(ctx, key); ok {
		return cached, nil
	}

	stats, err := s.Storage.ComplaintStats(division, config.RecentComplaints)
	if err != nil {
		return nil, err
	}
	s.Storage.CacheStats(ctx, key, stats, config.StatsCacheTTL)
	return stats, nil
}

// canModify is the owner-or-admin conjunction: the reporter themselves, or
// an admin whose division is unset or matches the complaint's division.
func (s *Service) canModify(actor auth.Actor, complaint *models.Complaint) bool {
	if actor.UserID != "" && actor.UserID == complaint.UserID {
		return true
	}
	if actor.IsAdmin() {
		return actor.Division == "" || actor.Division == complaint.Division
	}
	return false
}

// resolveDivision picks the partition key: explicit value, then the
// reporter's home division, then the default.
func (s *Service) resolveDivision(userID, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	user, err := s.Storage.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: reporter not found", ErrValidation)
		}
		return "", err
	}
	if user.Division != "" {
		return user.Division, nil
	}
	return config.DefaultDivision, nil
}

func (s *Service) publish(e events.Event) {
	if s.Bus != nil {
		s.Bus.Publish(e)
	}
}

// validateCreate checks required submission fields, joining all failures
// into one message.
func validateCreate(in CreateInput) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Severity) == "" {
		missing = append(missing, "severity")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !models.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	if !models.ValidSeverity(in.Severity) {
		return fmt.Errorf("%w: unknown severity %q", ErrValidation, in.Severity)
	}
	if (in.Longitude == nil) != (in.Latitude == nil) {
		return fmt.Errorf("%w: coordinates require both longitude and latitude", ErrValidation)
	}
	return nil
}
