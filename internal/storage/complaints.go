package storage

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"urbaneye/backend/internal/models"
)

// sortColumns whitelists caller-chosen sort fields.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"severity":  "severity",
	"status":    "status",
	"category":  "category",
	"priority":  "priority",
	"upvotes":   "upvotes",
}

func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		s.Logger.Error("failed to create complaint",
			zap.String("user_id", complaint.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// UpdateComplaintFields applies a partial update as one atomic
// single-document write.
func (s *Service) UpdateComplaintFields(id string, fields map[string]any) error {
	res := s.DB.Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		s.Logger.Error("failed to update complaint", zap.String("id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteComplaint(id string) error {
	res := s.DB.Delete(&models.Complaint{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListComplaints returns one page of matching complaints plus the total
// match count for pagination.
func (s *Service) ListComplaints(filter ListFilter) ([]models.Complaint, int64, error) {
	q := s.DB.Model(&models.Complaint{})

	if filter.Division != "" {
		q = q.Where("division = ?", filter.Division)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?",
			pattern, pattern, pattern)
	}
	if filter.DateFrom != nil {
		q = q.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	offset := (filter.Page - 1) * filter.Limit

	var complaints []models.Complaint
	err := q.Order(fmt.Sprintf("%s %s", column, direction)).
		Offset(offset).
		Limit(filter.Limit).
		Find(&complaints).Error
	if err != nil {
		s.Logger.Error("failed to list complaints", zap.Error(err))
		return nil, 0, err
	}

	return complaints, total, nil
}

// ComplaintStats aggregates counts by status, category and severity,
// optionally scoped to one division, plus the most recent complaints.
func (s *Service) ComplaintStats(division string, recentLimit int) (*Stats, error) {
	scoped := func() *gorm.DB {
		q := s.DB.Model(&models.Complaint{})
		if division != "" {
			q = q.Where("division = ?", division)
		}
		return q
	}

	var statusRows []CountRow
	if err := scoped().
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, row := range statusRows {
		stats.Overview.Total += row.Count
		switch row.Key {
		case models.StatusPending:
			stats.Overview.Pending = row.Count
		case models.StatusInProgress:
			stats.Overview.InProgress = row.Count
		case models.StatusResolved:
			stats.Overview.Resolved = row.Count
		case models.StatusRejected:
			stats.Overview.Rejected = row.Count
		case models.StatusClosed:
			stats.Overview.Closed = row.Count
		}
	}

	if err := scoped().
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats.ByCategory).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Select("severity AS key, COUNT(*) AS count").
		Group("severity").
		Order("count DESC").
		Scan(&stats.BySeverity).Error; err != nil {
		return nil, err
	}

	if err := scoped().
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&stats.Recent).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
