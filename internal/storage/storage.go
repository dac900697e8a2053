package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"urbaneye/backend/internal/models"
)

// ListFilter narrows a complaint listing. Zero values mean "no filter".
type ListFilter struct {
	Division string
	UserID   string
	Status   string
	Category string
	Severity string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// CountRow is one bucket of an aggregation (category or severity).
type CountRow struct {
	Key   string `gorm:"column:key" json:"key"`
	Count int64  `gorm:"column:count" json:"count"`
}

// StatusCounts is the per-status breakdown for the stats overview.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
	Closed     int64 `json:"closed"`
}

// Stats is the aggregate view served by the overview endpoint.
type Stats struct {
	Overview   StatusCounts       `json:"overview"`
	ByCategory []CountRow         `json:"byCategory"`
	BySeverity []CountRow         `json:"bySeverity"`
	Recent     []models.Complaint `json:"recent"`
}

// Storage is everything the lifecycle manager and handlers need from the
// record store.
type Storage interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	CountUsersByEmail(email string) (int64, error)

	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	UpdateComplaintFields(id string, fields map[string]any) error
	DeleteComplaint(id string) error
	ListComplaints(filter ListFilter) ([]models.Complaint, int64, error)
	ComplaintStats(division string, recentLimit int) (*Stats, error)

	CachedStats(ctx context.Context, key string) (*Stats, bool)
	CacheStats(ctx context.Context, key string, stats *Stats, ttl time.Duration)
}

// Service backs Storage with PostgreSQL for records and Redis for the stats
// cache and the event bus channel.
type Service struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *zap.Logger
	Ctx    context.Context
}

// NewService constructs the storage service. Redis may be nil for CLI use.
func NewService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		DB:     db,
		Redis:  rdb,
		Logger: logger,
		Ctx:    context.Background(),
	}
}

// Migrate creates or updates the schema for all persisted models.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Complaint{},
	)
}
