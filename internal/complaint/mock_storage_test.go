package complaint

import (
	"context"
	"time"

	"github.com/lib/pq"

	"urbaneye/backend/internal/models"
	"urbaneye/backend/internal/storage"
)

// mockStorage is an in-memory Storage for lifecycle tests.
type mockStorage struct {
	users      map[string]*models.User
	complaints map[string]*models.Complaint

	listResult []models.Complaint
	listTotal  int64
	lastFilter storage.ListFilter

	statsResult   *storage.Stats
	statsDivision string

	cacheHit  *storage.Stats
	cachedKey string

	createErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		users:      make(map[string]*models.User),
		complaints: make(map[string]*models.Complaint),
	}
}

func (m *mockStorage) CreateUser(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockStorage) GetUserByID(id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockStorage) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockStorage) UpdateUser(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockStorage) CountUsersByEmail(email string) (int64, error) {
	if _, err := m.GetUserByEmail(email); err == nil {
		return 1, nil
	}
	return 0, nil
}

func (m *mockStorage) CreateComplaint(complaint *models.Complaint) error {
	if m.createErr != nil {
		return m.createErr
	}
	if complaint.ID == "" {
		complaint.ID = "complaint-" + time.Now().Format("150405.000000000")
	}
	complaint.CreatedAt = time.Now()
	m.complaints[complaint.ID] = complaint
	return nil
}

func (m *mockStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockStorage) UpdateComplaintFields(id string, fields map[string]any) error {
	c, ok := m.complaints[id]
	if !ok {
		return storage.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case "status":
			c.Status = value.(string)
		case "admin_notes":
			c.AdminNotes = value.(string)
		case "resolution_notes":
			c.ResolutionNotes = value.(string)
		case "assigned_to":
			c.AssignedTo = value.(string)
		case "actual_resolution":
			t := value.(time.Time)
			c.ActualResolution = &t
		case "title":
			c.Title = value.(string)
		case "description":
			c.Description = value.(string)
		case "category":
			c.Category = value.(string)
		case "severity":
			c.Severity = value.(string)
		case "location":
			c.Location = value.(string)
		case "tags":
			c.Tags = value.(pq.StringArray)
		}
	}
	return nil
}

func (m *mockStorage) DeleteComplaint(id string) error {
	if _, ok := m.complaints[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.complaints, id)
	return nil
}

func (m *mockStorage) ListComplaints(filter storage.ListFilter) ([]models.Complaint, int64, error) {
	m.lastFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockStorage) ComplaintStats(division string, recentLimit int) (*storage.Stats, error) {
	m.statsDivision = division
	if m.statsResult != nil {
		return m.statsResult, nil
	}
	return &storage.Stats{}, nil
}

func (m *mockStorage) CachedStats(ctx context.Context, key string) (*storage.Stats, bool) {
	m.cachedKey = key
	if m.cacheHit != nil {
		return m.cacheHit, true
	}
	return nil, false
}

func (m *mockStorage) CacheStats(ctx context.Context, key string, stats *storage.Stats, ttl time.Duration) {
}

// mockAnalyzer returns a canned verdict and records the data URL it saw.
type mockAnalyzer struct {
	result   *models.MLAnalysis
	lastSeen string
	calls    int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, dataURL string) *models.MLAnalysis {
	m.calls++
	m.lastSeen = dataURL
	return m.result
}
