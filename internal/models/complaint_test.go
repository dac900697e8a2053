package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbaneye/backend/internal/models"
)

func TestComplaintBeforeCreate_GeneratesUUID(t *testing.T) {
	complaint := &models.Complaint{Title: "Pothole"}
	assert.Empty(t, complaint.ID)

	err := complaint.BeforeCreate(nil)
	require.NoError(t, err)
	require.NotEmpty(t, complaint.ID)

	_, parseErr := uuid.Parse(complaint.ID)
	assert.NoError(t, parseErr, "generated ID must be a valid UUID")
}

func TestComplaintBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	complaint := &models.Complaint{ID: existing}

	require.NoError(t, complaint.BeforeCreate(nil))
	assert.Equal(t, existing, complaint.ID)
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{"Low", "Medium", "High", "Critical"} {
		assert.True(t, models.ValidSeverity(s), s)
	}
	assert.False(t, models.ValidSeverity("Extreme"))
	assert.False(t, models.ValidSeverity(""))
	assert.False(t, models.ValidSeverity("low"))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, models.ValidCategory("Roads"))
	assert.True(t, models.ValidCategory("Waste Management"))
	assert.False(t, models.ValidCategory("Weather"))
	assert.False(t, models.ValidCategory(""))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"Pending", "In Progress", "Resolved", "Rejected", "Closed"} {
		assert.True(t, models.ValidStatus(s), s)
	}
	assert.False(t, models.ValidStatus("Done"))
}
