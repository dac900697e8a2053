package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"urbaneye/backend/internal/models"
)

func testHandler() *Handler {
	return &Handler{Logger: zap.NewNop()}
}

func TestView_PhotoRendersAsDataURL(t *testing.T) {
	h := testHandler()
	c := &models.Complaint{
		ID:        "c1",
		Title:     "Pothole",
		Photo:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A},
		PhotoMime: "image/png",
	}

	v := h.view(c)
	require.NotNil(t, v.Photo)
	assert.True(t, strings.HasPrefix(*v.Photo, "data:image/png;base64,"))
}

func TestView_NoPhotoSerializesAsNull(t *testing.T) {
	h := testHandler()
	v := h.view(&models.Complaint{ID: "c1", Title: "Pothole"})

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	value, present := decoded["photo"]
	assert.True(t, present, "photo key must appear in read responses")
	assert.Nil(t, value)
}

// Corrupt stored bytes null the photo field; the rest of the record is
// served untouched.
func TestView_CorruptPhotoNulledNotFatal(t *testing.T) {
	h := testHandler()
	c := &models.Complaint{
		ID:    "c1",
		Title: "Pothole",
		Photo: []byte("data:image/png;base64,!!!corrupt!!!"),
	}

	v := h.view(c)
	assert.Nil(t, v.Photo)
	assert.Equal(t, "Pothole", v.Title)
}
