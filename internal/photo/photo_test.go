package photo_test

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/photo"
)

func uploadHeader(size int64, contentType string) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{
		Filename: "photo.png",
		Size:     size,
		Header:   header,
	}
}

func TestSniffMime(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"PNG signature", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, "image/png"},
		{"JPEG signature", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "image/jpeg"},
		{"GIF signature", []byte{0x47, 0x49, 0x46, 0x38, 0x39}, "image/gif"},
		{"RIFF container", []byte{0x52, 0x49, 0x46, 0x46, 0x00}, "image/webp"},
		{"unrecognized defaults to JPEG", []byte{0x00, 0x01, 0x02, 0x03, 0x04}, "image/jpeg"},
		{"too short defaults to JPEG", []byte{0x89}, "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, photo.SniffMime(tt.data))
		})
	}
}

func TestFromUpload_RejectsOversized(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF}
	_, err := photo.FromUpload(uploadHeader(config.MaxPhotoSize+1, "image/jpeg"), data)
	assert.ErrorIs(t, err, photo.ErrTooLarge)
}

func TestFromUpload_RejectsNonImage(t *testing.T) {
	data := []byte("%PDF-1.4")
	_, err := photo.FromUpload(uploadHeader(int64(len(data)), "application/pdf"), data)
	assert.ErrorIs(t, err, photo.ErrNotAnImage)
}

func TestFromUpload_RejectsEmptyPayload(t *testing.T) {
	_, err := photo.FromUpload(uploadHeader(0, "image/png"), nil)
	assert.ErrorIs(t, err, photo.ErrEmptyPayload)
}

func TestFromUpload_SniffsFormat(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	blob, err := photo.FromUpload(uploadHeader(int64(len(pngBytes)), "image/png"), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, photo.RawBytes, blob.Kind)
	assert.Equal(t, "image/png", blob.Mime)
}

func TestDataURL_PNGRoundTrip(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	blob, err := photo.FromUpload(uploadHeader(int64(len(pngBytes)), "image/png"), pngBytes)
	require.NoError(t, err)

	url, ok := blob.DataURL()
	require.True(t, ok)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pngBytes, decoded))
}

func TestFromStored_RawBytes(t *testing.T) {
	jpegBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	blob := photo.FromStored(jpegBytes, "")
	require.NotNil(t, blob)
	assert.Equal(t, photo.RawBytes, blob.Kind)
	assert.Equal(t, "image/jpeg", blob.Mime)

	url, ok := blob.DataURL()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

// Legacy rows may hold an already-wrapped data URL in the byte column; both
// representations must normalize to the same output.
func TestFromStored_DataURLString(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	encoded := base64.StdEncoding.EncodeToString(pngBytes)
	stored := []byte("data:image/png;base64," + encoded)

	blob := photo.FromStored(stored, "")
	require.NotNil(t, blob)
	assert.Equal(t, photo.Base64String, blob.Kind)
	assert.Equal(t, "image/png", blob.Mime)

	url, ok := blob.DataURL()
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,"+encoded, url)
}

func TestFromStored_Empty(t *testing.T) {
	assert.Nil(t, photo.FromStored(nil, ""))
	assert.Nil(t, photo.FromStored([]byte{}, "image/png"))
}

// DataURL is total: corrupt payloads yield ("", false), never a panic or a
// broken string.
func TestDataURL_CorruptBase64(t *testing.T) {
	blob := &photo.Blob{Kind: photo.Base64String, B64: "!!!not-base64!!!", Mime: "image/png"}
	url, ok := blob.DataURL()
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestDataURL_NilAndEmpty(t *testing.T) {
	var nilBlob *photo.Blob
	_, ok := nilBlob.DataURL()
	assert.False(t, ok)

	_, ok = (&photo.Blob{Kind: photo.RawBytes}).DataURL()
	assert.False(t, ok)
}
