// Package photo normalizes uploaded complaint images. The representation is
// decided exactly once at ingestion: a Blob either carries raw bytes or an
// already-encoded base64 payload, and every read path renders the same
// data-URL form from either.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"urbaneye/backend/internal/config"
)

var (
	ErrTooLarge     = errors.New("photo exceeds the 5MB size limit")
	ErrNotAnImage   = errors.New("only image files are allowed")
	ErrEmptyPayload = errors.New("photo payload is empty")
)

// Kind tags the two storable representations of a photo.
type Kind int

const (
	RawBytes Kind = iota
	Base64String
)

// Blob is a validated photo in one of the two representations.
type Blob struct {
	Kind  Kind
	Bytes []byte // set when Kind == RawBytes
	B64   string // set when Kind == Base64String
	Mime  string
}

// FromUpload validates a multipart upload and ingests it as raw bytes.
// Oversized or non-image files are rejected before anything is persisted.
func FromUpload(fh *multipart.FileHeader, data []byte) (*Blob, error) {
	if fh.Size > config.MaxPhotoSize || int64(len(data)) > config.MaxPhotoSize {
		return nil, ErrTooLarge
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, ErrNotAnImage
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return &Blob{Kind: RawBytes, Bytes: data, Mime: SniffMime(data)}, nil
}

// FromStored rebuilds a Blob from whatever the record store returned:
// raw bytes, or a base64 string (possibly already wrapped as a data URL).
func FromStored(raw []byte, mime string) *Blob {
	if len(raw) == 0 {
		return nil
	}
	// Some legacy rows hold a base64 or data-URL string in the byte column.
	if s := string(raw); strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ";base64,"); idx > 0 {
			return &Blob{Kind: Base64String, B64: s[idx+len(";base64,"):], Mime: s[len("data:"):idx]}
		}
	}
	if mime == "" {
		mime = SniffMime(raw)
	}
	return &Blob{Kind: RawBytes, Bytes: raw, Mime: mime}
}

// SniffMime classifies the image format from the first payload bytes,
// defaulting to JPEG when the signature is unrecognized.
func SniffMime(data []byte) string {
	if len(data) >= 4 {
		switch {
		case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
			return "image/png"
		case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
			return "image/jpeg"
		case data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46:
			return "image/gif"
		case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46:
			return "image/webp"
		}
	}
	return "image/jpeg"
}

// DataURL renders the blob as a base64 data URL. It is total: on any
// malformed input it returns ("", false) and the caller nulls the field
// instead of corrupting the response.
func (b *Blob) DataURL() (string, bool) {
	if b == nil {
		return "", false
	}
	switch b.Kind {
	case RawBytes:
		if len(b.Bytes) == 0 {
			return "", false
		}
		mime := b.Mime
		if mime == "" {
			mime = SniffMime(b.Bytes)
		}
		return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(b.Bytes)), true
	case Base64String:
		if b.B64 == "" {
			return "", false
		}
		decoded, err := base64.StdEncoding.DecodeString(b.B64)
		if err != nil {
			return "", false
		}
		mime := b.Mime
		if mime == "" {
			mime = SniffMime(decoded)
		}
		return fmt.Sprintf("data:%s;base64,%s", mime, b.B64), true
	}
	return "", false
}
