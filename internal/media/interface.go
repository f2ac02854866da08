package media

import (
	"context"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Encoder turns a file on disk into an upload-ready payload.
type Encoder interface {
	Encode(ctx context.Context, path string, t models.MediaType) (*Payload, error)
	Probe(ctx context.Context, path string, t models.MediaType) (map[string]any, error)
}

// Payload is an encoded media file.
type Payload struct {
	MIMEType       string
	Data           []byte
	Base64         string
	SizeBytes      int64
	Reencoded      bool
	ExtractedAudio bool
}

// DataURL renders the payload as a data: URL.
func (p *Payload) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Base64
}

// Limits bounds file sizes per media type, in bytes.
type Limits struct {
	MaxImageBytes     int64
	MaxAudioBytes     int64
	MaxVideoBytes     int64
	ReencodeThreshold int64
}

// Max returns the byte limit for t.
func (l Limits) Max(t models.MediaType) int64 {
	switch t {
	case models.MediaImage:
		return l.MaxImageBytes
	case models.MediaAudio:
		return l.MaxAudioBytes
	case models.MediaVideo:
		return l.MaxVideoBytes
	}
	return 0
}
