package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Encode validates path against the limits for t and returns its base64 payload.
// Oversized images are rejected before the JPEG re-encode step; the re-encode
// only applies to images above the (much smaller) re-encode threshold.
func (e *implEncoder) Encode(ctx context.Context, path string, t models.MediaType) (*Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.New(apperror.KindFileNotFound, "File not found: %s", path).WithPath(path)
		}
		return nil, apperror.Wrap(apperror.KindFileNotFound, err, "stat %s", path).WithPath(path)
	}

	mime, ok := MIMEType(path)
	if !ok || !ExtensionSet(t)[Ext(path)] {
		return nil, apperror.New(apperror.KindUnsupportedFormat, "Unsupported format for %s: %s", t, path).WithPath(path)
	}

	if t == models.MediaAudio && IsVideoContainer(path) {
		return e.encodeExtractedAudio(ctx, path, info.Size())
	}

	if err := e.checkSize(path, t, info.Size()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFileNotFound, err, "read %s", path).WithPath(path)
	}

	p := &Payload{MIMEType: mime, Data: data, SizeBytes: info.Size()}

	if t == models.MediaImage && e.limits.ReencodeThreshold > 0 && info.Size() > e.limits.ReencodeThreshold {
		e.logger.Debug(ctx, "Image %s is %d bytes (> %d), converting to JPEG", path, info.Size(), e.limits.ReencodeThreshold)
		jpg, err := reencodeJPEG(data)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindUnsupportedFormat, err, "decode image %s", path).WithPath(path)
		}
		p.Data = jpg
		p.MIMEType = "image/jpeg"
		p.Reencoded = true
	}

	p.Base64 = base64.StdEncoding.EncodeToString(p.Data)
	return p, nil
}

func (e *implEncoder) encodeExtractedAudio(ctx context.Context, path string, originalSize int64) (*Payload, error) {
	wavPath, err := e.extractAudio(ctx, path)
	if err != nil {
		return nil, err
	}
	defer e.cleanupTempFile(ctx, wavPath)

	info, err := os.Stat(wavPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindExternalTool, err, "ffmpeg produced no audio for %s", path).WithPath(path)
	}
	if err := e.checkSize(path, models.MediaAudio, info.Size()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindExternalTool, err, "read extracted audio").WithPath(path)
	}

	return &Payload{
		MIMEType:       "audio/wav",
		Data:           data,
		Base64:         base64.StdEncoding.EncodeToString(data),
		SizeBytes:      originalSize,
		ExtractedAudio: true,
	}, nil
}

func (e *implEncoder) checkSize(path string, t models.MediaType, size int64) error {
	limit := e.limits.Max(t)
	if limit <= 0 || size <= limit {
		return nil
	}
	return apperror.New(apperror.KindSizeLimitExceeded,
		"%s %s exceeds max size (%.1fMB > %.1fMB)",
		t.Title(), path, float64(size)/(1024*1024), float64(limit)/(1024*1024)).WithPath(path)
}
