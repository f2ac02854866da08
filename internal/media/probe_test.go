package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30/1"},
    {"codec_type": "audio", "codec_name": "aac", "channels": 2, "sample_rate": "48000"},
    {"codec_type": "audio", "codec_name": "ac3", "channels": 6, "sample_rate": "48000"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.500000", "bit_rate": "5000000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(sampleProbe))
	require.NoError(t, err)

	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", info["format"])
	assert.Equal(t, 12.5, info["duration_seconds"])
	assert.Equal(t, int64(5000000), info["bit_rate"])
	assert.Equal(t, "h264", info["video_codec"])
	assert.Equal(t, 1920, info["width"])
	assert.Equal(t, "30/1", info["frame_rate"])
	assert.Equal(t, "aac", info["audio_codec"], "first audio stream wins")
	assert.Equal(t, 2, info["channels"])
	assert.Equal(t, int64(48000), info["sample_rate"])
	assert.Equal(t, true, info["has_audio"])
	assert.Equal(t, true, info["has_video"])
}

func TestParseProbeAudioOnly(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"N/A"}}`))
	require.NoError(t, err)

	assert.Equal(t, false, info["has_video"])
	assert.NotContains(t, info, "duration_seconds")
	assert.NotContains(t, info, "width")
}

func TestParseProbeInvalid(t *testing.T) {
	_, err := parseProbe([]byte("not json"))
	assert.ErrorIs(t, err, apperror.ErrExternalTool)
}

func TestProbeRunsFFprobe(t *testing.T) {
	exec := &fakeExecutor{output: sampleProbe}
	enc := newTestEncoder(exec, Limits{})

	info, err := enc.Probe(context.Background(), "clip.mp4", models.MediaVideo)
	require.NoError(t, err)
	assert.Equal(t, "h264", info["video_codec"])

	require.Len(t, exec.calls, 1)
	assert.Equal(t, "ffprobe", exec.calls[0][0])
	assert.Equal(t, "clip.mp4", exec.calls[0][len(exec.calls[0])-1])
}

func TestProbeFailure(t *testing.T) {
	enc := newTestEncoder(&fakeExecutor{err: errors.New("not found")}, Limits{})
	_, err := enc.Probe(context.Background(), "clip.mp4", models.MediaVideo)
	assert.ErrorIs(t, err, apperror.ErrExternalTool)
}

func TestProbeMissingFFprobe(t *testing.T) {
	exec := &fakeExecutor{missing: map[string]bool{"ffprobe": true}}
	enc := newTestEncoder(exec, Limits{})

	_, err := enc.Probe(context.Background(), "clip.mp4", models.MediaVideo)
	assert.ErrorIs(t, err, apperror.ErrExternalTool)
	assert.Equal(t, apperror.KindExternalTool, apperror.KindOf(err))
	assert.Empty(t, exec.calls)
}

func TestProbeImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 8, 5)

	enc := newTestEncoder(&fakeExecutor{}, Limits{})
	info, err := enc.Probe(context.Background(), path, models.MediaImage)
	require.NoError(t, err)
	assert.Equal(t, 8, info["width"])
	assert.Equal(t, 5, info["height"])
	assert.Equal(t, "png", info["format"])

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))
	_, err = enc.Probe(context.Background(), path, models.MediaImage)
	assert.ErrorIs(t, err, apperror.ErrUnsupportedFormat)
}
