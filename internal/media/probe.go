package media

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Probe returns technical metadata for path. Images are read with
// image.DecodeConfig; audio and video go through ffprobe.
func (e *implEncoder) Probe(ctx context.Context, path string, t models.MediaType) (map[string]any, error) {
	if t == models.MediaImage {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindFileNotFound, err, "read %s", path).WithPath(path)
		}
		info, err := imageInfo(data)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindUnsupportedFormat, err, "decode image header %s", path).WithPath(path)
		}
		return info, nil
	}

	if err := e.requireTool(e.ffprobe, path); err != nil {
		return nil, err
	}

	out, err := e.executor.Execute(ctx, e.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindExternalTool, err, "ffprobe %s", path).WithPath(path)
	}
	return parseProbe([]byte(out))
}

type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecName    string `json:"codec_name"`
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Channels     int    `json:"channels"`
		SampleRate   string `json:"sample_rate"`
	} `json:"streams"`
}

// parseProbe flattens ffprobe JSON into result metadata. ffprobe reports
// numbers as strings; unparsable values are omitted.
func parseProbe(data []byte) (map[string]any, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperror.Wrap(apperror.KindExternalTool, err, "parse ffprobe JSON")
	}

	info := map[string]any{}
	if raw.Format.FormatName != "" {
		info["format"] = raw.Format.FormatName
	}
	if d, ok := parseFloat(raw.Format.Duration); ok {
		info["duration_seconds"] = d
	}
	if br, ok := parseInt(raw.Format.BitRate); ok {
		info["bit_rate"] = br
	}

	hasVideo, hasAudio := false, false
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if hasVideo {
				continue
			}
			hasVideo = true
			info["video_codec"] = s.CodecName
			if s.Width > 0 && s.Height > 0 {
				info["width"] = s.Width
				info["height"] = s.Height
			}
			if s.AvgFrameRate != "" && s.AvgFrameRate != "0/0" {
				info["frame_rate"] = s.AvgFrameRate
			}
		case "audio":
			if hasAudio {
				continue
			}
			hasAudio = true
			info["audio_codec"] = s.CodecName
			if s.Channels > 0 {
				info["channels"] = s.Channels
			}
			if sr, ok := parseInt(s.SampleRate); ok {
				info["sample_rate"] = sr
			}
		}
	}
	info["has_audio"] = hasAudio
	info["has_video"] = hasVideo
	return info, nil
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}
