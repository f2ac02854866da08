package media

import (
	"github.com/recreate-run/multimodal-analyzer/internal/config"
	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/pkg/executor"
)

type implEncoder struct {
	limits   Limits
	ffmpeg   string
	ffprobe  string
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Encoder using the configured limits and ffmpeg binaries.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Encoder {
	return &implEncoder{
		limits:   LimitsFromConfig(cfg),
		ffmpeg:   cfg.FFmpeg.BinaryPath,
		ffprobe:  cfg.FFmpeg.ProbePath,
		executor: exec,
		logger:   log,
	}
}

// LimitsFromConfig converts the configured megabyte limits to bytes.
func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		MaxImageBytes:     config.MB(cfg.Limits.MaxImageMB),
		MaxAudioBytes:     config.MB(cfg.Limits.MaxAudioMB),
		MaxVideoBytes:     config.MB(cfg.Limits.MaxVideoMB),
		ReencodeThreshold: cfg.Limits.ReencodeThresholdKB * 1024,
	}
}
