package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Limits   LimitsConfig   `yaml:"limits"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Provider ProviderConfig `yaml:"provider"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

type DefaultsConfig struct {
	WordCount   int    `yaml:"word_count"`
	Concurrency int    `yaml:"concurrency"`
	ImagePrompt string `yaml:"image_prompt"`
}

type LimitsConfig struct {
	MaxConcurrency      int   `yaml:"max_concurrency"`
	MaxImageMB          int64 `yaml:"max_image_mb"`
	MaxAudioMB          int64 `yaml:"max_audio_mb"`
	MaxVideoMB          int64 `yaml:"max_video_mb"`
	ReencodeThresholdKB int64 `yaml:"reencode_threshold_kb"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
}

type ProviderConfig struct {
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxTokens       int64  `yaml:"max_tokens"`
	AzureAPIVersion string `yaml:"azure_api_version"`
	// BaseURL overrides the vendor endpoint (proxies, gateways). Ignored for Azure.
	BaseURL string `yaml:"base_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Default returns a Config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads a YAML config file. A missing file is an error: callers only pass
// paths the user asked for.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment overrides on top of file values.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"DEFAULT_WORD_COUNT", &c.Defaults.WordCount},
		{"MAX_CONCURRENCY", &c.Limits.MaxConcurrency},
		{"TIMEOUT_SECONDS", &c.Provider.TimeoutSeconds},
	}
	for _, e := range ints {
		v := strings.TrimSpace(getenv(e.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", e.name, v)
		}
		*e.dst = n
	}

	sizes := []struct {
		name string
		dst  *int64
	}{
		{"MAX_FILE_SIZE_MB", &c.Limits.MaxImageMB},
		{"MAX_AUDIO_SIZE_MB", &c.Limits.MaxAudioMB},
		{"MAX_VIDEO_SIZE_MB", &c.Limits.MaxVideoMB},
	}
	for _, e := range sizes {
		v := strings.TrimSpace(getenv(e.name))
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", e.name, v)
		}
		*e.dst = n
	}

	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}

	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Defaults.WordCount < 0 {
		return fmt.Errorf("defaults.word_count must be at least 1")
	}
	if c.Limits.MaxConcurrency < 0 {
		return fmt.Errorf("limits.max_concurrency must be at least 1")
	}
	if c.Limits.MaxImageMB < 0 || c.Limits.MaxAudioMB < 0 || c.Limits.MaxVideoMB < 0 {
		return fmt.Errorf("limits: size limits must be positive")
	}
	if c.Provider.TimeoutSeconds < 0 {
		return fmt.Errorf("provider.timeout_seconds must be positive")
	}

	if c.Defaults.WordCount == 0 {
		c.Defaults.WordCount = 100
	}
	if c.Defaults.Concurrency == 0 {
		c.Defaults.Concurrency = 3
	}
	if c.Limits.MaxConcurrency == 0 {
		c.Limits.MaxConcurrency = 20
	}
	// An explicit --concurrency is checked against the max by Options.Validate.
	if c.Defaults.Concurrency > c.Limits.MaxConcurrency {
		c.Defaults.Concurrency = c.Limits.MaxConcurrency
	}
	if c.Limits.MaxImageMB == 0 {
		c.Limits.MaxImageMB = 10
	}
	if c.Limits.MaxAudioMB == 0 {
		c.Limits.MaxAudioMB = 100
	}
	if c.Limits.MaxVideoMB == 0 {
		c.Limits.MaxVideoMB = 2048
	}
	if c.Limits.ReencodeThresholdKB == 0 {
		c.Limits.ReencodeThresholdKB = 500
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.Provider.TimeoutSeconds == 0 {
		c.Provider.TimeoutSeconds = 60
	}
	if c.Provider.MaxTokens == 0 {
		c.Provider.MaxTokens = 4096
	}
	if c.Provider.AzureAPIVersion == "" {
		c.Provider.AzureAPIVersion = "2024-06-01"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Watch.DebounceMS == 0 {
		c.Watch.DebounceMS = 500
	}

	return nil
}

// MB converts a megabyte limit to bytes.
func MB(n int64) int64 { return n * 1024 * 1024 }
