package media

import (
	"context"
	"os"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
)

// extractAudio demuxes the audio track of a video container into a 16kHz mono
// WAV temp file. The caller removes the file.
func (e *implEncoder) extractAudio(ctx context.Context, videoPath string) (string, error) {
	if err := e.requireTool(e.ffmpeg, videoPath); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "extracted-audio-*.wav")
	if err != nil {
		return "", apperror.Wrap(apperror.KindExternalTool, err, "create temp file").WithPath(videoPath)
	}
	audioPath := tmp.Name()
	tmp.Close()

	e.logger.Debug(ctx, "Extracting audio: %s -> %s", videoPath, audioPath)

	// -vn: drop video, -ar/-ac: 16kHz mono, pcm_s16le: uncompressed WAV
	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		audioPath,
	}

	if _, err := e.executor.Execute(ctx, e.ffmpeg, args...); err != nil {
		e.cleanupTempFile(ctx, audioPath)
		return "", apperror.Wrap(apperror.KindExternalTool, err, "ffmpeg extract audio from %s", videoPath).WithPath(videoPath)
	}

	return audioPath, nil
}

// requireTool fails fast when an external binary is missing, before any temp
// file is created or command run.
func (e *implEncoder) requireTool(name, path string) error {
	if _, err := e.executor.LookPath(name); err != nil {
		return apperror.Wrap(apperror.KindExternalTool, err, "%s not available (install it or set ffmpeg.binary_path/probe_path)", name).WithPath(path)
	}
	return nil
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (e *implEncoder) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
		return
	}
	e.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
}
