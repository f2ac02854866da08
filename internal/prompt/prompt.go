// Package prompt builds the text sent alongside each media attachment.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

//go:embed prompts/*.md
var builtin embed.FS

// DefaultImagePrompt is used when no custom prompt is given for an image.
const DefaultImagePrompt = "Describe this image in detail."

const transcriptPrompt = "Please transcribe this audio file and return only the transcript text."

// System returns the system prompt for t. A non-empty customPath replaces the
// built-in prompt for every media type.
func System(t models.MediaType, customPath string) (string, error) {
	if customPath != "" {
		return loadFile(customPath)
	}

	data, err := builtin.ReadFile("prompts/" + string(t) + ".md")
	if err != nil {
		return "", apperror.Validation("no system prompt for media type %s", t)
	}
	return strings.TrimSpace(string(data)), nil
}

func loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperror.New(apperror.KindFileNotFound, "System prompt file not found: %s", path).WithPath(path)
		}
		return "", apperror.Wrap(apperror.KindFileNotFound, err, "read system prompt %s", path).WithPath(path)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", apperror.Validation("System prompt file is empty: %s", path).WithPath(path)
	}
	return content, nil
}

// User renders the user-turn text for req. imageDefault replaces an empty
// image prompt; pass "" to use DefaultImagePrompt.
func User(req models.AnalysisRequest, imageDefault string) string {
	custom := strings.TrimSpace(req.Prompt)

	switch req.MediaType {
	case models.MediaImage:
		if custom == "" {
			custom = imageDefault
		}
		if custom == "" {
			custom = DefaultImagePrompt
		}
		return fmt.Sprintf("%s Please provide approximately %d words in your description.", custom, req.WordCount)

	case models.MediaAudio:
		if req.Mode == models.ModeTranscript {
			return transcriptPrompt
		}
		if custom != "" {
			return fmt.Sprintf("%s\n\nPlease analyze this audio content. Provide approximately %d words in your analysis.", custom, req.WordCount)
		}
		return fmt.Sprintf("Please analyze and describe the content of this audio file. Provide approximately %d words in your analysis.", req.WordCount)

	case models.MediaVideo:
		if custom != "" {
			return fmt.Sprintf("%s\n\nPlease analyze this video content including both visual and audio elements. Provide approximately %d words in your analysis.", custom, req.WordCount)
		}
		return fmt.Sprintf("Please analyze and describe the content of this video file, including both visual and audio elements. Provide approximately %d words in your analysis.", req.WordCount)
	}

	return custom
}
