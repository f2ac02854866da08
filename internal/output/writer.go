package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Render materializes the outcome in a buffered format. DOCX and stream-json
// are not buffered formats; use Emit and the streaming session for those.
func Render(outcome models.BatchOutcome, format models.Format, verbose bool) ([]byte, error) {
	switch format {
	case models.FormatJSON, "":
		return RenderJSON(outcome, verbose)
	case models.FormatMarkdown:
		return RenderMarkdown(outcome, verbose), nil
	case models.FormatText:
		return RenderText(outcome, verbose), nil
	}
	return nil, apperror.Validation("Unsupported format type: %s", format)
}

// Emit renders the outcome and writes it to path, or to stdout when path is empty.
func Emit(outcome models.BatchOutcome, format models.Format, verbose bool, path string, stdout io.Writer) error {
	if format == models.FormatDocx {
		if path == "" {
			return apperror.Validation("--output docx requires --output-file")
		}
		if err := ensureDir(path); err != nil {
			return err
		}
		if err := writeDocx(outcome, verbose, path); err != nil {
			return fmt.Errorf("write docx %s: %w", path, err)
		}
		return nil
	}

	data, err := Render(outcome, format, verbose)
	if err != nil {
		return err
	}
	return Write(data, path, stdout)
}

// Write sends data to path, creating parent directories, or to stdout when
// path is empty.
func Write(data []byte, path string, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
