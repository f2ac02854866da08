package streaming

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
	"github.com/recreate-run/multimodal-analyzer/internal/prompt"
	"github.com/recreate-run/multimodal-analyzer/internal/provider"
)

type response struct {
	Type     string    `json:"type"`
	Message  assistant `json:"message"`
	Metadata metadata  `json:"metadata"`
}

type assistant struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type metadata struct {
	Success bool   `json:"success"`
	Model   string `json:"model,omitempty"`
	Error   string `json:"error,omitempty"`
}

type flusher interface {
	Flush() error
}

func (s *implSession) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	var sum Summary
	reader := bufio.NewReaderSize(in, 64*1024)

	for {
		raw, tooLong, err := readLine(reader, s.lineLimit)
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read stream input: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		var content string
		if tooLong {
			err = apperror.New(apperror.KindSizeLimitExceeded,
				"Message exceeds maximum line size (%.1fMB)", float64(s.lineLimit)/(1024*1024))
		} else {
			line := bytes.TrimSpace(raw)
			if len(line) == 0 {
				continue
			}
			content, err = s.answer(ctx, line)
		}
		sum.Lines++

		resp := response{
			Type:     "assistant",
			Message:  assistant{Role: "assistant", Content: content},
			Metadata: metadata{Success: err == nil, Model: s.opts.Route.ID},
		}
		if err != nil {
			sum.Failed++
			resp.Message.Content = ""
			resp.Metadata.Error = err.Error()
			s.logger.Error(ctx, "Stream line %d failed: %v", sum.Lines, err)
		}

		if err := writeLine(out, resp); err != nil {
			return sum, err
		}
	}

	s.logger.Debug(ctx, "Stream closed after %d lines (%d failed)", sum.Lines, sum.Failed)
	return sum, nil
}

// readLine returns the next newline-terminated line. A line longer than limit
// is drained up to its newline and reported with tooLong set, so the stream
// stays aligned on the following message. A final unterminated line is
// returned with a nil error; io.EOF comes only once the input is exhausted.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			n := len(chunk)
			if n > 0 && chunk[n-1] == '\n' {
				n--
			}
			if len(line)+n > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && (len(line) > 0 || tooLong):
			return line, tooLong, nil
		default:
			return line, tooLong, err
		}
	}
}

// answer validates one line and makes the provider call for it.
func (s *implSession) answer(ctx context.Context, line []byte) (string, error) {
	msg, err := parseMessage(line)
	if err != nil {
		return "", err
	}
	if len(msg.Media) == 0 {
		return "", apperror.Validation("Message contains no %s content", s.opts.MediaType)
	}

	attachments := make([]provider.Attachment, 0, len(msg.Media))
	for _, item := range msg.Media {
		a, err := s.attachment(item)
		if err != nil {
			return "", err
		}
		attachments = append(attachments, a)
	}

	custom := msg.Text()
	if custom == "" {
		custom = s.opts.Prompt
	}
	req := models.AnalysisRequest{
		MediaType: s.opts.MediaType,
		Mode:      s.opts.Mode,
		Prompt:    custom,
		WordCount: s.opts.WordCount,
		Model:     s.opts.Route.ID,
	}

	return s.provider.Complete(ctx, provider.Request{
		Model:       s.opts.Route.Model,
		System:      s.opts.System,
		Prompt:      prompt.User(req, s.opts.ImagePrompt),
		Attachments: attachments,
	})
}

func (s *implSession) attachment(item mediaItem) (provider.Attachment, error) {
	mime, data, err := decodeDataURL(item.URL)
	if err != nil {
		return provider.Attachment{}, err
	}

	kind, ok := media.KindOfMIME(mime)
	if !ok {
		return provider.Attachment{}, apperror.New(apperror.KindUnsupportedFormat, "Unsupported media MIME type: %s", mime)
	}
	if kind != s.opts.MediaType {
		return provider.Attachment{}, apperror.Validation("Media type %s does not match --type %s", kind, s.opts.MediaType)
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return provider.Attachment{}, apperror.New(apperror.KindSizeLimitExceeded,
			"%s attachment exceeds max size (%.1fMB > %.1fMB)",
			kind.Title(), float64(len(data))/(1024*1024), float64(s.opts.MaxBytes)/(1024*1024))
	}

	return provider.Attachment{
		MIMEType: mime,
		Data:     data,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

func writeLine(out io.Writer, resp response) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("write stream output: %w", err)
	}
	if f, ok := out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush stream output: %w", err)
		}
	}
	return nil
}
