package streaming

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
)

var mediaItemTypes = map[string]bool{
	"image_url": true,
	"audio_url": true,
	"video_url": true,
}

// userMessage is a validated input line.
type userMessage struct {
	Texts []string
	Media []mediaItem
}

type mediaItem struct {
	Type string
	URL  string
}

// Text joins the text items with a space.
func (m *userMessage) Text() string {
	return strings.TrimSpace(strings.Join(m.Texts, " "))
}

type object map[string]json.RawMessage

func invalid(format string, args ...any) error {
	return apperror.Validation(format, args...)
}

// parseMessage decodes and validates one input line. Item types other than
// text and the *_url kinds are ignored.
func parseMessage(line []byte) (*userMessage, error) {
	var top object
	if err := json.Unmarshal(line, &top); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return nil, invalid("Invalid JSON: %v", err)
		}
		return nil, invalid("Message must be a JSON object")
	}
	if top == nil {
		return nil, invalid("Message must be a JSON object")
	}

	if _, ok := top["type"]; !ok {
		return nil, invalid("Message must have 'type' field")
	}
	if s, _ := stringField(top, "type"); s != "user" {
		return nil, invalid("Message type must be 'user'")
	}

	rawInner, ok := top["message"]
	if !ok {
		return nil, invalid("Message must have 'message' field")
	}
	var inner object
	if err := json.Unmarshal(rawInner, &inner); err != nil || inner == nil {
		return nil, invalid("Message 'message' field must be an object")
	}

	if _, ok := inner["role"]; !ok {
		return nil, invalid("Message 'message' must have 'role' field")
	}
	if s, _ := stringField(inner, "role"); s != "user" {
		return nil, invalid("Message role must be 'user'")
	}

	rawContent, ok := inner["content"]
	if !ok {
		return nil, invalid("Message 'message' must have 'content' field")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawContent, &items); err != nil || items == nil {
		return nil, invalid("Message content must be an array")
	}
	if len(items) == 0 {
		return nil, invalid("Message content cannot be empty")
	}

	msg := &userMessage{}
	for _, raw := range items {
		var item object
		if err := json.Unmarshal(raw, &item); err != nil || item == nil {
			return nil, invalid("Content items must be objects")
		}
		if _, ok := item["type"]; !ok {
			return nil, invalid("Content items must have 'type' field")
		}
		typ, _ := stringField(item, "type")

		switch {
		case typ == "text":
			if _, ok := item["text"]; !ok {
				return nil, invalid("Text content items must have 'text' field")
			}
			text, err := stringField(item, "text")
			if err != nil {
				return nil, invalid("Text content items must have a string 'text' field")
			}
			msg.Texts = append(msg.Texts, text)

		case mediaItemTypes[typ]:
			kind := strings.TrimSuffix(typ, "_url")
			rawRef, ok := item[typ]
			if !ok {
				return nil, invalid("%s content items must have '%s' field", title(kind), typ)
			}
			var ref object
			if err := json.Unmarshal(rawRef, &ref); err != nil || ref == nil {
				return nil, invalid("%s content items must have '%s.url' field", title(kind), typ)
			}
			url, err := stringField(ref, "url")
			if err != nil {
				return nil, invalid("%s content items must have '%s.url' field", title(kind), typ)
			}
			msg.Media = append(msg.Media, mediaItem{Type: typ, URL: url})
		}
	}
	return msg, nil
}

func stringField(o object, key string) (string, error) {
	raw, ok := o[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// decodeDataURL splits a data:<mime>;base64,<payload> URL.
func decodeDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, invalid("Media URL must be a base64 data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, invalid("Media URL must be a base64 data URL")
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok || mime == "" {
		return "", nil, invalid("Media URL must be a base64 data URL")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInputValidation, err, "Invalid base64 payload in media URL")
	}
	return strings.ToLower(mime), data, nil
}
