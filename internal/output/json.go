package output

import (
	"bytes"
	"encoding/json"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type field struct {
	key   string
	value any
}

// record is a JSON object that keeps its keys in insertion order.
type record []field

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encodeValue(f.key)
		if err != nil {
			return nil, err
		}
		v, err := encodeValue(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// resultRecord builds the JSON object for one result:
// <type>_path, content key, success, error (failures only), then in verbose
// mode model, prompt and metadata.
func resultRecord(res models.AnalysisResult, verbose bool) record {
	var content any
	if res.Success && res.Content != nil {
		content = *res.Content
	}

	r := record{
		{res.MediaType.PathKey(), res.SourcePath},
		{models.ContentKey(res.MediaType, res.Mode), content},
		{"success", res.Success},
	}
	if !res.Success {
		r = append(r, field{"error", res.Error})
	}

	if verbose {
		var prompt any
		if res.Prompt != "" {
			prompt = res.Prompt
		}
		meta := res.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		r = append(r,
			field{"model", res.Model},
			field{"prompt", prompt},
			field{"metadata", meta},
		)
	}
	return r
}

// RenderJSON renders the outcome as an indented JSON array.
func RenderJSON(outcome models.BatchOutcome, verbose bool) ([]byte, error) {
	records := make([]record, 0, len(outcome.Results))
	for _, res := range outcome.Results {
		records = append(records, resultRecord(res, verbose))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderJSONLine renders one result as a single newline-terminated JSON object.
func RenderJSONLine(res models.AnalysisResult, verbose bool) ([]byte, error) {
	data, err := encodeValue(resultRecord(res, verbose))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
