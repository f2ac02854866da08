package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

func title(t models.MediaType) string {
	return t.Title() + " Analysis Results"
}

func contentLabel(res models.AnalysisResult) string {
	if models.ContentKey(res.MediaType, res.Mode) == "transcript" {
		return "Transcript"
	}
	return "Analysis"
}

// RenderMarkdown renders one "## <path>" section per result.
func RenderMarkdown(outcome models.BatchOutcome, verbose bool) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(outcome.MediaType))

	if len(outcome.Results) == 0 {
		b.WriteString("No results found.\n")
		return []byte(b.String())
	}

	if verbose {
		fmt.Fprintf(&b, "**Generated on:** %s\n", outcome.FinishedAt.Format(timeLayout))
		fmt.Fprintf(&b, "**Total files:** %d\n", len(outcome.Results))
		fmt.Fprintf(&b, "**Successful:** %d\n\n", outcome.Succeeded())
	}

	for _, res := range outcome.Results {
		fmt.Fprintf(&b, "## %s\n\n", res.SourcePath)

		if verbose {
			for _, kv := range details(res) {
				fmt.Fprintf(&b, "- **%s:** %s\n", kv[0], kv[1])
			}
			b.WriteString("\n")
		}

		if res.Success && res.Content != nil {
			fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", contentLabel(res), strings.TrimSpace(*res.Content))
		} else {
			fmt.Fprintf(&b, "**Error:** %s\n\n", res.Error)
		}
		b.WriteString("---\n\n")
	}
	return []byte(b.String())
}

// details lists the verbose key/value pairs for a result: model, prompt,
// then metadata sorted by key.
func details(res models.AnalysisResult) [][2]string {
	out := [][2]string{{"Model", res.Model}}
	if res.Prompt != "" {
		out = append(out, [2]string{"Prompt", res.Prompt})
	}

	keys := make([]string, 0, len(res.Metadata))
	for k := range res.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, [2]string{k, fmt.Sprint(res.Metadata[k])})
	}
	return out
}
