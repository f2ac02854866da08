package output

import (
	"fmt"
	"strings"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

var (
	titleRule   = strings.Repeat("=", 50)
	sectionRule = strings.Repeat("-", 50)
)

// RenderText renders a plain-text report with one block per result.
func RenderText(outcome models.BatchOutcome, verbose bool) []byte {
	var b strings.Builder
	b.WriteString(title(outcome.MediaType) + "\n")
	b.WriteString(titleRule + "\n")

	if len(outcome.Results) == 0 {
		b.WriteString("\nNo results found.\n")
		return []byte(b.String())
	}

	if verbose {
		fmt.Fprintf(&b, "Generated on: %s\n", outcome.FinishedAt.Format(timeLayout))
		fmt.Fprintf(&b, "Total files: %d\n", len(outcome.Results))
		fmt.Fprintf(&b, "Successful: %d\n", outcome.Succeeded())
	}
	b.WriteString("\n")

	for i, res := range outcome.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, res.SourcePath)
		if verbose {
			for _, kv := range details(res) {
				fmt.Fprintf(&b, "%s: %s\n", kv[0], kv[1])
			}
		}
		b.WriteString("\n")

		if res.Success && res.Content != nil {
			fmt.Fprintf(&b, "%s:\n%s\n", contentLabel(res), strings.TrimSpace(*res.Content))
		} else {
			fmt.Fprintf(&b, "Error: %s\n", res.Error)
		}
		b.WriteString("\n" + sectionRule + "\n\n")
	}
	return []byte(b.String())
}
