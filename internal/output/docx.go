package output

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

const (
	fontName   = "Times New Roman"
	fontSize   = 12
	errorColor = "C00000"
)

// Style IDs from the godocx default template.
const (
	styleListBullet = "ListBullet"
	styleBodyText   = "BodyText"
)

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBlankLine = regexp.MustCompile(`\n\s*\n`)
)

// writeDocx renders the same sections as RenderMarkdown using Word styles:
// a Title, a Heading 2 per file, bulleted details and body paragraphs.
func writeDocx(outcome models.BatchOutcome, verbose bool, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	if _, err := doc.AddHeading(title(outcome.MediaType), 0); err != nil {
		return err
	}

	if len(outcome.Results) == 0 {
		addBody(doc, "No results found.")
		return doc.SaveTo(outputPath)
	}

	if verbose {
		addField(doc, "Generated on", outcome.FinishedAt.Format(timeLayout))
		addField(doc, "Total files", fmt.Sprint(len(outcome.Results)))
		addField(doc, "Successful", fmt.Sprint(outcome.Succeeded()))
	}

	for _, res := range outcome.Results {
		if _, err := doc.AddHeading(res.SourcePath, 2); err != nil {
			return err
		}

		if verbose {
			for _, kv := range details(res) {
				addField(doc, kv[0], kv[1])
			}
		}

		if !res.Success || res.Content == nil {
			p := doc.AddEmptyParagraph()
			run(p, "Error: ").Bold(true).Color(errorColor)
			run(p, res.Error).Color(errorColor)
			continue
		}

		label := doc.AddEmptyParagraph()
		run(label, contentLabel(res)+":").Bold(true)
		for _, para := range splitParagraphs(*res.Content) {
			addBody(doc, para)
		}
	}

	return doc.SaveTo(outputPath)
}

func run(p *docx.Paragraph, text string) *docx.Run {
	return p.AddText(text).Font(fontName).Size(fontSize).Color("000000")
}

// addField adds a "Key: value" bullet with the key in bold.
func addField(doc *docx.RootDoc, key, value string) {
	p := doc.AddEmptyParagraph()
	p.Style(styleListBullet)
	run(p, key+": ").Bold(true)
	run(p, value)
}

// addBody adds a paragraph of model output. Model text often carries **bold**
// spans; those become bold runs and the markers are dropped.
func addBody(doc *docx.RootDoc, text string) {
	p := doc.AddEmptyParagraph()
	p.Style(styleBodyText)

	last := 0
	for _, m := range reBold.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			run(p, text[last:m[0]])
		}
		run(p, text[m[2]:m[3]]).Bold(true)
		last = m[1]
	}
	if last < len(text) {
		run(p, text[last:])
	}
}

// splitParagraphs splits on blank lines and unwraps the lines of each block.
func splitParagraphs(s string) []string {
	var out []string
	for _, block := range reBlankLine.Split(strings.TrimSpace(s), -1) {
		if joined := strings.Join(strings.Fields(block), " "); joined != "" {
			out = append(out, joined)
		}
	}
	return out
}
