package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/flow-analyzer/internal"
)

// MarkdownExporter exports reports in Markdown format
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	stats := report.Statistics

	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(stats.Name))

	if report.Source != "" {
		_, _ = fmt.Fprintf(w, "**Source:** %s  \n", report.Source)
	}
	_, _ = fmt.Fprintf(w, "**Use case:** %s  \n", escapeMarkdown(stats.UseCase))
	_, _ = fmt.Fprintf(w, "**Total steps:** %d  \n", stats.TotalSteps)
	_, _ = fmt.Fprintf(w, "**Captured events:** %d\n\n", stats.CapturedEvents)

	counts := stats.StepTypeCounts()
	if len(counts) > 0 {
		_, _ = fmt.Fprintf(w, "## Step Types\n\n")
		_, _ = fmt.Fprintf(w, "| Type | Count |\n")
		_, _ = fmt.Fprintf(w, "|------|------:|\n")
		for _, c := range counts {
			_, _ = fmt.Fprintf(w, "| %s | %d |\n", escapeTableCell(c.Type), c.Count)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Interactions\n\n")

	if len(report.Interactions) == 0 {
		_, _ = fmt.Fprintf(w, "_No interactions recorded._\n\n")
	}
	for i, interaction := range report.Interactions {
		_, _ = fmt.Fprintf(w, "%d. %s", i+1, escapeMarkdown(interaction.Action))
		if interaction.URL != "" {
			_, _ = fmt.Fprintf(w, " (<%s>)", interaction.URL)
		}
		_, _ = fmt.Fprintf(w, "\n")
		if interaction.Details != "" {
			_, _ = fmt.Fprintf(w, "   - %s\n", escapeMarkdown(interaction.Details))
		}
	}
	if len(report.Interactions) > 0 {
		_, _ = fmt.Fprintf(w, "\n")
	}

	if report.Summary != nil {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## Summary\n\n")
		_, _ = fmt.Fprintf(w, "%s\n", report.Summary.Text)
	}

	return nil
}

// escapeMarkdown escapes emphasis markers so labels render literally
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

func escapeTableCell(text string) string {
	return strings.ReplaceAll(escapeMarkdown(text), "|", "\\|")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
