package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/flow-analyzer/internal"
	"github.com/olekukonko/tablewriter"
)

const summaryWidth = 80

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func printBanner(w io.Writer) {
	_, _ = fmt.Fprintln(w, sectionStyle.Render("Arcade Flow Analyzer"))
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
}

func printField(w io.Writer, label string, value interface{}) {
	_, _ = fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label+":"), value)
}

func printFlowInfo(w io.Writer, stats internal.Statistics) {
	_, _ = fmt.Fprintln(w)
	printField(w, "Flow Name", stats.Name)
	printField(w, "Use Case", stats.UseCase)
	printField(w, "Total Steps", stats.TotalSteps)
	printField(w, "Captured Events", stats.CapturedEvents)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, sectionStyle.Render("Step Types"))

	counts := stats.StepTypeCounts()
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("(no steps)"))
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Type", "Count"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, c := range counts {
		table.Append([]string{c.Type, strconv.Itoa(c.Count)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(stats.TotalSteps)})
	table.Render()
}

func printInteractions(w io.Writer, interactions []internal.Interaction) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Interactions (%d)", len(interactions))))

	if len(interactions) == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("(no interactions recorded)"))
		return
	}

	for i, interaction := range interactions {
		_, _ = fmt.Fprintf(w, "%3d. %s %s\n", i+1, interaction.Action, mutedStyle.Render("["+interaction.Type+"]"))
		if verbose {
			if interaction.Details != "" {
				_, _ = fmt.Fprintf(w, "     %s\n", mutedStyle.Render(interaction.Details))
			}
			if interaction.URL != "" {
				_, _ = fmt.Fprintf(w, "     %s\n", mutedStyle.Render(interaction.URL))
			}
		}
	}
}

func printSummary(w io.Writer, summary *internal.Summary) {
	if summary == nil {
		return
	}

	_, _ = fmt.Fprintln(w)
	title := "Summary"
	if summary.Cached {
		title += " (cached)"
	}
	_, _ = fmt.Fprintln(w, sectionStyle.Render(title))
	if internal.IsTerminal(w) {
		_, _ = fmt.Fprintln(w, renderMarkdown(summary.Text, summaryWidth, "dark"))
		return
	}
	_, _ = fmt.Fprintln(w, wrapText(summary.Text, summaryWidth))
}

// renderMarkdown renders model output for the terminal, falling back to
// plain wrapping when the renderer fails
func renderMarkdown(text string, width int, style string) string {
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style), // a fixed style avoids background color queries
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(text, width)
	}
	out, err := md.Render(text)
	if err != nil {
		return wrapText(text, width)
	}
	return strings.Trim(out, "\n")
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if currentLine == "" {
				currentLine = word
				continue
			}
			if len(currentLine)+len(word)+1 > width {
				wrapped = append(wrapped, currentLine)
				currentLine = word
				continue
			}
			currentLine += " " + word
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}
