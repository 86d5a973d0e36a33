package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/flow-analyzer/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		report   *internal.Report
		contains []string
		excludes []string
	}{
		{
			name:   "report with summary",
			report: internal.CreateTestReport("Buy a Gift Card", "The user bought a gift card."),
			contains: []string{
				"# Buy a Gift Card",
				"**Use case:** Checkout",
				"| CHAPTER | 2 |",
				"1. Started section: Getting Started",
				"2. Buy Now (<https://shop.example.com/item>)",
				"## Summary",
				"The user bought a gift card.",
			},
		},
		{
			name:     "report without summary",
			report:   internal.CreateTestReport("Buy a Gift Card", ""),
			contains: []string{"## Interactions"},
			excludes: []string{"## Summary"},
		},
		{
			name:     "empty report",
			report:   &internal.Report{Statistics: internal.Statistics{Name: "Unknown Flow", UseCase: "Unknown"}},
			contains: []string{"# Unknown Flow", "_No interactions recorded._"},
			excludes: []string{"## Step Types"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.report, &buf); err != nil {
				t.Fatalf("MarkdownExporter.Export() error = %v", err)
			}
			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("Output should contain %q\nOutput:\n%s", want, output)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(output, unwanted) {
					t.Errorf("Output should not contain %q", unwanted)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"**bold**", "\\*\\*bold\\*\\*"},
		{"__under__", "\\_\\_under\\_\\_"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.input); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := escapeTableCell("a|b"); got != "a\\|b" {
		t.Errorf("escapeTableCell() = %q", got)
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	if got := (&MarkdownExporter{}).Extension(); got != "md" {
		t.Errorf("MarkdownExporter.Extension() = %v, want md", got)
	}
}
