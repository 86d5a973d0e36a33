package export

import (
	"fmt"
	"io"

	"github.com/iksnae/flow-analyzer/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(report *internal.Report, w io.Writer) error
	Extension() string
}

// FileWriter is implemented by exporters that write a file in place instead
// of streaming, such as SQLite which appends a run to an existing database
type FileWriter interface {
	WriteFile(report *internal.Report, path string) error
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return NewSQLiteExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, md, yaml, sqlite)", format)
	}
}

// Formats lists the canonical format names accepted by NewExporter
func Formats() []string {
	return []string{"json", "jsonl", "md", "yaml", "sqlite"}
}
