package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/flow-analyzer/internal"
)

// JSONLExporter exports reports in JSONL format (one interaction per line)
type JSONLExporter struct{}

// Export writes one JSON object per interaction, numbered from 1
func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, interaction := range report.Interactions {
		obj := map[string]interface{}{
			"index":  i + 1,
			"flow":   report.Statistics.Name,
			"type":   interaction.Type,
			"action": interaction.Action,
		}
		if interaction.Details != "" {
			obj["details"] = interaction.Details
		}
		if interaction.URL != "" {
			obj["url"] = interaction.URL
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode interaction: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
