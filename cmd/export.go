package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/iksnae/flow-analyzer/internal/export"
	"github.com/spf13/cobra"
)

var (
	format         string
	outputDir      string
	includeSummary bool
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [flow.json]",
	Short: "Export a flow report to file",
	Long: `Export the flow report (statistics and interactions) to json, jsonl, md, yaml or sqlite.

The summary is only included with --summary, which needs an API key. The
report is written to <out>/flow_<name>.<ext>. Other formats overwrite the
file; sqlite adds a new run to an existing database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if includeSummary {
			if err := cfg.RequireCredential(); err != nil {
				return err
			}
		}

		app, err := newApp(cfg, includeSummary)
		if err != nil {
			return err
		}

		path := flowPathArg(args)
		report, err := app.Prepare(path)
		if err != nil {
			return err
		}

		if includeSummary {
			ctx := cmd.Context()
			if err := internal.ShowProgress(ctx, "Generating summary", func() error {
				return app.Summarize(ctx, report)
			}); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: outputDir, Err: err}
		}

		outPath := filepath.Join(outputDir, exportFileName(report.Statistics.Name, exporter.Extension()))
		if err := writeExport(exporter, report, outPath); err != nil {
			return &internal.ExportError{Format: format, Path: outPath, Err: err}
		}

		internal.LogInfo("Exported %d interaction(s) to %s", len(report.Interactions), outPath)
		out := cmd.OutOrStdout()
		internal.PrintSuccess(out, "Exported "+outPath)
		if _, ok := exporter.(*export.SQLiteExporter); ok {
			runs, err := export.CountRuns(outPath)
			if err != nil {
				internal.PrintWarning(out, fmt.Sprintf("Could not read back %s: %v", outPath, err))
			} else {
				internal.PrintInfo(out, fmt.Sprintf("%s now holds %d exported run(s)", filepath.Base(outPath), runs))
			}
		}
		return nil
	},
}

func writeExport(exporter export.Exporter, report *internal.Report, path string) error {
	if fw, ok := exporter.(export.FileWriter); ok {
		return fw.WriteFile(report, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := exporter.Export(report, file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	return file.Close()
}

// exportFileName builds flow_<slug>.<ext> from the flow name
func exportFileName(name, ext string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "unknown"
	}
	return fmt.Sprintf("flow_%s.%s", slug, ext)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: "+strings.Join(export.Formats(), ", "))
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&includeSummary, "summary", false, "Generate and include the summary (requires an API key)")
}
