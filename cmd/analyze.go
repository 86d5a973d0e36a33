package cmd

import (
	"fmt"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/spf13/cobra"
)

var dryRun bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flow.json]",
	Short: "Analyze a flow and summarize it",
	Long: `Load a flow, print its statistics and interactions, and generate a summary.

The API key is checked before the flow file is opened. Summaries are served
from the cache when the same flow has been analyzed before.

With --dry-run the prompt and its cache key are printed instead; no API key
is needed and nothing is sent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dryRun {
		return runDryRun(cmd, cfg, flowPathArg(args))
	}
	if err := cfg.RequireCredential(); err != nil {
		return err
	}

	app, err := newApp(cfg, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBanner(out)

	ctx := cmd.Context()
	path := flowPathArg(args)

	report, err := app.Analyze(ctx, path)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out)
	internal.PrintSuccess(out, "Flow loaded successfully!")
	printFlowInfo(out, report.Statistics)
	printInteractions(out, report.Interactions)
	printSummary(out, report.Summary)
	return nil
}

// runDryRun prints what analyze would send without calling the service
func runDryRun(cmd *cobra.Command, cfg *internal.Config, path string) error {
	app, err := newApp(cfg, false)
	if err != nil {
		return err
	}

	report, err := app.Prepare(path)
	if err != nil {
		return err
	}

	req := internal.NewSummaryRequest(report.Flow(), report.Interactions)
	key, err := internal.CacheKey(req)
	if err != nil {
		return err
	}
	_, cached, err := app.Cache.Load(key)
	if err != nil {
		internal.LogWarn("Ignoring unreadable cache entry: %v", err)
	}

	out := cmd.OutOrStdout()
	printBanner(out)
	printFlowInfo(out, report.Statistics)
	printInteractions(out, report.Interactions)

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, sectionStyle.Render("Prompt"))
	_, _ = fmt.Fprintln(out, internal.BuildSummaryPrompt(report.Flow().DisplayName(), report.Interactions))
	_, _ = fmt.Fprintln(out)
	printField(out, "Model", cfg.ModelName())
	printField(out, "Cache Key", key)
	printField(out, "Cached", cached)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the summary prompt and cache key without calling the API")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the summary prompt and cache key without calling the API")
}
