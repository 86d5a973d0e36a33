package cmd

import (
	"github.com/iksnae/flow-analyzer/internal/export"
	"github.com/spf13/cobra"
)

var interactionsJSONL bool

// interactionsCmd represents the interactions command
var interactionsCmd = &cobra.Command{
	Use:   "interactions [flow.json]",
	Short: "List the interactions extracted from a flow",
	Long: `Print the numbered list of interactions derived from the flow's steps,
followed by those derived from its captured events. No API key is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := newApp(cfg, false)
		if err != nil {
			return err
		}

		report, err := app.Prepare(flowPathArg(args))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if interactionsJSONL {
			return (&export.JSONLExporter{}).Export(report, out)
		}

		printInteractions(out, report.Interactions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interactionsCmd)
	interactionsCmd.Flags().BoolVar(&interactionsJSONL, "jsonl", false, "Print one JSON object per interaction")
}
