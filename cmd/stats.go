package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [flow.json]",
	Short: "Show flow statistics",
	Long:  `Print the flow name, use case, step and event counts, and the step type breakdown. No API key is needed.`,
	Args:  cobra.MaximumNArgs(1),
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
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report.Statistics)
		}

		printBanner(out)
		printFlowInfo(out, report.Statistics)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}
