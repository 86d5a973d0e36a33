package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/spf13/cobra"
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck [flow.json]",
	Short: "Check that flow-analyzer is ready to run",
	Long: `Check the health of flow-analyzer by verifying:
  • The API key is configured
  • The flow file exists and parses
  • The cache directory is writable

No request is sent to the completion service.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("Flow Analyzer Health Check"))
		_, _ = fmt.Fprintln(out)

		cfg, err := loadConfig()
		if err != nil {
			internal.PrintError(out, fmt.Sprintf("Configuration could not be read: %v", err))
			return err
		}

		failures := 0

		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Checking credentials..."))
		if err := cfg.RequireCredential(); err != nil {
			internal.PrintError(out, err.Error())
			failures++
		} else {
			internal.PrintSuccess(out, fmt.Sprintf("%s API key is set", cfg.ProviderName()))
			if verbose {
				_, _ = fmt.Fprintf(out, "   Model: %s (%s, temperature %.2f)\n", cfg.ModelName(), cfg.ProviderName(), cfg.Temperature)
				endpoint := cfg.OpenAIBaseURL
				if cfg.ProviderName() == internal.ProviderAnthropic {
					endpoint = cfg.AnthropicBaseURL
				}
				if endpoint != "" {
					_, _ = fmt.Fprintf(out, "   Endpoint: %s\n", endpoint)
				}
			}
		}
		_, _ = fmt.Fprintln(out)

		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Checking flow file..."))
		path := flowPathArg(args)
		flow, err := internal.LoadFlow(path)
		if err != nil {
			internal.PrintError(out, err.Error())
			failures++
		} else {
			stats := flow.Statistics()
			internal.PrintSuccess(out, fmt.Sprintf("%s: %q with %d step(s) and %d captured event(s)", path, stats.Name, stats.TotalSteps, stats.CapturedEvents))
		}
		_, _ = fmt.Fprintln(out)

		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Checking cache directory..."))
		if err := checkCacheWritable(cfg.CacheDir); err != nil {
			internal.PrintError(out, fmt.Sprintf("Cache directory %s is not writable: %v", cfg.CacheDir, err))
			failures++
		} else {
			entries, listErr := internal.NewCacheManager(cfg.CacheDir).List()
			if listErr != nil {
				internal.PrintWarning(out, fmt.Sprintf("Cache directory %s could not be listed: %v", cfg.CacheDir, listErr))
			} else {
				internal.PrintSuccess(out, fmt.Sprintf("Cache directory %s is writable (%d cached summary(ies))", cfg.CacheDir, len(entries)))
			}
		}
		_, _ = fmt.Fprintln(out)

		if failures > 0 {
			return fmt.Errorf("healthcheck failed: %d check(s) did not pass", failures)
		}
		internal.PrintSuccess(out, "All checks passed")
		return nil
	},
}

func checkCacheWritable(dir string) error {
	if err := internal.NewCacheManager(dir).EnsureCacheDir(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
