package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/spf13/cobra"
)

const defaultFlowPath = "flow.json"

var (
	verbose  bool
	cacheDir string
	envFile  string
	model    string
	provider string
	logFile  string
	version  string = "dev"
	commit   string = "unknown"
	date     string = "unknown"
)

// logCloser stops the rotating log file opened by loadConfig
var logCloser io.Closer

// newCompleter builds the completion client; tests replace it
var newCompleter = internal.NewCompleterFromConfig

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flow-analyzer [flow.json]",
	Short: "Analyze recorded user flows and summarize them",
	Long: `A CLI tool that analyzes a recorded user flow (flow.json).

It reports statistics about the flow, turns its steps and captured events
into a list of human-readable interactions, and asks a language model for a
short summary of what the user did. Summaries are cached in .cache/ by
content hash so the same flow is never summarized twice.

Running flow-analyzer without a subcommand is the same as 'flow-analyzer analyze'.

Quick Start:
  flow-analyzer                          # Analyze ./flow.json
  flow-analyzer stats flow.json          # Statistics only, no API key needed
  flow-analyzer export --format md       # Write a Markdown report

Configuration is read from the environment and from .env:
  OPENAI_API_KEY              API key (required for summaries)
  OPENAI_BASE_URL             OpenAI-compatible endpoint override
  FLOW_ANALYZER_PROVIDER      openai (default) or anthropic
  ANTHROPIC_API_KEY           API key when the provider is anthropic
  FLOW_ANALYZER_MODEL         Completion model (default per provider)
  FLOW_ANALYZER_TEMPERATURE   Sampling temperature (default 0.3)
  FLOW_ANALYZER_CACHE_DIR     Summary cache directory (default .cache)
  FLOW_ANALYZER_RETRIES       Extra attempts for failed completions (default 0)
  FLOW_ANALYZER_LOG_FILE      Also write logs to this rotating file`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: runAnalyze,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	closeLogFile()
	if err != nil {
		reportError(os.Stderr, err)
		stop()
		os.Exit(internal.ExitCode(err))
	}
}

func closeLogFile() {
	if logCloser == nil {
		return
	}
	if err := logCloser.Close(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
	logCloser = nil
}

// reportError prints err and every error it wraps
func reportError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	chain := internal.ErrorChain(err)
	if len(chain) < 2 {
		return
	}
	_, _ = fmt.Fprintln(w, "Trace:")
	for i, msg := range chain {
		_, _ = fmt.Fprintf(w, "  %d: %s\n", i, msg)
	}
}

// loadConfig reads the environment and applies command-line overrides
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if model != "" {
		cfg.Model = model
	}
	if provider != "" {
		cfg.Provider = provider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if cfg.LogFile != "" && logCloser == nil {
		closer, err := internal.EnableLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		logCloser = closer
	}
	internal.LogDebug("Using %s model %s, cache %s", cfg.ProviderName(), cfg.ModelName(), cfg.CacheDir)
	return cfg, nil
}

// newApp builds the App; withCompleter requires a credential
func newApp(cfg *internal.Config, withCompleter bool) (*internal.App, error) {
	var completer internal.Completer
	if withCompleter {
		var err error
		completer, err = newCompleter(cfg)
		if err != nil {
			return nil, err
		}
	}
	return internal.NewApp(cfg, completer)
}

func flowPathArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return defaultFlowPath
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Summary cache directory (overrides FLOW_ANALYZER_CACHE_DIR)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", internal.DefaultEnvFile, "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Completion model (overrides FLOW_ANALYZER_MODEL)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Completion provider: openai or anthropic (overrides FLOW_ANALYZER_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this rotating file (overrides FLOW_ANALYZER_LOG_FILE)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
