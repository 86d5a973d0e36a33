package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/flow-analyzer/internal"
	"github.com/iksnae/flow-analyzer/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores flag variables that persist between Execute calls
func resetFlags() {
	verbose = false
	cacheDir = ""
	envFile = internal.DefaultEnvFile
	model = ""
	provider = ""
	logFile = ""
	dryRun = false
	closeLogFile()
	format = "json"
	outputDir = "./exports"
	includeSummary = false
	statsJSON = false
	interactionsJSONL = false

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Name == "help" || f.Name == "version" {
				_ = f.Value.Set("false")
			}
		})
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// testEnv isolates configuration and returns a workspace with a flow file,
// a missing env file and a fresh cache dir
type testEnv struct {
	dir      string
	flowPath string
	envFile  string
	cacheDir string
}

func newTestEnv(t *testing.T, withKey bool) *testEnv {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"FLOW_ANALYZER_MODEL",
		"FLOW_ANALYZER_TEMPERATURE",
		"FLOW_ANALYZER_CACHE_DIR",
		"FLOW_ANALYZER_RETRIES",
		"FLOW_ANALYZER_PROVIDER",
		"FLOW_ANALYZER_LOG_FILE",
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_BASE_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	if withKey {
		t.Setenv("OPENAI_API_KEY", "sk-test")
	}

	dir := testutil.CreateTempDir(t)
	return &testEnv{
		dir:      dir,
		flowPath: testutil.WriteFlowFixture(t, dir, "flow.json", testutil.SampleFlowJSON(t)),
		envFile:  filepath.Join(dir, "missing.env"),
		cacheDir: filepath.Join(dir, ".cache"),
	}
}

// flags returns the global flags pointing at the test workspace
func (e *testEnv) flags() []string {
	return []string{"--env-file", e.envFile, "--cache-dir", e.cacheDir}
}

func (e *testEnv) args(args ...string) []string {
	return append(args, e.flags()...)
}

// useCompleter replaces the completion client for the duration of the test
func useCompleter(t *testing.T, completer internal.Completer) {
	t.Helper()
	previous := newCompleter
	newCompleter = func(cfg *internal.Config) (internal.Completer, error) {
		if err := cfg.RequireCredential(); err != nil {
			return nil, err
		}
		return completer, nil
	}
	t.Cleanup(func() { newCompleter = previous })
}
