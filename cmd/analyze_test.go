package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/flow-analyzer/internal"
)

func TestAnalyzeCommand(t *testing.T) {
	env := newTestEnv(t, true)
	completer := &internal.StaticCompleter{Text: "The user searched for a gift card and bought it."}
	useCompleter(t, completer)

	out, err := executeCommand(t, env.args("analyze", env.flowPath)...)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	for _, want := range []string{
		"Arcade Flow Analyzer",
		"Flow loaded successfully!",
		"Flow Name: Buy a Gift Card",
		"Use Case: Checkout",
		"Total Steps: 5",
		"Captured Events: 4",
		"CHAPTER",
		"Started section: Getting Started",
		"Buy Now",
		"Typed search query",
		"The user searched for a gift card and bought it.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Thank You") {
		t.Error("Thank You chapter should not be listed")
	}

	out, err = executeCommand(t, env.args("analyze", env.flowPath)...)
	if err != nil {
		t.Fatalf("second analyze error = %v", err)
	}
	if !strings.Contains(out, "Summary (cached)") {
		t.Errorf("second run should use the cache, got:\n%s", out)
	}
	if completer.Calls() != 1 {
		t.Errorf("completer called %d times, want 1", completer.Calls())
	}
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	t.Run("missing credential is reported before missing file", func(t *testing.T) {
		env := newTestEnv(t, false)
		completer := &internal.StaticCompleter{Text: "unused"}
		useCompleter(t, completer)

		_, err := executeCommand(t, env.args("analyze", filepath.Join(env.dir, "missing.json"))...)
		var cfgErr *internal.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigurationError", err)
		}
		if internal.ExitCode(err) != internal.ExitCodeConfiguration {
			t.Errorf("ExitCode() = %d", internal.ExitCode(err))
		}
		if completer.Calls() != 0 {
			t.Error("completion service should not be called")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(t, true)
		useCompleter(t, &internal.StaticCompleter{Text: "unused"})

		_, err := executeCommand(t, env.args("analyze", filepath.Join(env.dir, "missing.json"))...)
		if internal.ExitCode(err) != internal.ExitCodeNotFound {
			t.Errorf("error = %v, want not found", err)
		}
		if err != nil && !strings.Contains(err.Error(), "file not found") {
			t.Errorf("error message = %q, want file not found", err.Error())
		}
	})

	t.Run("completion failure prints no report", func(t *testing.T) {
		env := newTestEnv(t, true)
		useCompleter(t, &internal.StaticCompleter{Err: errors.New("boom")})

		out, err := executeCommand(t, env.args("analyze", env.flowPath)...)
		if internal.ExitCode(err) != internal.ExitCodeExternal {
			t.Errorf("error = %v, want external service error", err)
		}
		if strings.Contains(out, "Flow Name:") {
			t.Errorf("no report should be printed on failure, got:\n%s", out)
		}
	})
}

func TestAnalyzeCommand_DryRun(t *testing.T) {
	env := newTestEnv(t, false)
	completer := &internal.StaticCompleter{Text: "never requested"}
	useCompleter(t, completer)

	out, err := executeCommand(t, env.args("analyze", "--dry-run", env.flowPath)...)
	if err != nil {
		t.Fatalf("analyze --dry-run error = %v", err)
	}

	for _, want := range []string{
		"Prompt",
		`recorded user flow named "Buy a Gift Card"`,
		"1. Started section: Getting Started",
		"Model: gpt-4o-mini",
		"Cache Key: ",
		"Cached: false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output should contain %q, got:\n%s", want, out)
		}
	}
	if completer.Calls() != 0 {
		t.Errorf("dry run made %d completion calls, want 0", completer.Calls())
	}

	entries, _ := internal.NewCacheManager(env.cacheDir).List()
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d cache entries, want 0", len(entries))
	}
}

func TestAnalyzeCommand_DryRunRejectsUnknownProviderFlag(t *testing.T) {
	env := newTestEnv(t, false)
	useCompleter(t, &internal.StaticCompleter{Text: "never requested"})

	out, err := executeCommand(t, env.args("analyze", "--dry-run", "--provider", "bogus", env.flowPath)...)
	if internal.ExitCode(err) != internal.ExitCodeConfiguration {
		t.Fatalf("analyze --provider bogus error = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), `invalid FLOW_ANALYZER_PROVIDER "bogus"`) {
		t.Errorf("error = %q, want the rejected provider named", err.Error())
	}
	if strings.Contains(out, "Model:") {
		t.Errorf("dry run should not print a prompt for a bad provider, got:\n%s", out)
	}
}

func TestAnalyzeCommand_DryRunReportsCachedEntry(t *testing.T) {
	env := newTestEnv(t, true)
	useCompleter(t, &internal.StaticCompleter{Text: "First summary."})

	if _, err := executeCommand(t, env.args("analyze", env.flowPath)...); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	out, err := executeCommand(t, env.args("--dry-run", env.flowPath)...)
	if err != nil {
		t.Fatalf("root --dry-run error = %v", err)
	}
	if !strings.Contains(out, "Cached: true") {
		t.Errorf("dry run should report the cached summary, got:\n%s", out)
	}
}
