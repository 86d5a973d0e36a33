package cmd

import (
	"strings"
	"testing"
)

func TestInteractionsCommand(t *testing.T) {
	env := newTestEnv(t, false)

	out, err := executeCommand(t, env.args("interactions", env.flowPath)...)
	if err != nil {
		t.Fatalf("interactions error = %v", err)
	}
	if !strings.Contains(out, "Interactions (6)") {
		t.Errorf("output should count 6 interactions, got:\n%s", out)
	}

	first := strings.Index(out, "Started section: Getting Started")
	typing := strings.Index(out, "Typed search query")
	if first < 0 || typing < 0 || first > typing {
		t.Errorf("step interactions should precede event interactions:\n%s", out)
	}
}

func TestInteractionsCommand_JSONL(t *testing.T) {
	env := newTestEnv(t, false)

	out, err := executeCommand(t, env.args("interactions", "--jsonl", env.flowPath)...)
	if err != nil {
		t.Fatalf("interactions --jsonl error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Errorf("got %d lines, want 6:\n%s", len(lines), out)
	}
}
