package testutil

import "testing"

// SampleFlowJSON returns testdata/sample_flow.json, a small recorded flow
// exercising every step type and the common captured events
func SampleFlowJSON(t *testing.T) string {
	t.Helper()
	return string(LoadFixture(t, "sample_flow.json"))
}

// EmptyFlowJSON returns a flow document with no name, steps, or events
func EmptyFlowJSON(t *testing.T) string {
	t.Helper()
	return string(LoadFixture(t, "empty_flow.json"))
}

// MalformedFlowJSON returns a truncated document that fails to parse
func MalformedFlowJSON(t *testing.T) string {
	t.Helper()
	return string(LoadFixture(t, "malformed_flow.json"))
}
