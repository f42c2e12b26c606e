package harness

import (
	"strings"
	"testing"
)

// Assertions provides E2E-specific assertions.
type Assertions struct {
	t *testing.T
}

// NewAssertions creates an assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// OutputContains asserts the output contains all given strings.
func (a *Assertions) OutputContains(output string, expected ...string) {
	a.t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			a.t.Errorf("expected output to contain %q, got:\n%s", exp, truncate(output, 500))
		}
	}
}

// OutputNotContains asserts the output does not contain any of the given strings.
func (a *Assertions) OutputNotContains(output string, unexpected ...string) {
	a.t.Helper()
	for _, unexp := range unexpected {
		if strings.Contains(output, unexp) {
			a.t.Errorf("expected output NOT to contain %q, got:\n%s", unexp, truncate(output, 500))
		}
	}
}

// LineCount asserts how many lines of output contain marker.
func (a *Assertions) LineCount(output, marker string, want int) {
	a.t.Helper()
	got := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, marker) {
			got++
		}
	}
	if got != want {
		a.t.Errorf("expected %d lines containing %q, got %d in:\n%s", want, marker, got, truncate(output, 500))
	}
}

// HelpVisible asserts the help overlay is visible.
func (a *Assertions) HelpVisible(output string) {
	a.t.Helper()
	if !strings.Contains(output, "marquee help") {
		a.t.Errorf("help overlay not visible in output:\n%s", truncate(output, 500))
	}
}

// HelpNotVisible asserts the help overlay is not visible.
func (a *Assertions) HelpNotVisible(output string) {
	a.t.Helper()
	if strings.Contains(output, "marquee help") {
		a.t.Errorf("help overlay should not be visible")
	}
}

// NoError asserts the output doesn't contain error indicators.
func (a *Assertions) NoError(output string) {
	a.t.Helper()
	errorIndicators := []string{"Something went wrong", "Error loading", "panic:"}
	for _, ind := range errorIndicators {
		if strings.Contains(output, ind) {
			a.t.Errorf("unexpected error in output: found %q in:\n%s", ind, truncate(output, 500))
			return
		}
	}
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... (truncated)"
}
