package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"groupcast/internal/target"
)

func TestPrintPlan(t *testing.T) {
	targets := []target.Target{
		{URL: "https://facebook.com/groups/alpha"},
		{URL: "https://facebook.com/groups/beta", ComposerSelector: `div[role="textbox"]`},
	}

	var buf bytes.Buffer
	printPlan(&buf, targets)
	out := buf.String()

	if !strings.Contains(out, "2 target(s)") {
		t.Errorf("missing target count:\n%s", out)
	}
	if !strings.Contains(out, "  1. https://facebook.com/groups/alpha") {
		t.Errorf("missing first target with 1-based index:\n%s", out)
	}
	if !strings.Contains(out, `composer=div[role="textbox"]`) {
		t.Errorf("missing composer override:\n%s", out)
	}
	if strings.Contains(out, "post-button=") {
		t.Errorf("unexpected post-button override:\n%s", out)
	}
}

func TestExitErrorCodes(t *testing.T) {
	base := errors.New("bad input")

	var exitErr *ExitError
	if err := configError(base); !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("configError should carry exit code 2, got %v", err)
	}
	if err := runtimeError(base); !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Errorf("runtimeError should carry exit code 1, got %v", err)
	}
	if !errors.Is(configError(base), base) {
		t.Error("ExitError should unwrap to the underlying error")
	}
}
