package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	c := Default()
	c.Email = "user@example.com"
	c.Password = "secret"
	c.Message = "hello groups"
	return c
}

func TestValidate_OK(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_MissingMessage(t *testing.T) {
	c := validConfig()
	c.Message = "   "

	err := c.Validate()
	if !errors.Is(err, ErrMissingMessage) {
		t.Errorf("expected ErrMissingMessage, got %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	c := validConfig()
	c.Password = ""

	err := c.Validate()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestValidate_DryRunSkipsModalChecks(t *testing.T) {
	c := Default()
	c.DryRun = true

	if err := c.Validate(); err != nil {
		t.Errorf("dry-run should not require message or credentials, got %v", err)
	}
}

func TestValidate_InspectSkipsModalChecks(t *testing.T) {
	c := Default()
	c.Inspect = true

	if err := c.Validate(); err != nil {
		t.Errorf("inspect should not require message or credentials, got %v", err)
	}
}

func TestValidate_SwapsInvertedDelays(t *testing.T) {
	c := validConfig()
	c.DelayMin = 9 * time.Second
	c.DelayMax = 2 * time.Second

	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.DelayMin != 2*time.Second || c.DelayMax != 9*time.Second {
		t.Errorf("expected delays swapped, got min=%v max=%v", c.DelayMin, c.DelayMax)
	}
}

func TestValidate_RejectsZeroLimit(t *testing.T) {
	c := validConfig()
	c.Limit = 0

	if err := c.Validate(); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestValidate_RejectsMissingLinksFile(t *testing.T) {
	c := validConfig()
	c.LinksFile = ""

	if err := c.Validate(); err == nil {
		t.Error("expected error for empty links file path")
	}
}

func TestResolveMessage_InlineWins(t *testing.T) {
	c := Default()
	c.Message = "inline"
	c.MessageFile = "does-not-matter.txt"

	if err := c.ResolveMessage(); err != nil {
		t.Fatalf("ResolveMessage() error = %v", err)
	}
	if c.Message != "inline" {
		t.Errorf("inline message should win, got %q", c.Message)
	}
}

func TestResolveMessage_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.txt")
	if err := os.WriteFile(path, []byte("  file message \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := Default()
	c.MessageFile = path

	if err := c.ResolveMessage(); err != nil {
		t.Fatalf("ResolveMessage() error = %v", err)
	}
	if c.Message != "file message" {
		t.Errorf("expected trimmed file content, got %q", c.Message)
	}
}

func TestResolveMessage_MissingFileIsNotFatal(t *testing.T) {
	c := Default()
	c.MessageFile = filepath.Join(t.TempDir(), "absent.txt")

	if err := c.ResolveMessage(); err != nil {
		t.Errorf("missing message file should not be fatal here, got %v", err)
	}
	if c.Message != "" {
		t.Errorf("expected empty message, got %q", c.Message)
	}
}
