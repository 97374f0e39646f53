// Package config holds run configuration and its validation rules.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Configuration errors are fatal: they are reported before any browser
// activity and exit with a distinct status.
var (
	ErrMissingCredentials = errors.New("missing credentials (set FACEBOOK_EMAIL and FACEBOOK_PASSWORD or pass --email/--password)")
	ErrMissingMessage     = errors.New("no message provided (pass --message or --message-file)")
)

// Config is the full run configuration.
type Config struct {
	Email    string
	Password string

	LinksFile   string `validate:"required"`
	Message     string
	MessageFile string

	Headless bool
	Stealth  bool

	Limit    int           `validate:"min=1"`
	DelayMin time.Duration `validate:"min=0"`
	DelayMax time.Duration `validate:"min=0"`
	Timeout  time.Duration `validate:"gt=0"`

	DryRun     bool
	Inspect    bool
	ManualPost bool
	Debug      bool

	OutDir    string `validate:"required"`
	Lang      string
	UserAgent string

	LoginWait   time.Duration `validate:"min=0"`
	PrepostWait time.Duration `validate:"min=0"`

	// Global selector overrides, superseded by per-target ones.
	ComposerSelector string
	SubmitSelector   string

	// KeywordsFile optionally replaces the built-in keyword dictionaries.
	KeywordsFile string
}

// Default returns the defaults matching the documented CLI behavior.
func Default() Config {
	return Config{
		LinksFile:   "links.txt",
		MessageFile: "message.txt",
		Headless:    true,
		Limit:       40,
		DelayMin:    4 * time.Second,
		DelayMax:    9 * time.Second,
		Timeout:     25 * time.Second,
		OutDir:      "artifacts",
		Lang:        "en-US",
		LoginWait:   30 * time.Second,
		PrepostWait: 30 * time.Second,
	}
}

var validate = validator.New()

// Validate normalizes and checks the configuration. Credentials and a
// message are only required when the run will actually post: dry-run and
// inspect modes skip both.
func (c *Config) Validate() error {
	if c.DelayMax < c.DelayMin {
		c.DelayMin, c.DelayMax = c.DelayMax, c.DelayMin
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.DryRun || c.Inspect {
		return nil
	}

	if strings.TrimSpace(c.Message) == "" {
		return ErrMissingMessage
	}
	if c.Email == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// ResolveMessage fills Message from MessageFile when no inline message was
// given. A missing message file is not an error here; Validate decides
// whether an empty message is fatal for the selected mode.
func (c *Config) ResolveMessage() error {
	if c.Message != "" || c.MessageFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.MessageFile) //#nosec G304 -- user-specified message file
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read message file: %w", err)
	}
	c.Message = strings.TrimSpace(string(data))
	return nil
}
