// Package artifacts writes debug captures (screenshot, page markup,
// element metadata) for failed or inspected targets. Capture is strictly
// best-effort: callers log returned errors at debug level and move on.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"groupcast/internal/page"
)

// Store writes captures under a single output directory.
type Store struct {
	Dir     string
	Enabled bool

	// now is swapped in tests for deterministic file names.
	now func() time.Time
}

// New creates a store. The directory is created on first write.
func New(dir string, enabled bool) *Store {
	return &Store{Dir: dir, Enabled: enabled, now: time.Now}
}

// ElementMeta is the element summary captured alongside failures and
// inspect runs.
type ElementMeta struct {
	Tag         string `yaml:"tag"`
	AriaLabel   string `yaml:"aria_label,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	TestID      string `yaml:"test_id,omitempty"`
	Class       string `yaml:"class,omitempty"`
	Text        string `yaml:"text,omitempty"`
	Path        string `yaml:"path,omitempty"`
}

// MetaFor summarizes a candidate, trimming the text excerpt. Truncation is
// by runes so multi-byte labels stay valid UTF-8 in the YAML output.
func MetaFor(c page.Candidate) ElementMeta {
	text := c.Text
	if runes := []rune(text); len(runes) > 120 {
		text = string(runes[:120])
	}
	return ElementMeta{
		Tag:         c.Tag,
		AriaLabel:   c.AriaLabel,
		Placeholder: c.Placeholder,
		TestID:      c.TestID,
		Class:       c.Class,
		Text:        text,
		Path:        c.Path,
	}
}

// SavePage writes the page markup and screenshot for a failure. Either
// part may be empty; only present parts are written.
func (s *Store) SavePage(url, tag, html string, screenshot []byte) error {
	if !s.Enabled {
		return nil
	}
	base, err := s.basePath(url, tag)
	if err != nil {
		return err
	}

	if err := os.WriteFile(base+".url.txt", []byte(url+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write url file: %w", err)
	}
	if html != "" {
		if err := os.WriteFile(base+".html", []byte(html), 0o600); err != nil {
			return fmt.Errorf("failed to write page markup: %w", err)
		}
	}
	if len(screenshot) > 0 {
		if err := os.WriteFile(base+".png", screenshot, 0o600); err != nil {
			return fmt.Errorf("failed to write screenshot: %w", err)
		}
	}
	return nil
}

// SaveElement writes a YAML metadata summary for a discovered element.
func (s *Store) SaveElement(url, tag string, c page.Candidate) error {
	if !s.Enabled {
		return nil
	}
	base, err := s.basePath(url, tag)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(MetaFor(c))
	if err != nil {
		return fmt.Errorf("failed to encode element metadata: %w", err)
	}
	if err := os.WriteFile(base+".meta.yaml", data, 0o600); err != nil {
		return fmt.Errorf("failed to write element metadata: %w", err)
	}
	return nil
}

func (s *Store) basePath(url, tag string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	ts := s.now().Format("20060102-150405")
	name := fmt.Sprintf("%s__%s__%s", ts, Slug(url), Slug(tag))
	return filepath.Join(s.Dir, name), nil
}

// Slug reduces arbitrary text to a filesystem-safe name, capped at 100
// runes.
func Slug(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('-')
		}
	}
	out := sb.String()
	if runes := []rune(out); len(runes) > 100 {
		out = string(runes[:100])
	}
	out = strings.Trim(out, "-")
	if out == "" {
		return "item"
	}
	return out
}
