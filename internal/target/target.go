// Package target handles the list of group pages to post to.
package target

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Domain is the substring a target URL must contain to be accepted.
const Domain = "facebook.com"

// Target is one group page plus optional per-page selector overrides for
// the composer and the submit control.
type Target struct {
	URL              string
	ComposerSelector string
	SubmitSelector   string
}

// ReadFile parses a links file into targets, in input order, capped at
// limit. Each line is URL[\t or |]composer_selector[\t or |]submit_selector.
// Blank lines and lines starting with # are skipped, as are lines whose URL
// does not contain the facebook.com domain.
func ReadFile(path string, limit int) ([]Target, error) {
	f, err := os.Open(path) //#nosec G304 -- user-specified links file
	if err != nil {
		return nil, fmt.Errorf("links file not found: %w", err)
	}
	defer func() { _ = f.Close() }()

	var targets []Target
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		t, ok := parseLine(line)
		if !ok {
			continue
		}

		targets = append(targets, t)
		if len(targets) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}

	return targets, nil
}

// parseLine splits a single links-file line into a target. Tab separation
// takes precedence over pipe so pipe characters inside selectors survive
// when tabs are used.
func parseLine(line string) (Target, bool) {
	var parts []string
	switch {
	case strings.Contains(line, "\t"):
		parts = strings.Split(line, "\t")
	case strings.Contains(line, "|"):
		parts = strings.Split(line, "|")
	default:
		parts = []string{line}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	url := parts[0]
	if !strings.Contains(url, Domain) {
		return Target{}, false
	}

	t := Target{URL: url}
	if len(parts) > 1 {
		t.ComposerSelector = parts[1]
	}
	if len(parts) > 2 {
		t.SubmitSelector = parts[2]
	}
	return t, true
}
