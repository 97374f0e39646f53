package target

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"groupcast/internal/logger"
)

// groupPathPattern matches canonical group page paths, ignoring deeper
// permalinks (posts, members, media) under a group.
var groupPathPattern = regexp.MustCompile(`^/groups/[^/]+/?$`)

// CollectConfig configures group-link collection.
type CollectConfig struct {
	UserAgent string
	Timeout   time.Duration
	Limit     int
}

// Collect fetches the seed URL and returns deduplicated facebook.com group
// links found on it, in document order, capped at cfg.Limit.
func Collect(seedURL string, cfg CollectConfig) ([]string, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := colly.NewCollector()
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)

	var links []string
	seen := make(map[string]bool)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if cfg.Limit > 0 && len(links) >= cfg.Limit {
			return
		}

		link := normalizeGroupLink(e.Request.AbsoluteURL(e.Attr("href")))
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	logger.Debug("collecting group links", "seed", seedURL)
	if err := c.Visit(seedURL); err != nil {
		return nil, fmt.Errorf("failed to visit seed URL: %w", err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	logger.Debug("group link collection complete", "seed", seedURL, "links", len(links))
	return links, nil
}

// normalizeGroupLink reduces a raw href to a canonical group page URL, or
// returns empty if it is not one.
func normalizeGroupLink(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !strings.Contains(u.Host, Domain) {
		return ""
	}
	if !groupPathPattern.MatchString(u.Path) {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// WriteFile renders collected links as a links file, one URL per line.
func WriteFile(path string, links []string) error {
	var sb strings.Builder
	sb.WriteString("# collected group links\n")
	for _, l := range links {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write links file: %w", err)
	}
	return nil
}
