package browser

import (
	"os"
	"os/exec"

	"groupcast/internal/logger"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	// macOS paths
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	// Common Linux paths
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	// Windows paths
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath searches for a Chrome/Chromium binary. The CHROME_BIN
// environment variable wins; then PATH lookup and common install locations.
// Returns empty string if nothing is found.
func FindChromePath() string {
	if path := os.Getenv("CHROME_BIN"); path != "" {
		if _, err := os.Stat(path); err == nil {
			logger.Debug("using Chrome binary from CHROME_BIN", "path", path)
			return path
		}
		logger.Warn("CHROME_BIN set but not found", "path", path)
	}

	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found - browser startup may fail")
	return ""
}
