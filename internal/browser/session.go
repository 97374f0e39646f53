// Package browser owns the Chrome session: one authenticated browser
// reused sequentially across all targets.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"groupcast/internal/logger"
	"groupcast/internal/page"
)

// ErrLoginFailed is returned when the post-login URL check fails, which
// usually means bad credentials or an extra verification challenge.
var ErrLoginFailed = errors.New("login failed or extra verification required")

const loginURL = "https://www.facebook.com/login"

// Cookie-consent buttons shown before the login form in some regions.
// Clicked best-effort, first match wins.
var consentSelectors = []string{
	`//button[contains(., 'Allow all cookies')]`,
	`//button[contains(., 'Accept all')]`,
	`//button[contains(., 'Only allow essential')]`,
	`//button[contains(., 'Essentials only')]`,
}

// Config holds browser session settings.
type Config struct {
	Email    string
	Password string

	Headless  bool
	Stealth   bool
	Lang      string
	UserAgent string

	// Timeout bounds individual page operations.
	Timeout time.Duration

	// LoginWait is the fixed wait after submitting credentials, giving the
	// post-login redirect (and any slow 2FA interstitial) time to settle.
	LoginWait time.Duration
}

// Session is one browser context, authenticated once and reused across all
// targets. It is not safe for concurrent use and is never used that way.
type Session struct {
	cfg Config

	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
}

// New starts a browser.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 25 * time.Second
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, execAllocatorOptions(cfg)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	// An empty Run starts the browser process so startup failures surface
	// here rather than on first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug("browser session started",
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
		"lang", cfg.Lang)

	return &Session{
		cfg:           cfg,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}, nil
}

// Login authenticates the session in the primary tab. A failed post-login
// URL check escalates as ErrLoginFailed; the whole run depends on it.
func (s *Session) Login(ctx context.Context) error {
	tab := page.PrimaryTab(s.browserCtx, s.cfg.Timeout)

	if s.cfg.Stealth {
		if err := tab.Run(ctx, injectStealthScript()); err != nil {
			logger.Debug("stealth injection failed", "error", err)
		}
	}

	if err := tab.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	s.dismissCookieConsent(ctx, tab)

	err := tab.Run(ctx,
		chromedp.WaitVisible(`input[name="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="email"]`, s.cfg.Email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="pass"]`, s.cfg.Password, chromedp.ByQuery),
		chromedp.Click(`button[name="login"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	logger.Debug("credentials submitted, waiting for redirect", "wait", s.cfg.LoginWait)
	if err := tab.Sleep(ctx, s.cfg.LoginWait); err != nil {
		return err
	}

	loc, err := tab.URL(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not read post-login URL: %v", ErrLoginFailed, err)
	}
	if !strings.Contains(loc, "facebook.com") ||
		strings.Contains(loc, "/login") ||
		strings.Contains(loc, "checkpoint") {
		return fmt.Errorf("%w: landed on %s", ErrLoginFailed, loc)
	}

	logger.Info("login succeeded", "url", loc)
	return nil
}

// dismissCookieConsent clicks the first matching consent button, if any.
// Best-effort; a missing banner is the normal case.
func (s *Session) dismissCookieConsent(ctx context.Context, tab *page.Tab) {
	for _, sel := range consentSelectors {
		cands, err := tab.Query(ctx, sel)
		if err != nil {
			logger.Debug("consent lookup failed", "selector", sel, "error", err)
			continue
		}
		for _, c := range cands {
			if !c.Actionable() {
				continue
			}
			if err := tab.Click(ctx, c); err != nil {
				logger.Debug("consent click failed", "error", err)
			}
			return
		}
	}
}

// NewTab opens a fresh tab for one target, with stealth patches installed
// when configured.
func (s *Session) NewTab(ctx context.Context) (*page.Tab, error) {
	tab := page.NewTab(s.browserCtx, s.cfg.Timeout)
	if s.cfg.Stealth {
		if err := tab.Run(ctx, injectStealthScript()); err != nil {
			logger.Debug("stealth injection failed for tab", "error", err)
		}
	}
	return tab, nil
}

// Close shuts the browser down. Cleanup is best-effort and never raises.
func (s *Session) Close() {
	if err := chromedp.Cancel(s.browserCtx); err != nil {
		logger.Debug("browser shutdown failed", "error", err)
	}
	s.cancelBrowser()
	s.cancelAlloc()
}
