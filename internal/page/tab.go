package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"groupcast/internal/logger"
)

// ErrElementGone is returned when an action targets a candidate that no
// longer exists on the page.
var ErrElementGone = errors.New("element no longer present")

// Tab is a live browser tab. It implements Page over CDP and adds the
// navigation and input operations the runner needs.
type Tab struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	primary bool
}

// NewTab opens a new tab in the browser owning parent. The timeout bounds
// individual page operations.
func NewTab(parent context.Context, timeout time.Duration) *Tab {
	ctx, cancel := chromedp.NewContext(parent)
	return &Tab{ctx: ctx, cancel: cancel, timeout: timeout}
}

// PrimaryTab wraps the browser's initial tab. Closing it is a no-op; the
// session owns the browser lifetime.
func PrimaryTab(browserCtx context.Context, timeout time.Duration) *Tab {
	return &Tab{ctx: browserCtx, cancel: func() {}, timeout: timeout, primary: true}
}

// Run executes raw chromedp actions in the tab's context, bounded by the
// tab's operation timeout.
func (t *Tab) Run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads a URL. A navigation timeout is tolerated: loading is
// halted and the partially loaded page is used as-is.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Debug("navigation timed out, stopping page load", "url", url)
		stopCtx, stopCancel := context.WithTimeout(t.ctx, 5*time.Second)
		defer stopCancel()
		if stopErr := chromedp.Run(stopCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			return cdppage.StopLoading().Do(ctx)
		})); stopErr != nil {
			logger.Debug("failed to stop page load", "error", stopErr)
		}
		return nil
	}
	return fmt.Errorf("navigation failed: %w", err)
}

// Scan returns all interactive elements on the page.
func (t *Tab) Scan(ctx context.Context) ([]Candidate, error) {
	var cands []Candidate
	if err := t.evaluate(ctx, scanJS, &cands); err != nil {
		return nil, fmt.Errorf("page scan failed: %w", err)
	}
	return cands, nil
}

// Query returns elements matching a CSS selector or XPath expression.
func (t *Tab) Query(ctx context.Context, selector string) ([]Candidate, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	var cands []Candidate
	if err := t.evaluate(ctx, fmt.Sprintf(queryJSTemplate, quoted), &cands); err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	return cands, nil
}

// Click clicks a candidate, preferring input simulation and falling back to
// a scripted click.
func (t *Tab) Click(ctx context.Context, c Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clickCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	if err := chromedp.Run(clickCtx, chromedp.Click(refSelector(c), chromedp.ByQuery)); err == nil {
		return nil
	}

	quoted, _ := json.Marshal(c.Ref)
	var ok bool
	if err := t.evaluate(ctx, fmt.Sprintf(clickJSTemplate, quoted), &ok); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	if !ok {
		return ErrElementGone
	}
	return nil
}

// SetText enters text into an editable candidate. Direct key simulation is
// tried first; if it fails, the text is assigned programmatically and a
// synthetic input event dispatched.
func (t *Tab) SetText(ctx context.Context, c Candidate, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	typeCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	err := chromedp.Run(typeCtx,
		chromedp.Click(refSelector(c), chromedp.ByQuery),
		chromedp.SendKeys(refSelector(c), text, chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	logger.Debug("key simulation failed, assigning text via script", "error", err)

	ref, _ := json.Marshal(c.Ref)
	val, _ := json.Marshal(text)
	var ok bool
	if err := t.evaluate(ctx, fmt.Sprintf(setTextJSTemplate, ref, val), &ok); err != nil {
		return fmt.Errorf("text entry failed: %w", err)
	}
	if !ok {
		return ErrElementGone
	}
	return nil
}

// HTML returns the full page markup.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	htmlCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture page markup: %w", err)
	}
	return html, nil
}

// Screenshot captures the visible viewport as PNG bytes.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shotCtx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// URL returns the tab's current location.
func (t *Tab) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	locCtx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	var loc string
	if err := chromedp.Run(locCtx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Sleep blocks for d within the tab's lifetime, honoring cancellation.
func (t *Tab) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

// Close closes the tab. Best-effort: an already-gone tab is not an error
// worth surfacing beyond debug logs. The primary tab belongs to the session
// and is left alone.
func (t *Tab) Close() {
	if t.primary {
		return
	}
	if err := chromedp.Cancel(t.ctx); err != nil {
		logger.Debug("tab close failed", "error", err)
	}
	t.cancel()
}

func (t *Tab) evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	evalCtx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()
	return chromedp.Run(evalCtx, chromedp.Evaluate(script, out))
}

func refSelector(c Candidate) string {
	return fmt.Sprintf(`[data-gc-ref=%q]`, c.Ref)
}
