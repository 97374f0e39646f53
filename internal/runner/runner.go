// Package runner drives a posting run: one login, then each target in
// sequence on its own tab, with randomized pauses between targets.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"groupcast/internal/artifacts"
	"groupcast/internal/browser"
	"groupcast/internal/discover"
	"groupcast/internal/keywords"
	"groupcast/internal/logger"
	"groupcast/internal/page"
	"groupcast/internal/target"
)

// TargetPage is what the runner needs from a tab. *page.Tab satisfies it;
// tests substitute a static document.
type TargetPage interface {
	page.Page
	Navigate(ctx context.Context, url string) error
	SetText(ctx context.Context, c page.Candidate, text string) error
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close()
}

// Browser is the session surface the runner drives.
type Browser interface {
	Login(ctx context.Context) error
	OpenTab(ctx context.Context) (TargetPage, error)
	Close()
}

type sessionBrowser struct {
	s *browser.Session
}

func (b sessionBrowser) Login(ctx context.Context) error { return b.s.Login(ctx) }
func (b sessionBrowser) Close()                          { b.s.Close() }

func (b sessionBrowser) OpenTab(ctx context.Context) (TargetPage, error) {
	return b.s.NewTab(ctx)
}

// WrapSession adapts a live browser session to the Browser interface.
func WrapSession(s *browser.Session) Browser {
	return sessionBrowser{s: s}
}

// Config holds the posting behavior knobs.
type Config struct {
	Message string

	Inspect    bool
	ManualPost bool

	// DelayMin/DelayMax bound the randomized pause between targets.
	DelayMin time.Duration
	DelayMax time.Duration

	// PrepostWait is the pause between typing the message and submitting,
	// long enough for link previews and attachments to settle.
	PrepostWait time.Duration

	// Global selector overrides; a per-target override wins.
	ComposerSelector string
	SubmitSelector   string

	SurfaceRetries int
}

// Summary is the final tally of a run. Inspect-mode targets count as
// Inspected, never Posted.
type Summary struct {
	Attempted int
	Posted    int
	Inspected int
	Failed    int
}

// Runner executes a run sequentially. One browser, one tab at a time.
type Runner struct {
	cfg    Config
	kw     keywords.Set
	b      Browser
	finder *discover.Finder
	store  *artifacts.Store

	in  *bufio.Reader
	out io.Writer

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a runner. in is only read in manual-post mode; out receives
// inspect reports and manual-post prompts.
func New(cfg Config, kw keywords.Set, b Browser, store *artifacts.Store, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		cfg:    cfg,
		kw:     kw,
		b:      b,
		finder: discover.NewFinder(discover.DefaultWeights()),
		store:  store,
		in:     bufio.NewReader(in),
		out:    out,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepFor,
	}
}

// Run logs in once and processes every target. A login failure aborts the
// run; per-target failures are recorded and the run continues.
func (r *Runner) Run(ctx context.Context, targets []target.Target) (Summary, error) {
	var sum Summary

	if err := r.b.Login(ctx); err != nil {
		return sum, fmt.Errorf("aborting run: %w", err)
	}

	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		logger.Info("processing target", "index", i+1, "total", len(targets), "url", t.URL)
		sum.Attempted++

		switch err := r.processTarget(ctx, t); {
		case err != nil:
			sum.Failed++
			logger.Warn("target failed", "url", t.URL, "error", err)
		case r.cfg.Inspect:
			sum.Inspected++
		default:
			sum.Posted++
		}

		if i < len(targets)-1 {
			if err := r.pause(ctx, r.cfg.DelayMin, r.cfg.DelayMax); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}

func (r *Runner) processTarget(ctx context.Context, t target.Target) error {
	tab, err := r.b.OpenTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, t.URL); err != nil {
		r.capture(ctx, tab, t.URL, "navigation-failed")
		return err
	}

	// Let late scripts render the composer region before scanning.
	if err := r.pause(ctx, time.Second, 2200*time.Millisecond); err != nil {
		return err
	}

	composer, err := r.finder.Find(ctx, tab, discover.Query{
		Kind:           discover.KindComposer,
		Keywords:       r.kw.Composer,
		Override:       firstNonEmpty(t.ComposerSelector, r.cfg.ComposerSelector),
		SurfaceRetries: r.cfg.SurfaceRetries,
	})
	if err != nil {
		r.capture(ctx, tab, t.URL, "composer-not-found")
		return err
	}
	r.saveElement(t.URL, "composer", composer)

	if r.cfg.Inspect {
		return r.inspect(ctx, tab, t, composer)
	}

	if err := tab.SetText(ctx, composer, r.cfg.Message); err != nil {
		r.capture(ctx, tab, t.URL, "composer-type-failed")
		return fmt.Errorf("failed to enter message: %w", err)
	}

	if err := r.sleep(ctx, r.cfg.PrepostWait); err != nil {
		return err
	}

	if r.cfg.ManualPost {
		return r.waitForManualPost(t.URL)
	}

	submit, err := r.finder.Find(ctx, tab, discover.Query{
		Kind:     discover.KindSubmit,
		Keywords: r.kw.Submit,
		Override: firstNonEmpty(t.SubmitSelector, r.cfg.SubmitSelector),
		Scope:    composer.Scope,
	})
	if err != nil {
		r.capture(ctx, tab, t.URL, "post-button-not-found")
		return err
	}
	r.saveElement(t.URL, "post-button", submit)

	if err := tab.Click(ctx, submit); err != nil {
		r.capture(ctx, tab, t.URL, "post-click-failed")
		return fmt.Errorf("failed to click post button: %w", err)
	}

	// Give the submission time to land before the tab is closed.
	if err := r.pause(ctx, 2500*time.Millisecond, 4500*time.Millisecond); err != nil {
		return err
	}

	logger.Info("posted", "url", t.URL)
	return nil
}

// inspect reports what discovery found without typing or posting.
func (r *Runner) inspect(ctx context.Context, tab TargetPage, t target.Target, composer page.Candidate) error {
	fmt.Fprintf(r.out, "%s\n  composer: %s\n", t.URL, composer.Path)

	submit, err := r.finder.Find(ctx, tab, discover.Query{
		Kind:     discover.KindSubmit,
		Keywords: r.kw.Submit,
		Override: firstNonEmpty(t.SubmitSelector, r.cfg.SubmitSelector),
		Scope:    composer.Scope,
	})
	if err != nil {
		fmt.Fprintf(r.out, "  post button: not found\n")
		return nil
	}
	r.saveElement(t.URL, "post-button", submit)
	fmt.Fprintf(r.out, "  post button: %s\n", submit.Path)
	return nil
}

// waitForManualPost leaves the typed message on screen and blocks until the
// operator confirms they submitted it themselves.
func (r *Runner) waitForManualPost(url string) error {
	fmt.Fprintf(r.out, "message typed at %s - post it manually, then press Enter to continue\n", url)
	if _, err := r.in.ReadString('\n'); err != nil {
		return fmt.Errorf("manual-post confirmation aborted: %w", err)
	}
	return nil
}

// capture saves page state for a failed step. Best-effort only.
func (r *Runner) capture(ctx context.Context, tab TargetPage, url, tag string) {
	html, err := tab.HTML(ctx)
	if err != nil {
		logger.Debug("markup capture failed", "url", url, "error", err)
	}
	shot, err := tab.Screenshot(ctx)
	if err != nil {
		logger.Debug("screenshot capture failed", "url", url, "error", err)
	}
	if err := r.store.SavePage(url, tag, html, shot); err != nil {
		logger.Debug("artifact write failed", "url", url, "tag", tag, "error", err)
	}
}

func (r *Runner) saveElement(url, tag string, c page.Candidate) {
	if err := r.store.SaveElement(url, tag, c); err != nil {
		logger.Debug("element artifact write failed", "url", url, "tag", tag, "error", err)
	}
}

// pause sleeps for a uniformly random duration in [lo, hi].
func (r *Runner) pause(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d = lo + time.Duration(r.rng.Int63n(int64(hi-lo)+1))
	}
	return r.sleep(ctx, d)
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
