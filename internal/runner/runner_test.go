package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"groupcast/internal/artifacts"
	"groupcast/internal/keywords"
	"groupcast/internal/page"
	"groupcast/internal/target"
)

const groupMarkup = `<html><body>
  <div role="textbox" contenteditable="true" aria-label="Write something..." class="main"></div>
  <div id="special" role="textbox" contenteditable="true" aria-label="Write something..."></div>
  <div role="button" aria-label="Post">Post</div>
</body></html>`

const emptyMarkup = `<html><body><a href="#">nothing here</a></body></html>`

type typedText struct {
	path string
	text string
}

// fakePage is a static-document tab: discovery runs against real markup,
// navigation and input are recorded.
type fakePage struct {
	*page.Document

	navigated []string
	navErr    error
	typed     []typedText
	captured  int
	closed    bool
}

func newFakePage(t *testing.T, markup string) *fakePage {
	t.Helper()
	doc, err := page.NewDocument(markup)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return &fakePage{Document: doc}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) SetText(_ context.Context, c page.Candidate, text string) error {
	p.typed = append(p.typed, typedText{path: c.Path, text: text})
	return nil
}

func (p *fakePage) HTML(_ context.Context) (string, error) {
	p.captured++
	return "<html></html>", nil
}

func (p *fakePage) Screenshot(_ context.Context) ([]byte, error) {
	return []byte{0x89}, nil
}

func (p *fakePage) Close() { p.closed = true }

type fakeBrowser struct {
	loginErr   error
	loginCalls int
	pages      []*fakePage
	opened     int
	closed     bool
}

func (b *fakeBrowser) Login(_ context.Context) error {
	b.loginCalls++
	return b.loginErr
}

func (b *fakeBrowser) OpenTab(_ context.Context) (TargetPage, error) {
	if b.opened >= len(b.pages) {
		return nil, errors.New("no more tabs")
	}
	p := b.pages[b.opened]
	b.opened++
	return p, nil
}

func (b *fakeBrowser) Close() { b.closed = true }

func newTestRunner(t *testing.T, cfg Config, b Browser, in string) (*Runner, *bytes.Buffer) {
	t.Helper()
	if cfg.Message == "" {
		cfg.Message = "hello groups"
	}
	out := &bytes.Buffer{}
	r := New(cfg, keywords.Default(), b, artifacts.New(t.TempDir(), false), strings.NewReader(in), out)
	r.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return r, out
}

func targets(urls ...string) []target.Target {
	var ts []target.Target
	for _, u := range urls {
		ts = append(ts, target.Target{URL: u})
	}
	return ts
}

func TestRun_PostsToAllTargets(t *testing.T) {
	pages := []*fakePage{newFakePage(t, groupMarkup), newFakePage(t, groupMarkup)}
	b := &fakeBrowser{pages: pages}
	r, _ := newTestRunner(t, Config{}, b, "")

	sum, err := r.Run(context.Background(), targets(
		"https://facebook.com/groups/1",
		"https://facebook.com/groups/2",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Attempted != 2 || sum.Posted != 2 || sum.Failed != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if b.loginCalls != 1 {
		t.Errorf("expected exactly one login, got %d", b.loginCalls)
	}

	for i, p := range pages {
		if len(p.navigated) != 1 {
			t.Errorf("page %d: expected one navigation, got %v", i, p.navigated)
		}
		if len(p.typed) != 1 || p.typed[0].text != "hello groups" {
			t.Errorf("page %d: expected message typed once, got %v", i, p.typed)
		}
		if len(p.Clicks()) == 0 {
			t.Errorf("page %d: expected the post button to be clicked", i)
		}
		if !p.closed {
			t.Errorf("page %d: tab not closed", i)
		}
	}
}

func TestRun_LoginFailureAborts(t *testing.T) {
	b := &fakeBrowser{loginErr: errors.New("bad credentials")}
	r, _ := newTestRunner(t, Config{}, b, "")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err == nil {
		t.Fatal("expected error on login failure")
	}
	if sum.Attempted != 0 {
		t.Errorf("no targets should be attempted after failed login, got %+v", sum)
	}
	if b.opened != 0 {
		t.Errorf("no tabs should be opened after failed login, got %d", b.opened)
	}
}

func TestRun_ContinuesAfterTargetFailure(t *testing.T) {
	pages := []*fakePage{newFakePage(t, emptyMarkup), newFakePage(t, groupMarkup)}
	b := &fakeBrowser{pages: pages}
	r, _ := newTestRunner(t, Config{}, b, "")

	sum, err := r.Run(context.Background(), targets(
		"https://facebook.com/groups/1",
		"https://facebook.com/groups/2",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Attempted != 2 || sum.Posted != 1 || sum.Failed != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(pages[1].typed) != 1 {
		t.Error("second target should still be posted after first failed")
	}
	if !pages[0].closed {
		t.Error("failed target's tab must still be closed")
	}
}

func TestRun_NavigationFailureIsPerTarget(t *testing.T) {
	p := newFakePage(t, groupMarkup)
	p.navErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, _ := newTestRunner(t, Config{}, b, "")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Failed != 1 {
		t.Errorf("expected one failed target, got %+v", sum)
	}
	if len(p.typed) != 0 {
		t.Error("nothing should be typed after failed navigation")
	}
}

func TestRun_InspectReportsWithoutTyping(t *testing.T) {
	p := newFakePage(t, groupMarkup)
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, out := newTestRunner(t, Config{Inspect: true}, b, "")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Inspected != 1 {
		t.Errorf("inspected target should be tallied as inspected, got %+v", sum)
	}
	if sum.Posted != 0 {
		t.Errorf("inspect mode posts nothing, got %+v", sum)
	}
	if len(p.typed) != 0 {
		t.Error("inspect mode must not type")
	}
	if len(p.Clicks()) != 0 {
		t.Error("inspect mode must not click")
	}

	report := out.String()
	if !strings.Contains(report, "composer:") || !strings.Contains(report, "post button:") {
		t.Errorf("inspect report missing element paths:\n%s", report)
	}
}

func TestRun_ManualPostWaitsAndSkipsSubmit(t *testing.T) {
	p := newFakePage(t, groupMarkup)
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, out := newTestRunner(t, Config{ManualPost: true}, b, "\n")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Posted != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(p.typed) != 1 {
		t.Error("manual mode should still type the message")
	}
	if len(p.Clicks()) != 0 {
		t.Error("manual mode must not click the post button")
	}
	if !strings.Contains(out.String(), "manually") {
		t.Errorf("expected manual-post prompt, got %q", out.String())
	}
}

func TestRun_ManualPostAbortedInputFailsTarget(t *testing.T) {
	p := newFakePage(t, groupMarkup)
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, _ := newTestRunner(t, Config{ManualPost: true}, b, "")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Failed != 1 {
		t.Errorf("EOF on confirmation input should fail the target, got %+v", sum)
	}
}

func TestRun_PerTargetOverrideBeatsGlobal(t *testing.T) {
	p := newFakePage(t, groupMarkup)
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, _ := newTestRunner(t, Config{ComposerSelector: ".main"}, b, "")

	sum, err := r.Run(context.Background(), []target.Target{
		{URL: "https://facebook.com/groups/1", ComposerSelector: "#special"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Posted != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	if len(p.typed) != 1 || !strings.Contains(p.typed[0].path, "special") {
		t.Errorf("expected per-target selector to pick #special, typed into %v", p.typed)
	}
}

func TestRun_SubmitStaysInComposerDialog(t *testing.T) {
	// A feed share button precedes the composer dialog and ties its Post
	// button on score; the click must land inside the dialog anyway.
	p := newFakePage(t, `<html><body>
	  <div role="button" aria-label="Share">Share</div>
	  <div role="dialog">
	    <div role="textbox" contenteditable="true" aria-label="Write something..."></div>
	    <div role="button" aria-label="Post">Post</div>
	  </div>
	</body></html>`)
	b := &fakeBrowser{pages: []*fakePage{p}}
	r, _ := newTestRunner(t, Config{}, b, "")

	sum, err := r.Run(context.Background(), targets("https://facebook.com/groups/1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Posted != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	post, err := p.Query(context.Background(), `div[role="dialog"] div[aria-label="Post"]`)
	if err != nil || len(post) != 1 {
		t.Fatalf("failed to locate the dialog's post button: %v %v", post, err)
	}
	clicks := p.Clicks()
	if len(clicks) != 1 || clicks[0] != post[0].Ref {
		t.Errorf("expected one click on the dialog's Post button %q, got %v", post[0].Ref, clicks)
	}
}

func TestRun_CancelledContextStopsRun(t *testing.T) {
	pages := []*fakePage{newFakePage(t, groupMarkup), newFakePage(t, groupMarkup)}
	b := &fakeBrowser{pages: pages}
	r, _ := newTestRunner(t, Config{}, b, "")

	ctx, cancel := context.WithCancel(context.Background())
	r.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Run(ctx, targets(
		"https://facebook.com/groups/1",
		"https://facebook.com/groups/2",
	))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
