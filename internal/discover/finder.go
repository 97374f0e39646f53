package discover

import (
	"context"
	"errors"
	"fmt"

	"groupcast/internal/logger"
	"groupcast/internal/page"
)

// ErrNotFound is returned when every strategy has been exhausted without a
// visible, enabled match.
var ErrNotFound = errors.New("no matching element found")

// Composer fallback selectors for current desktop and mobile group layouts.
var composerStaticSelectors = []string{
	`div[role="textbox"][contenteditable="true"]`,
	`[data-pagelet="GroupInlineComposer"] div[role="textbox"]`,
	`textarea[name="xc_message"]`,
}

// Submit fallback selectors.
var submitStaticSelectors = []string{
	`div[aria-label="Post"][role="button"]`,
	`[data-testid="react-composer-post-button"]`,
	`button[type="submit"][value="Post"]`,
}

// Query describes one discovery request.
type Query struct {
	Kind     Kind
	Keywords []string

	// Override is a per-target or global selector tried before any
	// heuristic. CSS or XPath.
	Override string

	// Scope, when set, restricts heuristic candidates to elements whose
	// Scope matches: submit discovery passes the found composer's Scope so
	// feed buttons outside the composer's dialog or pagelet never rank.
	// An explicit Override is the caller's call and is not scoped.
	Scope string

	// StaticSelectors replace the built-in fallback selector list when set.
	StaticSelectors []string

	// SurfaceRetries bounds the click-a-teaser-and-rescan attempts for
	// composer discovery. Zero means the default of 3.
	SurfaceRetries int
}

const defaultSurfaceRetries = 3

// Finder runs the discovery fallback chain:
//
//	Override -> ScoredScan -> StaticSelectorList -> SurfaceClickRetry -> NotFound
//
// A strategy is advanced past only when it yields zero visible-and-enabled
// candidates. On an unchanged DOM the chain is deterministic: repeated
// calls return the same element.
type Finder struct {
	scorer *Scorer
}

// NewFinder creates a finder with the given scoring table.
func NewFinder(w Weights) *Finder {
	return &Finder{scorer: NewScorer(w)}
}

// Find locates the requested element, or returns ErrNotFound.
func (f *Finder) Find(ctx context.Context, p page.Page, q Query) (page.Candidate, error) {
	if q.Override != "" {
		if c, ok := f.byOverride(ctx, p, q.Override); ok {
			return c, nil
		}
	}

	if c, ok := f.byScan(ctx, p, q); ok {
		return c, nil
	}

	if c, ok := f.byStaticSelectors(ctx, p, q); ok {
		return c, nil
	}

	if q.Kind == KindComposer {
		if c, ok := f.bySurfaceClick(ctx, p, q); ok {
			return c, nil
		}
	}

	return page.Candidate{}, fmt.Errorf("%w: %s", ErrNotFound, q.Kind)
}

// byOverride tries the caller-supplied selector. Selector errors are logged
// and treated as a miss so the chain can continue.
func (f *Finder) byOverride(ctx context.Context, p page.Page, selector string) (page.Candidate, bool) {
	cands, err := p.Query(ctx, selector)
	if err != nil {
		logger.Debug("override selector failed", "selector", selector, "error", err)
		return page.Candidate{}, false
	}
	return firstActionable(cands)
}

// byScan ranks a full interactive-element scan with the scorer.
func (f *Finder) byScan(ctx context.Context, p page.Page, q Query) (page.Candidate, bool) {
	cands, err := p.Scan(ctx)
	if err != nil {
		logger.Debug("page scan failed", "kind", q.Kind.String(), "error", err)
		return page.Candidate{}, false
	}

	for _, sc := range f.scorer.Rank(inScope(cands, q.Scope), q.Kind, q.Keywords) {
		if sc.Candidate.Actionable() {
			logger.Debug("scored scan matched",
				"kind", q.Kind.String(),
				"score", sc.Score,
				"path", sc.Candidate.Path)
			return sc.Candidate, true
		}
	}
	return page.Candidate{}, false
}

// byStaticSelectors walks the fixed selector list in order.
func (f *Finder) byStaticSelectors(ctx context.Context, p page.Page, q Query) (page.Candidate, bool) {
	selectors := q.StaticSelectors
	if len(selectors) == 0 {
		switch q.Kind {
		case KindComposer:
			selectors = composerStaticSelectors
		case KindSubmit:
			selectors = submitStaticSelectors
		}
	}

	for _, sel := range selectors {
		cands, err := p.Query(ctx, sel)
		if err != nil {
			logger.Debug("static selector failed", "selector", sel, "error", err)
			continue
		}
		if c, ok := firstActionable(inScope(cands, q.Scope)); ok {
			logger.Debug("static selector matched", "kind", q.Kind.String(), "selector", sel)
			return c, true
		}
	}
	return page.Candidate{}, false
}

// bySurfaceClick handles layouts where the inline composer is a teaser that
// must be clicked to open the real editable dialog: click the best surface
// candidate, rescan, repeat up to the retry budget.
func (f *Finder) bySurfaceClick(ctx context.Context, p page.Page, q Query) (page.Candidate, bool) {
	retries := q.SurfaceRetries
	if retries <= 0 {
		retries = defaultSurfaceRetries
	}

	for attempt := 1; attempt <= retries; attempt++ {
		cands, err := p.Scan(ctx)
		if err != nil {
			logger.Debug("surface scan failed", "attempt", attempt, "error", err)
			return page.Candidate{}, false
		}

		surfaces := f.scorer.Rank(cands, KindSurface, q.Keywords)
		if len(surfaces) == 0 {
			return page.Candidate{}, false
		}

		surface := surfaces[0].Candidate
		logger.Debug("clicking composer surface", "attempt", attempt, "path", surface.Path)
		if err := p.Click(ctx, surface); err != nil {
			logger.Debug("surface click failed", "attempt", attempt, "error", err)
			return page.Candidate{}, false
		}

		if c, ok := f.byScan(ctx, p, q); ok {
			return c, true
		}
		if c, ok := f.byStaticSelectors(ctx, p, q); ok {
			return c, true
		}
	}
	return page.Candidate{}, false
}

// inScope keeps candidates inside the given container scope. An empty scope
// means the whole page.
func inScope(cands []page.Candidate, scope string) []page.Candidate {
	if scope == "" {
		return cands
	}
	var out []page.Candidate
	for _, c := range cands {
		if c.Scope == scope {
			out = append(out, c)
		}
	}
	return out
}

// firstActionable returns the first visible, enabled candidate.
func firstActionable(cands []page.Candidate) (page.Candidate, bool) {
	for _, c := range cands {
		if c.Actionable() {
			return c, true
		}
	}
	return page.Candidate{}, false
}
