// Package page abstracts DOM inspection behind a small query capability.
//
// Discovery code depends only on the Page interface; the Tab implementation
// talks to a live Chrome tab over CDP, while Document works on a static
// HTML snapshot and backs tests and offline artifact inspection.
package page

import "context"

// Candidate is an ephemeral reference to a DOM element plus the metadata
// discovery heuristics score on. It is only valid for the page state it was
// captured from.
type Candidate struct {
	// Ref addresses the element for follow-up actions. Tab candidates carry
	// a transient data-gc-ref attribute value; Document candidates an
	// internal index.
	Ref string `json:"ref"`

	Tag         string `json:"tag"`
	Role        string `json:"role"`
	AriaLabel   string `json:"ariaLabel"`
	Placeholder string `json:"placeholder"`
	TestID      string `json:"testId"`
	Class       string `json:"class"`
	Text        string `json:"text"`

	Editable bool `json:"editable"`
	Disabled bool `json:"disabled"`
	Visible  bool `json:"visible"`

	// Order is the element's DOM traversal position, used for tie-breaking.
	Order int `json:"order"`

	// Path is a best-guess structural path to the element, for debug
	// artifacts and inspect output.
	Path string `json:"path"`

	// Scope is the structural path of the element's nearest dialog or
	// pagelet ancestor, empty for elements sitting directly in the page
	// body. Submit discovery uses it to stay inside the composer's
	// container instead of matching feed buttons elsewhere on the page.
	Scope string `json:"scope"`
}

// Actionable reports whether the element can be interacted with.
func (c Candidate) Actionable() bool {
	return c.Visible && !c.Disabled
}

// Page is the query capability discovery depends on.
type Page interface {
	// Scan returns all interactive elements (editable surfaces and
	// clickable controls) with their metadata, in DOM traversal order.
	Scan(ctx context.Context) ([]Candidate, error)

	// Query returns elements matching a CSS selector or XPath expression.
	Query(ctx context.Context, selector string) ([]Candidate, error)

	// Click clicks a previously returned candidate.
	Click(ctx context.Context, c Candidate) error
}
