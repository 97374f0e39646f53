package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document implements Page over a static HTML snapshot. It backs discovery
// tests and offline inspection of captured page markup; clicks are recorded
// but mutate nothing unless an OnClick hook is installed.
type Document struct {
	doc  *goquery.Document
	refs map[*html.Node]string
	seq  int

	clicks []string

	// OnClick, when set, is invoked with the clicked candidate's ref. Tests
	// use it to emulate a click revealing new markup via SetHTML.
	OnClick func(ref string)
}

// NewDocument parses an HTML snapshot.
func NewDocument(markup string) (*Document, error) {
	d := &Document{refs: make(map[*html.Node]string)}
	if err := d.SetHTML(markup); err != nil {
		return nil, err
	}
	return d, nil
}

// SetHTML replaces the snapshot. Previously issued candidate refs are
// invalidated.
func (d *Document) SetHTML(markup string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	d.doc = doc
	d.refs = make(map[*html.Node]string)
	return nil
}

// Scan returns all interactive elements in document order.
func (d *Document) Scan(_ context.Context) ([]Candidate, error) {
	var cands []Candidate
	d.doc.Find(interactiveSelector).Each(func(i int, s *goquery.Selection) {
		cands = append(cands, d.describe(s.Get(0), i))
	})
	return cands, nil
}

// Query returns elements matching a CSS selector or XPath expression.
func (d *Document) Query(_ context.Context, selector string) ([]Candidate, error) {
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		nodes, err := htmlquery.QueryAll(d.doc.Get(0), selector)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", selector, err)
		}
		var cands []Candidate
		for i, n := range nodes {
			if n.Type != html.ElementNode {
				continue
			}
			cands = append(cands, d.describe(n, i))
		}
		return cands, nil
	}

	var cands []Candidate
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		cands = append(cands, d.describe(s.Get(0), i))
	})
	return cands, nil
}

// Click records the click and fires the OnClick hook.
func (d *Document) Click(_ context.Context, c Candidate) error {
	d.clicks = append(d.clicks, c.Ref)
	if d.OnClick != nil {
		d.OnClick(c.Ref)
	}
	return nil
}

// Clicks returns the refs clicked so far, in order.
func (d *Document) Clicks() []string {
	return d.clicks
}

func (d *Document) describe(n *html.Node, order int) Candidate {
	sel := &goquery.Selection{Nodes: []*html.Node{n}}
	text := strings.ToLower(strings.TrimSpace(sel.Text()))
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}

	return Candidate{
		Ref:         d.ref(n),
		Tag:         n.Data,
		Role:        attr(n, "role"),
		AriaLabel:   strings.ToLower(attr(n, "aria-label")),
		Placeholder: strings.ToLower(attr(n, "placeholder")),
		TestID:      strings.ToLower(firstNonEmpty(attr(n, "data-testid"), attr(n, "data-test-id"))),
		Class:       strings.ToLower(attr(n, "class")),
		Text:        text,
		Editable:    isEditableNode(n),
		Disabled:    hasAttr(n, "disabled") || attr(n, "aria-disabled") == "true",
		Visible:     isVisibleNode(n),
		Order:       order,
		Path:        nodePath(n),
		Scope:       scopePath(n),
	}
}

func (d *Document) ref(n *html.Node) string {
	if r, ok := d.refs[n]; ok {
		return r
	}
	d.seq++
	r := fmt.Sprintf("doc-%d", d.seq)
	d.refs[n] = r
	return r
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// isEditableNode approximates the live isContentEditable check: the
// contenteditable attribute inherits from ancestors.
func isEditableNode(n *html.Node) bool {
	switch n.Data {
	case "textarea":
		return true
	case "input":
		switch attr(n, "type") {
		case "submit", "button", "checkbox", "radio":
			return false
		}
		return true
	}
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		switch attr(cur, "contenteditable") {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return false
}

// isVisibleNode approximates visibility from static attributes: the hidden
// attribute, aria-hidden, and inline display/visibility styles, checked up
// the ancestor chain.
func isVisibleNode(n *html.Node) bool {
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if hasAttr(cur, "hidden") || attr(cur, "aria-hidden") == "true" {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(attr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// scopePath returns the path of the nearest dialog or pagelet ancestor,
// mirroring the in-page closest() lookup. Empty for body-level elements.
func scopePath(n *html.Node) string {
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if attr(cur, "role") == "dialog" ||
			attr(cur, "aria-modal") == "true" ||
			hasAttr(cur, "data-pagelet") {
			return nodePath(cur)
		}
	}
	return ""
}

// nodePath mirrors the in-page structural path guess: an id shortcut or an
// indexed tag chain up to body.
func nodePath(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		return fmt.Sprintf(`//*[@id=%q]`, id)
	}
	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode && cur.Data != "body"; cur = cur.Parent {
		idx := 0
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == cur.Data {
				idx++
			}
		}
		part := cur.Data
		if idx > 0 {
			part = fmt.Sprintf("%s[%d]", cur.Data, idx+1)
		}
		parts = append([]string{part}, parts...)
	}
	return "//" + strings.Join(parts, "/")
}
