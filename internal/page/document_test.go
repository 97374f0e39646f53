package page

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

const groupFixture = `<html><body>
	<div id="composer-teaser" role="button" aria-label="Write something...">
		<span>Write something...</span>
	</div>
	<div role="textbox" contenteditable="true" aria-label="Write something..." class="notranslate composer">
		<span>editable area</span>
	</div>
	<div role="button" aria-label="Post" data-testid="react-composer-post-button">Post</div>
	<button disabled>Post</button>
	<div role="button" style="display: none">Hidden button</div>
	<textarea placeholder="Add a comment"></textarea>
</body></html>`

func mustDocument(t *testing.T, markup string) *Document {
	t.Helper()
	d, err := NewDocument(markup)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	return d
}

func TestDocument_Scan_FindsInteractiveElements(t *testing.T) {
	d := mustDocument(t, groupFixture)

	cands, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// teaser, editable div, post button, disabled button, hidden button, textarea
	if len(cands) != 6 {
		t.Fatalf("expected 6 candidates, got %d: %+v", len(cands), cands)
	}

	for i, c := range cands {
		if c.Order != i {
			t.Errorf("candidate %d: expected Order %d, got %d", i, i, c.Order)
		}
	}
}

func TestDocument_Scan_Metadata(t *testing.T) {
	d := mustDocument(t, groupFixture)

	cands, _ := d.Scan(context.Background())

	editable := cands[1]
	if !editable.Editable {
		t.Error("contenteditable div should be editable")
	}
	if editable.Role != "textbox" {
		t.Errorf("expected role textbox, got %q", editable.Role)
	}
	if editable.AriaLabel != "write something..." {
		t.Errorf("expected lower-cased aria label, got %q", editable.AriaLabel)
	}
	if editable.Class != "notranslate composer" {
		t.Errorf("unexpected class %q", editable.Class)
	}

	post := cands[2]
	if post.TestID != "react-composer-post-button" {
		t.Errorf("expected test id, got %q", post.TestID)
	}
	if post.Text != "post" {
		t.Errorf("expected lower-cased text, got %q", post.Text)
	}

	if !cands[3].Disabled {
		t.Error("disabled button should be marked disabled")
	}
	if cands[4].Visible {
		t.Error("display:none button should not be visible")
	}
	if !cands[5].Editable {
		t.Error("textarea should be editable")
	}
}

func TestDocument_Scan_StableRefs(t *testing.T) {
	d := mustDocument(t, groupFixture)
	ctx := context.Background()

	first, _ := d.Scan(ctx)
	second, _ := d.Scan(ctx)

	for i := range first {
		if first[i].Ref != second[i].Ref {
			t.Errorf("candidate %d: ref changed between scans (%q vs %q)", i, first[i].Ref, second[i].Ref)
		}
	}
}

func TestDocument_Query_CSS(t *testing.T) {
	d := mustDocument(t, groupFixture)

	cands, err := d.Query(context.Background(), `div[role="textbox"][contenteditable="true"]`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if !cands[0].Editable {
		t.Error("queried composer should be editable")
	}
}

func TestDocument_Query_XPath(t *testing.T) {
	d := mustDocument(t, groupFixture)

	cands, err := d.Query(context.Background(), `//div[@role='button' and @aria-label='Post']`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cands), cands)
	}
	if cands[0].TestID != "react-composer-post-button" {
		t.Errorf("unexpected element matched: %+v", cands[0])
	}
}

func TestDocument_Query_InvalidXPath(t *testing.T) {
	d := mustDocument(t, groupFixture)

	_, err := d.Query(context.Background(), "//div[unclosed")
	if err == nil {
		t.Error("expected error for invalid xpath")
	}
}

func TestDocument_Click_RecordsAndFiresHook(t *testing.T) {
	d := mustDocument(t, groupFixture)
	ctx := context.Background()

	var hooked string
	d.OnClick = func(ref string) { hooked = ref }

	cands, _ := d.Scan(ctx)
	if err := d.Click(ctx, cands[0]); err != nil {
		t.Fatalf("Click() error = %v", err)
	}

	if len(d.Clicks()) != 1 || d.Clicks()[0] != cands[0].Ref {
		t.Errorf("expected recorded click on %q, got %v", cands[0].Ref, d.Clicks())
	}
	if hooked != cands[0].Ref {
		t.Errorf("expected OnClick hook with %q, got %q", cands[0].Ref, hooked)
	}
}

func TestDocument_HiddenAncestorHidesDescendants(t *testing.T) {
	d := mustDocument(t, `<html><body>
		<div hidden><button>Post</button></div>
		<div aria-hidden="true"><div role="button">Share</div></div>
		<button>Visible</button>
	</body></html>`)

	cands, _ := d.Scan(context.Background())
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	if cands[0].Visible || cands[1].Visible {
		t.Error("descendants of hidden ancestors should not be visible")
	}
	if !cands[2].Visible {
		t.Error("plain button should be visible")
	}
}

func TestDocument_PathGuess(t *testing.T) {
	d := mustDocument(t, `<html><body>
		<div id="anchor"><button>With ID parent</button></div>
		<div><span></span><button>Second-level</button></div>
	</body></html>`)

	cands, _ := d.Scan(context.Background())
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}

	if cands[0].Path != "//div/button" {
		t.Errorf("unexpected path for first button: %q", cands[0].Path)
	}
	if cands[1].Path != "//div[2]/button" {
		t.Errorf("unexpected path for second button: %q", cands[1].Path)
	}
}

func TestDocument_IDPathShortcut(t *testing.T) {
	d := mustDocument(t, `<html><body><button id="send">Post</button></body></html>`)

	cands, _ := d.Scan(context.Background())
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Path != `//*[@id="send"]` {
		t.Errorf("expected id path shortcut, got %q", cands[0].Path)
	}
}

func TestDocument_Scope(t *testing.T) {
	d := mustDocument(t, `<html><body>
		<button>Share</button>
		<div role="dialog">
			<button>Post</button>
		</div>
		<div data-pagelet="GroupInlineComposer">
			<div role="textbox" contenteditable="true"></div>
		</div>
	</body></html>`)

	cands, _ := d.Scan(context.Background())
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}

	if cands[0].Scope != "" {
		t.Errorf("body-level button should have empty scope, got %q", cands[0].Scope)
	}
	if cands[1].Scope == "" || cands[1].Scope == cands[2].Scope {
		t.Errorf("dialog and pagelet scopes should be distinct and non-empty, got %q and %q",
			cands[1].Scope, cands[2].Scope)
	}
	if cands[2].Scope != "//div[2]" {
		t.Errorf("expected pagelet container path, got %q", cands[2].Scope)
	}
}

func TestDocument_TextExcerptKeepsRunesIntact(t *testing.T) {
	label := strings.Repeat("п", 300)
	d := mustDocument(t, `<html><body><button>`+label+`</button></body></html>`)

	cands, _ := d.Scan(context.Background())
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}

	text := cands[0].Text
	if !utf8.ValidString(text) {
		t.Error("text excerpt is not valid UTF-8")
	}
	if n := len([]rune(text)); n != 200 {
		t.Errorf("expected 200-rune excerpt, got %d", n)
	}
}
