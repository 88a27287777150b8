package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestScopeHTML_Match(t *testing.T) {
	raw := `<html><body><header>nav</header><main id="midBody"><p>content</p></main></body></html>`

	scoped, err := ScopeHTML(raw, "main#midBody")
	if err != nil {
		t.Fatalf("ScopeHTML: %v", err)
	}
	if !strings.Contains(scoped, "content") {
		t.Errorf("scoped HTML should contain the main content, got %q", scoped)
	}
	if strings.Contains(scoped, "nav") {
		t.Errorf("scoped HTML should not contain the header, got %q", scoped)
	}
}

func TestScopeHTML_NoMatchReturnsOriginal(t *testing.T) {
	raw := `<html><body><p>content</p></body></html>`

	scoped, err := ScopeHTML(raw, "main#midBody")
	if err != nil {
		t.Fatalf("ScopeHTML: %v", err)
	}
	if scoped != raw {
		t.Errorf("no match should return the original HTML unchanged")
	}
}

func TestScopeHTML_InvalidSelector(t *testing.T) {
	if _, err := ScopeHTML("<p>x</p>", "div[unclosed"); err == nil {
		t.Error("expected an error for a malformed selector")
	}
}

func TestFlatten_AdjacentSpans(t *testing.T) {
	html := `<div><span>Open</span><span> 1,534.00 </span><span>High</span><span>1,550.00</span></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := Flatten(doc.Selection)
	want := "Open1,534.00High1,550.00"
	if got != want {
		t.Errorf("Flatten = %q, want %q", got, want)
	}
}

func TestFlatten_SkipsScriptAndStyle(t *testing.T) {
	html := `<div><script>var x = 1;</script><style>.a{}</style><span>Open</span></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := Flatten(doc.Selection)
	if got != "Open" {
		t.Errorf("Flatten = %q, want %q", got, "Open")
	}
}

func TestPlainText_SeparatesTextNodes(t *testing.T) {
	html := `<table><tr><td>100</td><td>1.50</td></tr></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := PlainText(doc.Selection)
	if got != "100\n1.50" {
		t.Errorf("PlainText = %q, want %q", got, "100\n1.50")
	}
}
