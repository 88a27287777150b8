package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ScopeHTML parses rawHTML, matches elements against the given CSS
// selector, and returns the concatenated outer HTML of all matched
// elements.
//
// If no elements match, the original rawHTML is returned unchanged so that
// downstream extraction still has something to work with.
func ScopeHTML(rawHTML, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}

// Flatten returns the whitespace-free concatenation of the selection's
// text: each text node is trimmed and joined with no separator, so a label
// and its value render adjacent ("Open1,534.00") the way the site lays
// them out in sibling spans.
func Flatten(sel *goquery.Selection) string {
	return strings.Join(textParts(sel), "")
}

// PlainText returns the selection's text with one newline between text
// nodes. The regex fallback strategy needs separators between cells; the
// field extractor needs them gone.
func PlainText(sel *goquery.Selection) string {
	return strings.Join(textParts(sel), "\n")
}

func textParts(sel *goquery.Selection) []string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return parts
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
