package scraper

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Ordered locator candidates for the homepage search input. Tried in
// priority order; the first candidate with a visible match wins.
var inputCandidates = []string{
	"#header-search-input",
	"input.typeahead.tt-input",
	`input[placeholder*="Search"]`,
	`input[placeholder*="company"]`,
	`input[placeholder*="symbol"]`,
	`input[type="text"]`,
}

// Ordered locator candidates for the search suggestion list.
var suggestionCandidates = []string{
	".tt-suggestion",
	"#autoCompleteBlock li",
	".autocompleteList li",
	"div.autocompleteList li",
	".ng-option",
	"a.ng-option",
	`[role="option"]`,
	"#autoCompleteBlock a",
}

// errNoCandidate is returned by ResolveFirst when no candidate produced a
// visible match; callers wrap it into an ELEMENT_NOT_FOUND error.
var errNoCandidate = fmt.Errorf("no locator candidate resolved a visible element")

// ResolveFirst tries candidates in order and returns the index of the
// first one whose probe reports a visible match. Probe errors (selector
// not present, element detached) move on to the next candidate rather
// than aborting.
func ResolveFirst(candidates []string, probe func(selector string) (bool, error)) (int, error) {
	for i, sel := range candidates {
		visible, err := probe(sel)
		if err != nil {
			continue
		}
		if visible {
			return i, nil
		}
	}
	return -1, errNoCandidate
}

// ValidateSelectors parses every candidate with cascadia so malformed
// selectors fail at startup instead of mid-session.
func ValidateSelectors(candidateLists ...[]string) error {
	for _, list := range candidateLists {
		for _, sel := range list {
			if _, err := cascadia.Parse(sel); err != nil {
				return fmt.Errorf("invalid locator candidate %q: %w", sel, err)
			}
		}
	}
	return nil
}
