package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy tries to recover one field from a snapshot.
type Strategy func(s *Snapshot) (string, bool)

// Chain is an ordered fallback list; the first strategy that succeeds wins
// and the rest are never evaluated.
type Chain []Strategy

func (c Chain) Resolve(s *Snapshot) (string, bool) {
	for _, strategy := range c {
		if v, ok := strategy(s); ok {
			return v, true
		}
	}
	return "", false
}

// FirstText matches the first element for selector and succeeds when its
// trimmed text is non-empty.
func FirstText(selector string) Strategy {
	return func(s *Snapshot) (string, bool) {
		text := strings.TrimSpace(s.Document.Find(selector).First().Text())
		return text, text != ""
	}
}

// Selectors builds a FirstText chain in the given priority order.
func Selectors(selectors ...string) Chain {
	chain := make(Chain, 0, len(selectors))
	for _, sel := range selectors {
		chain = append(chain, FirstText(sel))
	}
	return chain
}

// anyText reports whether some element matched by one of selectors has text
// accepted by match.
func anyText(doc *goquery.Document, selectors []string, match func(string) bool) bool {
	for _, sel := range selectors {
		found := false
		doc.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if match(el.Text()) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}
