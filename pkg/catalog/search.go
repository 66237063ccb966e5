package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultSearchLimit caps results when no explicit limit is given.
const DefaultSearchLimit = 10

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

func suggestionOf(t Tag) Suggestion {
	return Suggestion{Text: t.Label(), Value: t.Value}
}

func limitOf(max int) int {
	if max <= 0 {
		return DefaultSearchLimit
	}
	return max
}

// Search filters the flat list by a case-insensitive substring of the title
// or the value, keeping catalog order. An empty pattern matches everything.
func (c *Catalog) Search(pattern string, max int) []Suggestion {
	q := strings.ToLower(pattern)
	limit := limitOf(max)

	out := make([]Suggestion, 0, min(limit, len(c.flat)))
	for _, t := range c.flat {
		if len(out) == limit {
			break
		}
		if q == "" ||
			strings.Contains(strings.ToLower(t.Label()), q) ||
			strings.Contains(strings.ToLower(t.Value), q) {
			out = append(out, suggestionOf(t))
		}
	}
	return out
}

type tagSource []Tag

func (s tagSource) String(i int) string { return s[i].Label() + " " + s[i].Value }
func (s tagSource) Len() int            { return len(s) }

// FuzzySearch ranks tags by fuzzy match quality against "title value".
func (c *Catalog) FuzzySearch(pattern string, max int) []Suggestion {
	if pattern == "" {
		return c.Search("", max)
	}
	limit := limitOf(max)

	matches := fuzzy.FindFrom(pattern, tagSource(c.flat))
	out := make([]Suggestion, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, suggestionOf(c.flat[m.Index]))
	}
	return out
}
