// Package codec converts HTML fragments between the delimited text form of
// merge tags ({{first_name}}) and chip markup.
//
// Both directions stream the fragment through the html tokenizer and copy
// every token they do not own byte for byte, so attributes, comments and
// unrelated markup leave exactly as they came in.
package codec

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/delimiter"
	"github.com/walteh/mergetags/pkg/options"
)

// Codec reads the catalog and options on every call and caches nothing.
type Codec struct {
	opts     *options.Options
	format   *delimiter.Format
	renderer *chip.Renderer
	catalog  *catalog.Catalog
}

func New(opts *options.Options, format *delimiter.Format, renderer *chip.Renderer, cat *catalog.Catalog) *Codec {
	return &Codec{
		opts:     opts,
		format:   format,
		renderer: renderer,
		catalog:  cat,
	}
}

// elements whose content the tokenizer hands back as raw text
var rawTextElements = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"textarea":  true,
	"title":     true,
	"xmp":       true,
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\u00a0", "&nbsp;",
)

// escapeText escapes text content the way a browser serializes it.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func (c *Codec) isChipToken(tok html.Token) (string, bool) {
	if tok.Data != "span" {
		return "", false
	}
	var value string
	hasValue, hasClass := false, false
	for _, a := range tok.Attr {
		switch a.Key {
		case chip.AttrValue:
			value, hasValue = a.Val, true
		case chip.AttrClass:
			for _, cls := range strings.Fields(a.Val) {
				if cls == c.opts.TokenClass {
					hasClass = true
				}
			}
		}
	}
	return value, hasValue && hasClass
}

// ChipsToDelimited replaces every chip (and its content) with the delimited
// text of its data-mt-val. The display text is ignored.
func (c *Codec) ChipsToDelimited(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	b.Grow(len(fragment))

	depth := 0
	value := ""
	for {
		tt := z.Next()
		// the tokenizer lower-cases names in place, so copy first
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			if depth == 0 {
				b.WriteString(raw)
			}
			break
		}

		if depth > 0 {
			switch tt {
			case html.StartTagToken:
				if name, _ := z.TagName(); string(name) == "span" {
					depth++
				}
			case html.EndTagToken:
				if name, _ := z.TagName(); string(name) == "span" {
					depth--
					if depth == 0 {
						b.WriteString(escapeText(c.format.Wrap(value)))
					}
				}
			}
			continue
		}

		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if v, ok := c.isChipToken(z.Token()); ok {
				if tt == html.SelfClosingTagToken {
					b.WriteString(escapeText(c.format.Wrap(v)))
					continue
				}
				depth, value = 1, v
				continue
			}
		}

		b.WriteString(raw)
	}

	if depth > 0 {
		// unterminated chip at the end of the fragment
		b.WriteString(escapeText(c.format.Wrap(value)))
	}

	return b.String()
}

// DelimitedToChips replaces delimited spans whose value is in the catalog
// with chip markup. Unknown spans stay verbatim; text already inside a chip
// is never rescanned, which keeps the conversion idempotent.
func (c *Codec) DelimitedToChips(fragment string) string {
	pattern := c.format.Pattern(true)
	z := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	b.Grow(len(fragment))

	depth := 0
	rawElement := ""
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			b.WriteString(raw)
			break
		}

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			switch {
			case depth > 0:
				if tok.Data == "span" {
					depth++
				}
			default:
				if _, ok := c.isChipToken(tok); ok {
					depth = 1
				} else if rawTextElements[tok.Data] {
					rawElement = tok.Data
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch {
			case depth > 0:
				if string(name) == "span" {
					depth--
				}
			case rawElement != "" && string(name) == rawElement:
				rawElement = ""
			}
		case html.TextToken:
			if depth == 0 && rawElement == "" {
				b.WriteString(c.upgradeText(pattern, raw))
				continue
			}
		}

		b.WriteString(raw)
	}

	return b.String()
}

// upgradeText works on the unescaped text so entity-encoded values resolve.
// A text run without a known tag is returned untouched.
func (c *Codec) upgradeText(pattern *delimiter.Pattern, raw string) string {
	text := html.UnescapeString(raw)

	var b strings.Builder
	last, resolved := 0, false
	for _, m := range pattern.Matches(text) {
		tag, ok := c.catalog.ByValue(m.Value)
		if !ok {
			continue
		}
		b.WriteString(escapeText(text[last:m.Start]))
		b.WriteString(c.renderer.ToMarkup(tag, ""))
		last, resolved = m.End, true
	}

	if !resolved {
		return raw
	}

	b.WriteString(escapeText(text[last:]))
	return b.String()
}
