// Package chip builds the protected, non-editable element that represents a
// merge tag inside the editing surface:
//
//	<span class="mce-mergetag" data-mt-val="first_name" contenteditable="false">
//	  <span class="mce-mergetag-affix">{{</span>first_name<span class="mce-mergetag-affix">}}</span>
//	</span>
//
// A chip is identified by its token class and its data-mt-val attribute,
// never by node identity, so chips can be dropped and rebuilt freely.
package chip

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/options"
)

const (
	AttrValue    = "data-mt-val"
	AttrUID      = "data-mt-uid"
	AttrEditable = "contenteditable"
	AttrClass    = "class"
)

// Renderer creates chips from the live options. It keeps no other state.
type Renderer struct {
	opts *options.Options
}

func New(opts *options.Options) *Renderer {
	return &Renderer{opts: opts}
}

// DisplayText is the raw value in value mode, otherwise the title (or the
// value when the title is empty).
func (r *Renderer) DisplayText(tag catalog.Tag) string {
	if r.opts.ShowsValue() {
		return tag.Value
	}
	return tag.Label()
}

// CreateChip builds a detached chip element. uid is optional.
func (r *Renderer) CreateChip(tag catalog.Tag, uid string) *html.Node {
	el := newSpan(
		html.Attribute{Key: AttrClass, Val: r.opts.TokenClass},
		html.Attribute{Key: AttrValue, Val: tag.Value},
	)
	if uid != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: AttrUID, Val: uid})
	}
	el.Attr = append(el.Attr, html.Attribute{Key: AttrEditable, Val: "false"})

	text := &html.Node{Type: html.TextNode, Data: r.DisplayText(tag)}

	if !r.opts.ShowBraces {
		el.AppendChild(text)
		return el
	}

	el.AppendChild(r.brace(r.opts.Prefix))
	el.AppendChild(text)
	el.AppendChild(r.brace(r.opts.Suffix))
	return el
}

func (r *Renderer) brace(literal string) *html.Node {
	b := newSpan(html.Attribute{Key: AttrClass, Val: r.opts.BraceClass})
	b.AppendChild(&html.Node{Type: html.TextNode, Data: literal})
	return b
}

// ToMarkup serializes the element CreateChip would build.
func (r *Renderer) ToMarkup(tag catalog.Tag, uid string) string {
	return Render(r.CreateChip(tag, uid))
}

// IsChip reports whether n is a chip under the current token class.
func (r *Renderer) IsChip(n *html.Node) bool {
	return IsChip(n, r.opts.TokenClass)
}

// IsCanonical reports whether a chip carries the brace markers. Chips built
// before brace markers existed lack them and need migrating.
func (r *Renderer) IsCanonical(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && HasClass(c, r.opts.BraceClass) {
			return true
		}
	}
	return false
}

// Render serializes a single node.
func Render(n *html.Node) string {
	var b strings.Builder
	// a strings.Builder never fails and chips never hold void children
	_ = html.Render(&b, n)
	return b.String()
}

func newSpan(attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Span.String(),
		DataAtom: atom.Span,
		Attr:     attrs,
	}
}
