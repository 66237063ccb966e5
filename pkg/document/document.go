// Package document is a minimal in-memory editing surface: an HTML body, a
// DOM-style selection and grouped undo/redo.
package document

import (
	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/chip"
)

// Position is a DOM boundary point. For text nodes Offset is a byte offset
// into the text, for elements it is a child index.
type Position struct {
	Node   *html.Node
	Offset int
}

// Range is a selection between two boundary points.
type Range struct {
	Start Position
	End   Position
}

func (r Range) Collapsed() bool {
	return r.Start == r.End
}

type Document struct {
	body  *html.Node
	sel   Range
	limit int
	hist  historyState
	depth int
}

// New parses fragment into a fresh document with the caret at the end of the
// body. historyLimit bounds the undo stack; zero disables undo.
func New(fragment string, historyLimit int) (*Document, error) {
	d := &Document{limit: historyLimit}
	if err := d.SetHTML(fragment); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) Body() *html.Node {
	return d.body
}

// HTML serializes the body contents.
func (d *Document) HTML() string {
	return chip.RenderChildren(d.body)
}

// SetHTML replaces the body contents and moves the caret to the end. It does
// not record undo on its own; wrap it in Transact for that.
func (d *Document) SetHTML(fragment string) error {
	body, err := chip.ParseFragment(fragment)
	if err != nil {
		return errors.Errorf("setting document html: %w", err)
	}
	d.body = body
	d.SetCaret(body, childCount(body))
	return nil
}

// Remove detaches n. A selection left inside the removed subtree collapses to
// where n used to be.
func (d *Document) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	parent, idx := n.Parent, indexOf(n)
	parent.RemoveChild(n)
	if !d.contains(d.sel.Start.Node) || !d.contains(d.sel.End.Node) {
		d.SetCaret(parent, idx)
	}
}

func (d *Document) contains(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.body {
			return true
		}
	}
	return false
}

// Path addresses n by child indexes from the body. The body itself is the
// empty path.
func (d *Document) Path(n *html.Node) ([]int, bool) {
	var rev []int
	for ; n != nil && n != d.body; n = n.Parent {
		if n.Parent == nil {
			return nil, false
		}
		rev = append(rev, indexOf(n))
	}
	if n == nil {
		return nil, false
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path, true
}

// Resolve is the inverse of Path.
func (d *Document) Resolve(path []int) (*html.Node, bool) {
	n := d.body
	for _, idx := range path {
		n = childAt(n, idx)
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

func indexOf(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

func childAt(n *html.Node, idx int) *html.Node {
	if idx < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && idx > 0; c = c.NextSibling {
		idx--
	}
	return c
}

func childCount(n *html.Node) int {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
	}
	return i
}

func clone(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(clone(c))
	}
	return out
}
