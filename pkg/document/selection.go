package document

import (
	"cmp"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
)

// Caret returns the current selection.
func (d *Document) Caret() Range {
	return d.sel
}

// SetCaret collapses the selection at (node, offset), clamping the offset.
func (d *Document) SetCaret(node *html.Node, offset int) {
	p := d.clamp(Position{Node: node, Offset: offset})
	d.sel = Range{Start: p, End: p}
}

// Select sets the selection, clamping both ends. Ends outside the body fall
// back to the end of the body.
func (d *Document) Select(r Range) {
	d.sel = Range{Start: d.clamp(r.Start), End: d.clamp(r.End)}
}

// SelectNode selects n as a whole, from its parent's point of view.
func (d *Document) SelectNode(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	idx := indexOf(n)
	d.sel = Range{
		Start: Position{Node: n.Parent, Offset: idx},
		End:   Position{Node: n.Parent, Offset: idx + 1},
	}
}

// Collapse collapses the selection onto its start or end.
func (d *Document) Collapse(toStart bool) {
	if toStart {
		d.sel.End = d.sel.Start
		return
	}
	d.sel.Start = d.sel.End
}

// Node is the node the selection is about: the element when exactly one
// element is selected, otherwise the start container.
func (d *Document) Node() *html.Node {
	s, e := d.clamp(d.sel.Start), d.clamp(d.sel.End)
	if s.Node == e.Node && s.Node.Type != html.TextNode && e.Offset == s.Offset+1 {
		if c := childAt(s.Node, s.Offset); c != nil {
			return c
		}
	}
	return s.Node
}

// ReplaceSelection places the detached node n at the selection. A non
// collapsed selection is deleted first, splitting the boundary text nodes,
// and n goes where the range collapsed. The caret ends up just after n.
func (d *Document) ReplaceSelection(n *html.Node) error {
	if n == nil {
		return errors.New("nothing to insert")
	}
	if n.Parent != nil {
		return errors.New("node is already attached")
	}

	s, e := d.clamp(d.sel.Start), d.clamp(d.sel.End)
	if d.compare(e, s) < 0 {
		s, e = e, s
	}

	if s.Node != e.Node {
		parent, ref := deleteBetween(s, e)
		parent.InsertBefore(n, ref)
		d.SetCaret(parent, indexOf(n)+1)
		return nil
	}

	container := s.Node
	if container.Type == html.TextNode {
		before, after := container.Data[:s.Offset], container.Data[e.Offset:]
		parent := container.Parent
		container.Data = before
		parent.InsertBefore(n, container.NextSibling)
		if after != "" {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, n.NextSibling)
		}
		if before == "" {
			parent.RemoveChild(container)
		}
		d.SetCaret(parent, indexOf(n)+1)
		return nil
	}

	for i := s.Offset; i < e.Offset; i++ {
		if c := childAt(container, s.Offset); c != nil {
			container.RemoveChild(c)
		}
	}
	container.InsertBefore(n, childAt(container, s.Offset))
	d.SetCaret(container, indexOf(n)+1)
	return nil
}

// deleteBetween removes everything between s and e, which sit in different
// containers with s first. It returns where the range collapsed to as a
// parent and the child that now follows the collapse point.
func deleteBetween(s, e Position) (parent, ref *html.Node) {
	var emptied []*html.Node

	sp, sref := s.Node, childAt(s.Node, s.Offset)
	if t := s.Node; t.Type == html.TextNode {
		t.Data = t.Data[:s.Offset]
		sp, sref = t.Parent, t.NextSibling
		if t.Data == "" {
			emptied = append(emptied, t)
		}
	}

	ep, eref := e.Node, childAt(e.Node, e.Offset)
	if u := e.Node; u.Type == html.TextNode {
		u.Data = u.Data[e.Offset:]
		ep, eref = u.Parent, u
		if u.Data == "" {
			emptied = append(emptied, u)
		}
	}

	common := commonAncestor(sp, ep)

	from := sref
	if sp != common {
		removeSiblings(sref, nil)
		a := sp
		for a.Parent != common {
			removeSiblings(a.NextSibling, nil)
			a = a.Parent
		}
		from = a.NextSibling
	}

	to := eref
	if ep != common {
		removeSiblings(ep.FirstChild, eref)
		b := ep
		for b.Parent != common {
			removeSiblings(b.Parent.FirstChild, b)
			b = b.Parent
		}
		to = b
	}

	removeSiblings(from, to)

	parent, ref = sp, nil
	if sp == common {
		ref = to
	}

	for _, x := range emptied {
		if x == ref {
			ref = x.NextSibling
		}
		if x.Parent != nil {
			x.Parent.RemoveChild(x)
		}
	}
	return parent, ref
}

// removeSiblings detaches from and the siblings after it, stopping before
// stop (nil runs to the end).
func removeSiblings(from, stop *html.Node) {
	for x := from; x != nil && x != stop; {
		next := x.NextSibling
		x.Parent.RemoveChild(x)
		x = next
	}
}

func commonAncestor(a, b *html.Node) *html.Node {
	seen := map[*html.Node]bool{}
	for n := a; n != nil; n = n.Parent {
		seen[n] = true
	}
	for n := b; n != nil; n = n.Parent {
		if seen[n] {
			return n
		}
	}
	return nil
}

// compare orders two boundary points in document order.
func (d *Document) compare(a, b Position) int {
	ka, kb := d.key(a), d.key(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if ka[i] != kb[i] {
			return cmp.Compare(ka[i], kb[i])
		}
	}
	return cmp.Compare(len(ka), len(kb))
}

func (d *Document) key(p Position) []int {
	path, _ := d.Path(p.Node)
	return append(path, p.Offset)
}

func (d *Document) clamp(p Position) Position {
	if p.Node == nil || !d.contains(p.Node) {
		return Position{Node: d.body, Offset: childCount(d.body)}
	}
	limit := childCount(p.Node)
	if p.Node.Type == html.TextNode {
		limit = len(p.Node.Data)
	}
	p.Offset = max(0, min(p.Offset, limit))
	return p
}
