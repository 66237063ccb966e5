package document

import (
	"golang.org/x/net/html"
)

type point struct {
	path   []int
	offset int
}

type snapshot struct {
	body  string
	tree  *html.Node
	start point
	end   point
}

type historyState struct {
	undo []snapshot
	redo []snapshot
}

func (d *Document) snapshot() snapshot {
	return snapshot{
		body:  d.HTML(),
		tree:  clone(d.body),
		start: d.point(d.sel.Start),
		end:   d.point(d.sel.End),
	}
}

func (d *Document) point(p Position) point {
	path, ok := d.Path(p.Node)
	if !ok {
		return point{offset: childCount(d.body)}
	}
	return point{path: path, offset: p.Offset}
}

func (d *Document) restore(s snapshot) {
	d.body = clone(s.tree)
	d.sel = Range{Start: d.position(s.start), End: d.position(s.end)}
}

func (d *Document) position(p point) Position {
	n, ok := d.Resolve(p.path)
	if !ok {
		return d.clamp(Position{})
	}
	return d.clamp(Position{Node: n, Offset: p.offset})
}

func (d *Document) recordUndo(prev snapshot) {
	if d.limit <= 0 {
		return
	}

	d.hist.undo = append(d.hist.undo, prev)
	if len(d.hist.undo) > d.limit {
		d.hist.undo = d.hist.undo[len(d.hist.undo)-d.limit:]
	}
	d.hist.redo = nil
}

// Transact runs fn as one undoable edit. Nested calls join the outermost
// scope. If fn fails or panics the body and selection are put back the way
// they were when this scope opened.
func (d *Document) Transact(fn func() error) error {
	return d.transact(fn, true)
}

// Apply runs fn with the rollback of Transact but records no undo entry of
// its own. Inside an open Transact it joins that scope.
func (d *Document) Apply(fn func() error) error {
	return d.transact(fn, false)
}

func (d *Document) transact(fn func() error, record bool) (err error) {
	before := d.snapshot()
	sel := d.sel
	d.depth++

	defer func() {
		d.depth--
		if r := recover(); r != nil {
			d.restore(before)
			panic(r)
		}
		if err != nil {
			d.restore(before)
			return
		}
		d.sel = Range{
			Start: d.rehome(d.sel.Start, sel.Start, before.start),
			End:   d.rehome(d.sel.End, sel.End, before.end),
		}
		if record && d.depth == 0 && d.HTML() != before.body {
			d.recordUndo(before)
		}
	}()

	return fn()
}

// rehome keeps p when it is still in the body. When the node p points into
// was detached during the scope, p moves just after whatever now holds the
// detached subtree's old slot; was is where p's node sat when the scope
// opened.
func (d *Document) rehome(p, opened Position, was point) Position {
	if p.Node != nil && d.contains(p.Node) {
		return d.clamp(p)
	}
	if p.Node == nil || p.Node != opened.Node || was.path == nil {
		return d.clamp(Position{})
	}

	steps := 0
	for n := p.Node; n.Parent != nil; n = n.Parent {
		steps++
	}
	slot := len(was.path) - steps
	if slot < 1 {
		return d.clamp(Position{})
	}
	parent, ok := d.Resolve(was.path[:slot-1])
	if !ok {
		return d.clamp(Position{})
	}
	return d.clamp(Position{Node: parent, Offset: was.path[slot-1] + 1})
}

// InTransaction reports whether a Transact scope is open.
func (d *Document) InTransaction() bool { return d.depth > 0 }

func (d *Document) CanUndo() bool { return len(d.hist.undo) > 0 }

func (d *Document) CanRedo() bool { return len(d.hist.redo) > 0 }

func (d *Document) Undo() bool {
	if len(d.hist.undo) == 0 || d.depth > 0 {
		return false
	}

	cur := d.snapshot()
	i := len(d.hist.undo) - 1
	prev := d.hist.undo[i]
	d.hist.undo = d.hist.undo[:i]
	d.hist.redo = append(d.hist.redo, cur)

	d.restore(prev)
	return true
}

func (d *Document) Redo() bool {
	if len(d.hist.redo) == 0 || d.depth > 0 {
		return false
	}

	cur := d.snapshot()
	i := len(d.hist.redo) - 1
	next := d.hist.redo[i]
	d.hist.redo = d.hist.redo[:i]

	if d.limit > 0 {
		d.hist.undo = append(d.hist.undo, cur)
		if len(d.hist.undo) > d.limit {
			d.hist.undo = d.hist.undo[len(d.hist.undo)-d.limit:]
		}
	}

	d.restore(next)
	return true
}
