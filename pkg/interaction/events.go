package interaction

import (
	"golang.org/x/net/html"
)

// ClickEvent is a click on the editing surface.
type ClickEvent struct {
	Target *html.Node

	prevented bool
}

func (e *ClickEvent) PreventDefault()        { e.prevented = true }
func (e *ClickEvent) DefaultPrevented() bool { return e.prevented }

// KeyEvent is a key press with the selection already in place.
type KeyEvent struct {
	Key string

	prevented bool
}

func (e *KeyEvent) PreventDefault()        { e.prevented = true }
func (e *KeyEvent) DefaultPrevented() bool { return e.prevented }

// OnClick activates a clicked chip. Otherwise it tries to upgrade the text
// under the caret, and failing that clears activation. The chip hit test
// always runs first.
func (c *Controller) OnClick(ev *ClickEvent) {
	if ev == nil {
		return
	}
	if el, ok := c.LocateChipAncestor(ev.Target); ok {
		ev.PreventDefault()
		c.Activate(el)
		return
	}
	if c.UpgradeUnderCaret() {
		return
	}
	c.ClearActive()
}

// OnKeyDown removes the chip enclosing the selection in one undoable edit and
// reports whether it did.
func (c *Controller) OnKeyDown(ev *KeyEvent) bool {
	el, ok := c.LocateChipAncestor(c.surface.Node())
	if !ok {
		return false
	}
	if ev != nil {
		ev.PreventDefault()
	}
	err := c.surface.Transact(func() error {
		c.surface.Remove(el)
		return nil
	})
	return err == nil
}

// OnNodeChange keeps the caret out of chips by moving it just past the
// enclosing one.
func (c *Controller) OnNodeChange(n *html.Node) {
	el, ok := c.LocateChipAncestor(n)
	if !ok {
		return
	}
	c.surface.SelectNode(el)
	c.surface.Collapse(false)
}
