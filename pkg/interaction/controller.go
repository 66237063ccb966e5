// Package interaction handles direct user actions on chips: activation,
// insertion at the selection, and upgrading freshly typed delimited text.
package interaction

import (
	"strconv"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/delimiter"
	"github.com/walteh/mergetags/pkg/document"
	"github.com/walteh/mergetags/pkg/options"
)

// Surface is the editor capability the controller needs.
// *document.Document implements it.
type Surface interface {
	Body() *html.Node
	Caret() document.Range
	Select(r document.Range)
	SelectNode(n *html.Node)
	Collapse(toStart bool)
	Node() *html.Node
	ReplaceSelection(n *html.Node) error
	Remove(n *html.Node)
	Transact(fn func() error) error
}

var _ Surface = (*document.Document)(nil)

type Controller struct {
	opts     *options.Options
	renderer *chip.Renderer
	catalog  *catalog.Catalog
	format   *delimiter.Format
	surface  Surface

	seq int64
}

func New(opts *options.Options, renderer *chip.Renderer, cat *catalog.Catalog, format *delimiter.Format, surface Surface) *Controller {
	return &Controller{
		opts:     opts,
		renderer: renderer,
		catalog:  cat,
		format:   format,
		surface:  surface,
	}
}

func (c *Controller) nextUID() string {
	c.seq++
	return strconv.FormatInt(c.seq, 36)
}

// ClearActive removes the active marker from every chip.
func (c *Controller) ClearActive() {
	for _, n := range c.activeChips() {
		chip.RemoveClass(n, c.opts.ActiveClass)
	}
}

func (c *Controller) activeChips() []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if chip.HasClass(child, c.opts.TokenClass) && chip.HasClass(child, c.opts.ActiveClass) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(c.surface.Body())
	return out
}

// Activate makes el the only active chip and puts the caret right after it.
func (c *Controller) Activate(el *html.Node) {
	if el == nil {
		return
	}
	c.ClearActive()
	chip.AddClass(el, c.opts.ActiveClass)
	c.surface.SelectNode(el)
	c.surface.Collapse(false)
}

// Insert places a chip for tag at the selection as one undoable edit.
func (c *Controller) Insert(tag catalog.Tag) error {
	if tag.Value == "" {
		return errors.New("tag has no value")
	}

	el := c.renderer.CreateChip(tag, c.nextUID())
	err := c.surface.Transact(func() error {
		if err := c.surface.ReplaceSelection(el); err != nil {
			return err
		}
		if c.opts.HighlightOnInsert {
			c.Activate(el)
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("inserting %q: %w", tag.Value, err)
	}
	return nil
}

// InsertByValue inserts the catalog tag for value. Unknown values are a
// no-op and report false.
func (c *Controller) InsertByValue(value any) (bool, error) {
	tag, ok := c.catalog.ByValue(value)
	if !ok {
		return false, nil
	}
	if err := c.Insert(tag); err != nil {
		return false, err
	}
	return true, nil
}

// LocateChipAncestor returns the nearest element at or above n carrying the
// token class, stopping at the body.
func (c *Controller) LocateChipAncestor(n *html.Node) (*html.Node, bool) {
	body := c.surface.Body()
	for ; n != nil && n != body; n = n.Parent {
		if chip.HasClass(n, c.opts.TokenClass) {
			return n, true
		}
	}
	return nil, false
}

// UpgradeUnderCaret turns the first resolvable delimited span in the text at
// the caret into an active chip.
func (c *Controller) UpgradeUnderCaret() bool {
	text := c.caretText()
	if text == nil {
		return false
	}
	if _, inside := c.LocateChipAncestor(text); inside {
		return false
	}

	for _, m := range c.format.Pattern(true).Matches(text.Data) {
		tag, ok := c.catalog.ByValue(m.Value)
		if !ok {
			continue
		}

		el := c.renderer.CreateChip(tag, c.nextUID())
		err := c.surface.Transact(func() error {
			c.surface.Select(document.Range{
				Start: document.Position{Node: text, Offset: m.Start},
				End:   document.Position{Node: text, Offset: m.End},
			})
			if err := c.surface.ReplaceSelection(el); err != nil {
				return err
			}
			c.Activate(el)
			return nil
		})
		return err == nil
	}
	return false
}

func (c *Controller) caretText() *html.Node {
	n := c.surface.Caret().Start.Node
	if n == nil {
		return nil
	}
	if n.Type == html.TextNode {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			return child
		}
	}
	return nil
}
