package codec

import (
	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/chip"
)

// Migrate rewrites old-format chips below root (token class and value but no
// brace markers) into the current structure, keeping data-mt-val and
// data-mt-uid. A value missing from the catalog is rendered as
// {Title: value, Value: value}, or unwrapped to its delimited text when
// keep_unknown is off. It returns the number of rewritten chips.
//
// With braces disabled there is no marker to tell old chips from new ones
// and Migrate does nothing.
func (c *Codec) Migrate(root *html.Node) int {
	if root == nil || !c.opts.ShowBraces {
		return 0
	}

	var stale []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if c.renderer.IsChip(child) {
				if !c.renderer.IsCanonical(child) {
					stale = append(stale, child)
				}
				continue
			}
			walk(child)
		}
	}
	walk(root)

	for _, old := range stale {
		value := chip.Value(old)

		var fresh *html.Node
		tag, ok := c.catalog.ByValue(value)
		switch {
		case ok:
			fresh = c.renderer.CreateChip(tag, chip.UID(old))
		case c.opts.KeepUnknown:
			fresh = c.renderer.CreateChip(catalog.Tag{Title: value, Value: value}, chip.UID(old))
		default:
			fresh = &html.Node{Type: html.TextNode, Data: c.format.Wrap(value)}
		}

		old.Parent.InsertBefore(fresh, old)
		old.Parent.RemoveChild(old)
	}

	return len(stale)
}

// MigrateFragment runs Migrate over a markup fragment.
func (c *Codec) MigrateFragment(fragment string) (string, int, error) {
	body, err := chip.ParseFragment(fragment)
	if err != nil {
		return "", 0, err
	}
	n := c.Migrate(body)
	if n == 0 {
		return fragment, 0, nil
	}
	return chip.RenderChildren(body), n, nil
}
