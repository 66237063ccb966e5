package mergetags_test

import (
	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/mergetags"
)

func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
		out = append(out, descendants(c)...)
	}
	return out
}

func findChip(e *mergetags.Engine) *html.Node {
	r := chip.New(e.Options())
	for _, n := range descendants(e.Document().Body()) {
		if r.IsChip(n) {
			return n
		}
	}
	return nil
}
