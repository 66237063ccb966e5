package chip

import (
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewBody returns an empty detached body element.
func NewBody() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: atom.Body.String(), DataAtom: atom.Body}
}

// ParseFragment parses markup in a body context and returns a body element
// holding the result.
func ParseFragment(fragment string) (*html.Node, error) {
	body := NewBody()
	nodes, err := html.ParseFragment(strings.NewReader(fragment), NewBody())
	if err != nil {
		return nil, errors.Errorf("parsing fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return body, nil
}

// RenderChildren serializes the children of n, i.e. its inner HTML.
func RenderChildren(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// IsChip reports whether n is a span carrying tokenClass and a value attribute.
func IsChip(n *html.Node, tokenClass string) bool {
	if n == nil || n.Type != html.ElementNode || n.Data != "span" {
		return false
	}
	if !HasClass(n, tokenClass) {
		return false
	}
	_, ok := Attr(n, AttrValue)
	return ok
}

// Value returns the data-mt-val attribute.
func Value(n *html.Node) string {
	v, _ := Attr(n, AttrValue)
	return v
}

// UID returns the data-mt-uid attribute, if any.
func UID(n *html.Node) string {
	v, _ := Attr(n, AttrUID)
	return v
}

func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func classes(n *html.Node) []string {
	v, _ := Attr(n, AttrClass)
	return strings.Fields(v)
}

// HasClass reports whether the class attribute of an element lists class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode || class == "" {
		return false
	}
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	SetAttr(n, AttrClass, strings.Join(append(classes(n), class), " "))
}

// RemoveClass drops class and removes the attribute once it is empty.
func RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	kept := make([]string, 0)
	for _, c := range classes(n) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, AttrClass)
		return
	}
	SetAttr(n, AttrClass, strings.Join(kept, " "))
}

// TextContent concatenates every text node below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
