// Package catalog indexes the configured merge tag taxonomy.
//
// The raw configuration is arbitrarily shaped (groups may expose their
// children under "menu" or "items", titles may be missing, values may be
// numbers). Normalize turns it into one canonical tree of *Branch and *Leaf
// nodes; nothing downstream looks at the raw shape again.
package catalog

// Tag is a single insertable merge tag.
type Tag struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Label is the human readable text of the tag, falling back to the value.
func (t Tag) Label() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Value
}

// Node is either a *Branch or a *Leaf.
type Node interface {
	Label() string
	isNode()
}

// Branch is a titled group of nodes.
type Branch struct {
	Title    string `json:"title"`
	Children []Node `json:"menu"`
}

func (b *Branch) Label() string { return b.Title }
func (*Branch) isNode()         {}

// Leaf wraps a tag.
type Leaf struct {
	Tag
}

func (*Leaf) isNode() {}

// Catalog is the normalized, indexed tag set. It is owned by one editor
// instance and mutated only through SetTokens.
type Catalog struct {
	groups  []Node
	flat    []Tag
	byValue map[string]Tag
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		groups:  []Node{},
		flat:    []Tag{},
		byValue: map[string]Tag{},
	}
}

// SetTokens replaces the configuration and rebuilds every index. It never
// fails; shapes it does not understand are dropped.
func (c *Catalog) SetTokens(raw any) {
	c.groups = Normalize(raw)
	c.rebuild()
}

func (c *Catalog) rebuild() {
	c.flat = Flatten(c.groups)
	c.byValue = make(map[string]Tag, len(c.flat))
	for _, t := range c.flat {
		// later duplicates win
		c.byValue[t.Value] = t
	}
}

// Groups returns the normalized tree.
func (c *Catalog) Groups() []Node {
	out := make([]Node, len(c.groups))
	copy(out, c.groups)
	return out
}

// Flat returns every leaf in depth-first order, duplicates included.
func (c *Catalog) Flat() []Tag {
	out := make([]Tag, len(c.flat))
	copy(out, c.flat)
	return out
}

// Len is the number of leaves.
func (c *Catalog) Len() int {
	return len(c.flat)
}

// ByValue resolves a value after coercing it to a string.
func (c *Catalog) ByValue(value any) (Tag, bool) {
	s, ok := stringify(value)
	if !ok {
		return Tag{}, false
	}
	t, ok := c.byValue[s]
	return t, ok
}

// Normalize converts raw configuration into the canonical tree. Input that is
// not a list yields an empty tree.
func Normalize(raw any) []Node {
	items, ok := asList(raw)
	if !ok {
		return []Node{}
	}

	out := make([]Node, 0, len(items))
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			continue
		}

		if children, ok := childList(m); ok {
			title, _ := stringify(m["title"])
			out = append(out, &Branch{Title: title, Children: Normalize(children)})
			continue
		}

		value, ok := stringify(m["value"])
		if !ok || value == "" {
			continue
		}
		title, ok := stringify(m["title"])
		if !ok {
			title = value
		}
		out = append(out, &Leaf{Tag: Tag{Title: title, Value: value}})
	}
	return out
}

// Flatten walks the tree pre-order and returns the leaves.
func Flatten(nodes []Node) []Tag {
	return flatten(nodes, []Tag{})
}

func flatten(nodes []Node, acc []Tag) []Tag {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Branch:
			acc = flatten(n.Children, acc)
		case *Leaf:
			t := n.Tag
			if t.Title == "" {
				t.Title = t.Value
			}
			acc = append(acc, t)
		}
	}
	return acc
}

func childList(m map[string]any) ([]any, bool) {
	for _, key := range []string{"menu", "items"} {
		if v, ok := m[key]; ok {
			if list, ok := asList(v); ok {
				return list, true
			}
		}
	}
	return nil, false
}
