package catalog

const (
	MenuItemType       = "menuitem"
	NestedMenuItemType = "nestedmenuitem"

	emptyMenuText = "No tags"
)

// MenuItem describes one entry of a hierarchical insert menu. Hosts turn
// these into their own widgets; selecting a leaf inserts Value.
type MenuItem struct {
	Type    string     `json:"type"`
	Text    string     `json:"text"`
	Value   string     `json:"value,omitempty"`
	Enabled bool       `json:"enabled"`
	Items   []MenuItem `json:"items,omitempty"`
}

// MenuItems builds menu descriptors from the current tree.
func (c *Catalog) MenuItems() []MenuItem {
	return BuildMenu(c.groups)
}

// BuildMenu mirrors the tree. An empty level yields one disabled placeholder.
func BuildMenu(nodes []Node) []MenuItem {
	if len(nodes) == 0 {
		return []MenuItem{{Type: MenuItemType, Text: emptyMenuText, Enabled: false}}
	}

	out := make([]MenuItem, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Branch:
			out = append(out, MenuItem{
				Type:    NestedMenuItemType,
				Text:    n.Title,
				Enabled: true,
				Items:   BuildMenu(n.Children),
			})
		case *Leaf:
			out = append(out, MenuItem{
				Type:    MenuItemType,
				Text:    n.Label(),
				Value:   n.Value,
				Enabled: true,
			})
		}
	}
	return out
}
