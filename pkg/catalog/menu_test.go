package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mergetags/pkg/catalog"
)

func TestMenuItems(t *testing.T) {
	c := catalog.New()
	c.SetTokens([]any{
		map[string]any{"title": "Group", "menu": []any{
			map[string]any{"title": "First", "value": "first_name"},
		}},
		map[string]any{"value": "top_level"},
	})

	items := c.MenuItems()
	require.Len(t, items, 2)

	assert.Equal(t, catalog.NestedMenuItemType, items[0].Type)
	assert.Equal(t, "Group", items[0].Text)
	require.Len(t, items[0].Items, 1)
	assert.Equal(t, catalog.MenuItem{Type: catalog.MenuItemType, Text: "First", Value: "first_name", Enabled: true}, items[0].Items[0])

	assert.Equal(t, catalog.MenuItemType, items[1].Type)
	assert.Equal(t, "top_level", items[1].Value)
}

func TestMenuItems_Empty(t *testing.T) {
	items := catalog.New().MenuItems()
	require.Len(t, items, 1)
	assert.Equal(t, "No tags", items[0].Text)
	assert.False(t, items[0].Enabled)

	nested := catalog.BuildMenu([]catalog.Node{&catalog.Branch{Title: "Empty"}})
	require.Len(t, nested, 1)
	require.Len(t, nested[0].Items, 1)
	assert.False(t, nested[0].Items[0].Enabled)
}
