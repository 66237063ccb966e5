package catalog_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mergetags/pkg/catalog"
)

func searchCatalog() *catalog.Catalog {
	c := catalog.New()
	c.SetTokens([]any{
		map[string]any{"title": "User", "menu": []any{
			map[string]any{"title": "First Name", "value": "first_name"},
			map[string]any{"title": "Last Name", "value": "last_name"},
			map[string]any{"title": "Email", "value": "email"},
		}},
		map[string]any{"title": "Company", "items": []any{
			map[string]any{"title": "Company Name", "value": "company_name"},
		}},
	})
	return c
}

func TestSearch(t *testing.T) {
	c := searchCatalog()

	tests := []struct {
		name    string
		pattern string
		max     int
		want    []string
	}{
		{name: "empty pattern returns all in order", pattern: "", max: 0, want: []string{"first_name", "last_name", "email", "company_name"}},
		{name: "title match is case insensitive", pattern: "NAME", max: 0, want: []string{"first_name", "last_name", "company_name"}},
		{name: "value match", pattern: "_na", max: 0, want: []string{"first_name", "last_name", "company_name"}},
		{name: "capped", pattern: "name", max: 2, want: []string{"first_name", "last_name"}},
		{name: "no match", pattern: "zzz", max: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.pattern, tt.max)
			values := make([]string, 0, len(got))
			for _, s := range got {
				values = append(values, s.Value)
			}
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	raw := make([]any, 0, 25)
	for i := 0; i < 25; i++ {
		raw = append(raw, map[string]any{"value": fmt.Sprintf("v%d", i)})
	}
	c := catalog.New()
	c.SetTokens(raw)

	assert.Len(t, c.Search("", 0), catalog.DefaultSearchLimit)
	assert.Len(t, c.Search("", 20), 20)
}

func TestSearch_TextUsesTitle(t *testing.T) {
	c := searchCatalog()
	got := c.Search("email", 1)
	require.Len(t, got, 1)
	assert.Equal(t, catalog.Suggestion{Text: "Email", Value: "email"}, got[0])
}

func TestFuzzySearch(t *testing.T) {
	c := searchCatalog()

	got := c.FuzzySearch("fnm", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "first_name", got[0].Value)

	assert.Empty(t, c.FuzzySearch("qqq", 5))
	assert.Len(t, c.FuzzySearch("", 2), 2)
}
