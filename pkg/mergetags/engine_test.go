package mergetags_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/document"
	"github.com/walteh/mergetags/pkg/interaction"
	"github.com/walteh/mergetags/pkg/mergetags"
	"github.com/walteh/mergetags/pkg/options"
)

func userTags() []any {
	return []any{
		map[string]any{"title": "User", "menu": []any{
			map[string]any{"title": "First Name", "value": "first_name"},
			map[string]any{"title": "Last Name", "value": "last_name"},
		}},
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).WithContext(context.Background())
}

func newEngine(t *testing.T, fragment string, mutate func(o *options.Options)) (context.Context, *mergetags.Engine) {
	t.Helper()
	ctx := testContext(t)

	opts := options.Default()
	opts.Tags = userTags()
	if mutate != nil {
		mutate(opts)
	}

	doc, err := document.New(fragment, opts.HistoryLimit)
	require.NoError(t, err)

	e, err := mergetags.New(ctx, opts, doc)
	require.NoError(t, err)
	return ctx, e
}

func chipCount(e *mergetags.Engine) int {
	n := 0
	r := chip.New(e.Options())
	for _, c := range descendants(e.Document().Body()) {
		if r.IsChip(c) {
			n++
		}
	}
	return n
}

func TestEngine_ID(t *testing.T) {
	_, a := newEngine(t, "", nil)
	_, b := newEngine(t, "", nil)

	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestEngine_NilArguments(t *testing.T) {
	e, err := mergetags.New(testContext(t), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", e.Document().HTML())
	assert.Equal(t, 0, e.Catalog().Len())
}

func TestEngine_ContentRoundTrip(t *testing.T) {
	ctx, e := newEngine(t, "", nil)

	require.NoError(t, e.SetContent(ctx, "Hello {{first_name}}!"))
	assert.Equal(t, 1, chipCount(e))
	assert.Contains(t, e.Document().HTML(), `data-mt-val="first_name"`)
	assert.Equal(t, "Hello {{first_name}}!", e.GetContent(ctx))

	require.NoError(t, e.SetContent(ctx, "Hello {{unknown}}!"))
	assert.Equal(t, "Hello {{unknown}}!", e.Document().HTML())
	assert.Equal(t, 0, chipCount(e))

	require.True(t, e.Document().Undo())
	assert.Equal(t, 1, chipCount(e))
}

func TestEngine_PastePreProcess(t *testing.T) {
	ctx, e := newEngine(t, "", nil)

	got := e.PastePreProcess(ctx, "X {{first_name}} Y")
	assert.Contains(t, got, `data-mt-val="first_name"`)
	assert.Equal(t, "", e.Document().HTML(), "paste processing does not touch the document")
}

func TestEngine_SetTokensRetokenizes(t *testing.T) {
	ctx, e := newEngine(t, "<p>Hello {{first_name}} and {{nick}}</p>", func(o *options.Options) { o.Tags = nil })

	ran, err := e.TransformInitialContentOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, 0, chipCount(e))

	require.NoError(t, e.SetTokens(ctx, []any{
		map[string]any{"title": "Menu", "items": []any{
			map[string]any{"value": "first_name"},
			map[string]any{"value": "nick"},
		}},
	}))
	assert.Equal(t, 2, chipCount(e))
	assert.Equal(t, "<p>Hello {{first_name}} and {{nick}}</p>", e.GetContent(ctx))

	// dropping a tag turns its chips back into literal text
	require.NoError(t, e.SetTokens(ctx, userTags()))
	assert.Equal(t, 1, chipCount(e))
	assert.Contains(t, e.Document().HTML(), "{{nick}}")
	assert.Equal(t, "<p>Hello {{first_name}} and {{nick}}</p>", e.GetContent(ctx))
}

func TestEngine_TransformInitialContentOnce(t *testing.T) {
	old := `<span class="mce-mergetag" data-mt-val="first_name" contenteditable="false">First Name</span>`
	ctx, e := newEngine(t, "<p>{{last_name}} "+old+"</p>", nil)

	ran, err := e.TransformInitialContentOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, chipCount(e))
	assert.NotContains(t, e.Document().HTML(), ">First Name<")
	assert.Contains(t, e.Document().HTML(), `data-mt-val="first_name"`)
	assert.False(t, e.Document().CanUndo())

	// the latch holds even if new delimited text appears
	require.NoError(t, e.Document().SetHTML("<p>{{first_name}}</p>"))
	ran, err = e.TransformInitialContentOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, "<p>{{first_name}}</p>", e.Document().HTML())
}

func TestEngine_InsertReplacesSelectionAcrossElements(t *testing.T) {
	ctx, e := newEngine(t, "<p>ab<b>cd</b>ef</p>", nil)
	p := e.Document().Body().FirstChild
	e.Document().Select(document.Range{
		Start: document.Position{Node: p.FirstChild, Offset: 1},
		End:   document.Position{Node: p.LastChild, Offset: 1},
	})

	ok, err := e.InsertByValue(ctx, "first_name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>a{{first_name}}f</p>", e.GetContent(ctx))

	require.True(t, e.Document().Undo())
	assert.Equal(t, "<p>ab<b>cd</b>ef</p>", e.GetContent(ctx))
}

func TestEngine_InsertAfterInitialMigration(t *testing.T) {
	ctx, e := newEngine(t, `<span class="mce-mergetag" data-mt-val="first_name">First</span>`, nil)

	// caret inside the old chip that migration is about to replace
	old := e.Document().Body().FirstChild
	e.Document().SetCaret(old.FirstChild, 2)

	ran, err := e.TransformInitialContentOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	assert.False(t, e.Document().CanUndo())

	caret := e.Document().Caret()
	assert.Equal(t, e.Document().Body(), caret.Start.Node)
	assert.Equal(t, 1, caret.Start.Offset)

	ok, err := e.InsertByValue(ctx, "last_name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, chipCount(e))
	assert.Equal(t, "{{first_name}}{{last_name}}", e.GetContent(ctx))

	require.True(t, e.Document().CanUndo())
	require.True(t, e.Document().Undo())
	assert.Equal(t, "{{first_name}}", e.GetContent(ctx))
}

func TestEngine_InsertByValue(t *testing.T) {
	ctx, e := newEngine(t, "<p>Hi </p>", nil)
	e.Document().SetCaret(e.Document().Body().FirstChild.FirstChild, 3)

	ok, err := e.InsertByValue(ctx, "last_name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>Hi {{last_name}}</p>", e.GetContent(ctx))

	ok, err = e.InsertByValue(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, e.Document().Undo())
	assert.Equal(t, "<p>Hi </p>", e.GetContent(ctx))
}

func TestEngine_KeyDownRemovesChip(t *testing.T) {
	ctx, e := newEngine(t, "", nil)
	require.NoError(t, e.SetContent(ctx, "<p>a{{first_name}}b</p>"))

	el := findChip(e)
	require.NotNil(t, el)
	e.Document().SelectNode(el)

	ev := &interaction.KeyEvent{Key: "Backspace"}
	assert.True(t, e.OnKeyDown(ctx, ev))
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, "<p>ab</p>", e.GetContent(ctx))
}

func TestEngine_ClickAndNodeChange(t *testing.T) {
	ctx, e := newEngine(t, "", nil)
	require.NoError(t, e.SetContent(ctx, "<p>a{{first_name}}b</p>"))
	el := findChip(e)
	require.NotNil(t, el)

	e.OnClick(ctx, &interaction.ClickEvent{Target: el})
	assert.True(t, chip.HasClass(el, e.Options().ActiveClass))

	e.Document().SetCaret(el.FirstChild.FirstChild, 1)
	e.OnNodeChange(ctx, el.FirstChild.FirstChild)
	caret := e.Document().Caret()
	assert.Same(t, el.Parent, caret.Start.Node)
	assert.Equal(t, 2, caret.Start.Offset)
}

func TestEngine_Autocomplete(t *testing.T) {
	many := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, map[string]any{"value": "tag_" + string(rune('a'+i%26)) + string(rune('a'+i/26))})
	}

	tests := []struct {
		name       string
		maxSuggest int
		maxResults int
		want       int
	}{
		{name: "default limit", maxSuggest: 100, maxResults: 0, want: catalog.DefaultSearchLimit},
		{name: "explicit limit", maxSuggest: 100, maxResults: 25, want: 25},
		{name: "capped by config", maxSuggest: 5, maxResults: 25, want: 5},
		{name: "default capped by config", maxSuggest: 3, maxResults: 0, want: 3},
		{name: "zero config disables cap", maxSuggest: 0, maxResults: 30, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, e := newEngine(t, "", func(o *options.Options) {
				o.Tags = many
				o.MaxSuggestions = tt.maxSuggest
			})
			assert.Len(t, e.Autocomplete(ctx, "tag", tt.maxResults, false), tt.want)
		})
	}
}

func TestEngine_AutocompleteFuzzy(t *testing.T) {
	ctx, e := newEngine(t, "", nil)

	got := e.Autocomplete(ctx, "lname", 0, true)
	require.NotEmpty(t, got)
	assert.Equal(t, "last_name", got[0].Value)
}

func TestEngine_MenuItems(t *testing.T) {
	_, e := newEngine(t, "", nil)

	items := e.MenuItems()
	require.Len(t, items, 1)
	assert.Equal(t, catalog.NestedMenuItemType, items[0].Type)
	assert.Len(t, items[0].Items, 2)
}

func TestEngine_SchemaAndStyles(t *testing.T) {
	_, e := newEngine(t, "", nil)

	assert.Equal(t, "span[class|contenteditable|data-mt-val|data-mt-uid]", e.ValidElements())
	assert.Equal(t, []string{
		".mce-mergetag .mce-mergetag-affix{color:#16a34a;font-weight:400;}",
		".mce-mergetag.mt-active{outline:3px solid rgba(0,125,126,.75);}",
	}, e.ContentStyles())
}
