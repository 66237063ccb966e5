package options_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mergetags/pkg/options"
)

func TestDefault(t *testing.T) {
	opts := options.Default()
	require.NoError(t, opts.Validate())

	assert.Equal(t, "{{", opts.Prefix)
	assert.Equal(t, "}}", opts.Suffix)
	assert.Equal(t, "mce-mergetag", opts.TokenClass)
	assert.Equal(t, "mce-mergetag-affix", opts.BraceClass)
	assert.Equal(t, "mt-active", opts.ActiveClass)
	assert.True(t, opts.ShowsValue())
	assert.True(t, opts.ShowBraces)
	assert.True(t, opts.HighlightOnInsert)
	assert.True(t, opts.KeepUnknown)
	assert.Equal(t, 100, opts.MaxSuggestions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *options.Options)
		fields []string
	}{
		{
			name:   "valid",
			mutate: func(o *options.Options) {},
		},
		{
			name: "empty delimiters",
			mutate: func(o *options.Options) {
				o.Prefix = ""
				o.Suffix = ""
			},
			fields: []string{"prefix", "suffix"},
		},
		{
			name: "class with whitespace",
			mutate: func(o *options.Options) {
				o.ActiveClass = "mt active"
			},
			fields: []string{"active_class"},
		},
		{
			name: "brace class equals token class",
			mutate: func(o *options.Options) {
				o.BraceClass = o.TokenClass
			},
			fields: []string{"brace_class"},
		},
		{
			name: "negative limits",
			mutate: func(o *options.Options) {
				o.MaxSuggestions = -1
				o.HistoryLimit = -1
			},
			fields: []string{"max_suggestions", "history_limit"},
		},
		{
			name: "unknown display mode falls back to title",
			mutate: func(o *options.Options) {
				o.Display = "label"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := options.Default()
			tt.mutate(o)
			err := o.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, f := range tt.fields {
				assert.Contains(t, err.Error(), f+":")
			}
		})
	}
}

func TestEffectiveTrigger(t *testing.T) {
	o := options.Default()
	o.Trigger = ""
	o.Prefix = "[["
	assert.Equal(t, "[[", o.EffectiveTrigger())

	o.Trigger = "@"
	assert.Equal(t, "@", o.EffectiveTrigger())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	opts, err := options.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, options.Default().Prefix, opts.Prefix)
	assert.NotNil(t, opts.Tags)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mergetags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prefix: "[["
suffix: "]]"
display: title
show_braces: false
tags:
  - title: User
    menu:
      - title: First Name
        value: first_name
  - value: 42
`), 0o644))

	opts, err := options.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "[[", opts.Prefix)
	assert.Equal(t, "]]", opts.Suffix)
	assert.Equal(t, options.DisplayTitle, opts.Display)
	assert.False(t, opts.ShowBraces)
	assert.True(t, opts.KeepUnknown, "unset keys keep their defaults")
	require.Len(t, opts.Tags, 2)
}

func TestLoad_HCL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mergetags.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
prefix      = "<%"
suffix      = "%>"
keep_unknown = false

tags = [
  {
    title = "User"
    items = [
      { title = "First Name", value = "first_name" },
    ]
  },
]
`), 0o644))

	opts, err := options.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "<%", opts.Prefix)
	assert.Equal(t, "%>", opts.Suffix)
	assert.False(t, opts.KeepUnknown)
	assert.True(t, opts.ShowBraces)
	require.Len(t, opts.Tags, 1)

	group, ok := opts.Tags[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "User", group["title"])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mergetags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: \"[[\"\n"), 0o644))

	t.Setenv("MERGETAGS__PREFIX", "<<")
	t.Setenv("MERGETAGS__SHOW_BRACES", "false")

	opts, err := options.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "<<", opts.Prefix)
	assert.False(t, opts.ShowBraces)
}

func TestLoad_Errors(t *testing.T) {
	_, err := options.Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: \"\"\n"), 0o644))
	_, err = options.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix")
}

func TestDecodeHCL_Invalid(t *testing.T) {
	_, err := options.DecodeHCL([]byte(`prefix = `), "bad.hcl")
	require.Error(t, err)
}

func TestDumpYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, options.DumpYAML(&buf, options.Default()))
	assert.Contains(t, buf.String(), "prefix: ")
	assert.Contains(t, buf.String(), "{{")
	assert.Contains(t, buf.String(), "token_class: mce-mergetag")
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, options.Default(), options.FromContext(ctx))

	o := options.Default()
	o.Prefix = "[["
	assert.Same(t, o, options.FromContext(options.NewContext(ctx, o)))
}
