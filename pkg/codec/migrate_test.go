package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/options"
)

const oldChip = `<p><span class="mce-mergetag" data-mt-val="first_name" data-mt-uid="7" contenteditable="false">First Name</span></p>`

func TestMigrate(t *testing.T) {
	f := newFixture(t, nil)

	body, err := chip.ParseFragment(oldChip)
	require.NoError(t, err)

	assert.Equal(t, 1, f.codec.Migrate(body))

	p := body.FirstChild
	require.NotNil(t, p)
	migrated := p.FirstChild
	require.NotNil(t, migrated)

	assert.True(t, f.renderer.IsChip(migrated))
	assert.True(t, f.renderer.IsCanonical(migrated))
	assert.Equal(t, "first_name", chip.Value(migrated))
	assert.Equal(t, "7", chip.UID(migrated))

	// a second pass finds nothing left to do
	assert.Equal(t, 0, f.codec.Migrate(body))
}

func TestMigrateFragment(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *options.Options)
		input  string
		want   string
		count  int
	}{
		{
			name:  "known value",
			input: `<span class="mce-mergetag" data-mt-val="first_name">x</span>`,
			want: `<span class="mce-mergetag" data-mt-val="first_name" contenteditable="false">` +
				`<span class="mce-mergetag-affix">{{</span>first_name<span class="mce-mergetag-affix">}}</span></span>`,
			count: 1,
		},
		{
			name:  "unknown value falls back to value as title",
			mutate: func(o *options.Options) { o.Display = options.DisplayTitle },
			input: `<span class="mce-mergetag" data-mt-val="removed">Removed</span>`,
			want: `<span class="mce-mergetag" data-mt-val="removed" contenteditable="false">` +
				`<span class="mce-mergetag-affix">{{</span>removed<span class="mce-mergetag-affix">}}</span></span>`,
			count: 1,
		},
		{
			name:   "unknown value unwrapped when keep_unknown is off",
			mutate: func(o *options.Options) { o.KeepUnknown = false },
			input:  `a <span class="mce-mergetag" data-mt-val="removed">Removed</span> b`,
			want:   `a {{removed}} b`,
			count:  1,
		},
		{
			name:  "canonical chips untouched",
			input: `<span class="mce-mergetag" data-mt-val="first_name" contenteditable="false"><span class="mce-mergetag-affix">{{</span>first_name<span class="mce-mergetag-affix">}}</span></span>`,
			want:  `<span class="mce-mergetag" data-mt-val="first_name" contenteditable="false"><span class="mce-mergetag-affix">{{</span>first_name<span class="mce-mergetag-affix">}}</span></span>`,
		},
		{
			name:   "braces disabled is a no-op",
			mutate: func(o *options.Options) { o.ShowBraces = false },
			input:  `<span class="mce-mergetag" data-mt-val="first_name">x</span>`,
			want:   `<span class="mce-mergetag" data-mt-val="first_name">x</span>`,
		},
		{
			name:  "no chips",
			input: `<p>plain</p>`,
			want:  `<p>plain</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mutate)
			got, n, err := f.codec.MigrateFragment(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestMigrate_ThenEncode(t *testing.T) {
	f := newFixture(t, nil)

	migrated, _, err := f.codec.MigrateFragment(oldChip)
	require.NoError(t, err)
	assert.Equal(t, "<p>{{first_name}}</p>", f.codec.ChipsToDelimited(migrated))
}
