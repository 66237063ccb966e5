package suggest_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/mergetags/cmd/mergetags/suggest"
	"github.com/walteh/mergetags/pkg/options"
)

func init() {
	color.NoColor = true
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	opts := options.Default()
	opts.Tags = []any{
		map[string]any{"title": "User", "menu": []any{
			map[string]any{"title": "First Name", "value": "first_name"},
			map[string]any{"title": "Last Name", "value": "last_name"},
			map[string]any{"title": "Email", "value": "email"},
		}},
	}
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	return options.NewContext(ctx, opts)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		max     int
		fuzzy   bool
		want    string
	}{
		{name: "substring", pattern: "name", want: "first_name\tFirst Name\nlast_name\tLast Name\n"},
		{name: "trigger stripped", pattern: "{{mail", want: "email\tEmail\n"},
		{name: "limited", pattern: "", max: 1, want: "first_name\tFirst Name\n"},
		{name: "fuzzy", pattern: "eml", fuzzy: true, want: "email\tEmail\n"},
		{name: "nothing", pattern: "zzz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, suggest.NewHandler(&out, tt.pattern, tt.max, tt.fuzzy).Run(testContext(t)))
			assert.Equal(t, tt.want, out.String())
		})
	}
}
