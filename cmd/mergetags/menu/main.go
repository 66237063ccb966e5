package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/mergetags"
	"github.com/walteh/mergetags/pkg/options"
)

type Handler struct {
	asJSON bool
	width  int

	stdout io.Writer
}

func NewMenuCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "print the insert menu built from the configured tags",
	}

	cmd.Flags().BoolVar(&me.asJSON, "json", false, "print menu item descriptors as JSON")
	cmd.Flags().IntVarP(&me.width, "width", "w", 40, "truncate labels to this many characters, 0 disables")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.stdout = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func NewHandler(stdout io.Writer, asJSON bool, width int) *Handler {
	return &Handler{stdout: stdout, asJSON: asJSON, width: width}
}

func (me *Handler) Run(ctx context.Context) error {
	engine, err := mergetags.New(ctx, options.FromContext(ctx), nil)
	if err != nil {
		return errors.Errorf("creating engine: %w", err)
	}

	items := engine.MenuItems()

	if me.asJSON {
		enc := json.NewEncoder(me.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return errors.Errorf("encoding menu: %w", err)
		}
		return nil
	}

	me.print(items, 0)
	return nil
}

var (
	groupColor    = color.New(color.FgCyan, color.Bold)
	valueColor    = color.New(color.Faint)
	disabledColor = color.New(color.Faint, color.Italic)
)

func (me *Handler) print(items []catalog.MenuItem, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, it := range items {
		label := Truncate(it.Text, me.width)
		switch {
		case it.Type == catalog.NestedMenuItemType:
			fmt.Fprintf(me.stdout, "%s%s\n", indent, groupColor.Sprint(label))
			me.print(it.Items, depth+1)
		case !it.Enabled:
			fmt.Fprintf(me.stdout, "%s%s\n", indent, disabledColor.Sprint(label))
		default:
			fmt.Fprintf(me.stdout, "%s%s %s\n", indent, label, valueColor.Sprintf("(%s)", it.Value))
		}
	}
}

// Truncate shortens s to at most width grapheme clusters, marking the cut
// with an ellipsis. A width of zero or less leaves s alone.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}

	clusters, err := textseg.AllTokens([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil || len(clusters) <= width {
		return s
	}

	var b strings.Builder
	for _, c := range clusters[:width-1] {
		b.Write(c)
	}
	b.WriteString("…")
	return b.String()
}
