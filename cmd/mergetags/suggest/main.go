package suggest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/pkg/mergetags"
	"github.com/walteh/mergetags/pkg/options"
)

type Handler struct {
	pattern string
	max     int
	fuzzy   bool

	stdout io.Writer
}

func NewSuggestCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "suggest [pattern]",
		Short: "list autocomplete suggestions for a pattern",
	}

	cmd.Args = cobra.MaximumNArgs(1)

	cmd.Flags().IntVarP(&me.max, "max", "n", 0, "maximum number of suggestions (default 10, capped by max_suggestions)")
	cmd.Flags().BoolVar(&me.fuzzy, "fuzzy", false, "rank by fuzzy match instead of substring filtering")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			me.pattern = args[0]
		}
		me.stdout = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func NewHandler(stdout io.Writer, pattern string, max int, fuzzy bool) *Handler {
	return &Handler{stdout: stdout, pattern: pattern, max: max, fuzzy: fuzzy}
}

func (me *Handler) Run(ctx context.Context) error {
	opts := options.FromContext(ctx)

	engine, err := mergetags.New(ctx, opts, nil)
	if err != nil {
		return errors.Errorf("creating engine: %w", err)
	}

	// a leading trigger is what the user typed to open the menu, not part of the query
	pattern := strings.TrimPrefix(me.pattern, opts.EffectiveTrigger())

	for _, s := range engine.Autocomplete(ctx, pattern, me.max, me.fuzzy) {
		fmt.Fprintf(me.stdout, "%s\t%s\n", s.Value, color.New(color.Faint).Sprint(s.Text))
	}
	return nil
}
