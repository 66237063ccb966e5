package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/pkg/batch"
	"github.com/walteh/mergetags/pkg/codec"
	"github.com/walteh/mergetags/pkg/diff"
	"github.com/walteh/mergetags/pkg/mergetags"
	"github.com/walteh/mergetags/pkg/options"
)

// Mode picks the codec direction a command runs.
type Mode string

const (
	ModeEncode  Mode = "encode"
	ModeDecode  Mode = "decode"
	ModeMigrate Mode = "migrate"
)

type Handler struct {
	mode     Mode
	globs    []string
	inPlace  bool
	showDiff bool

	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
}

func NewEncodeCommand() *cobra.Command {
	return newCommand(ModeEncode, "convert chips to delimited text")
}

func NewDecodeCommand() *cobra.Command {
	return newCommand(ModeDecode, "convert delimited text to chips for known tags")
}

func NewMigrateCommand() *cobra.Command {
	return newCommand(ModeMigrate, "rewrite old-format chips into the current structure")
}

func newCommand(mode Mode, short string) *cobra.Command {
	me := &Handler{mode: mode, fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   string(mode) + " [files...]",
		Short: short + ", reads stdin when no files are given",
	}

	cmd.Flags().StringArrayVarP(&me.globs, "glob", "g", nil, "doublestar pattern selecting files, may repeat")
	cmd.Flags().BoolVarP(&me.inPlace, "in-place", "i", false, "rewrite files instead of printing them")
	cmd.Flags().BoolVarP(&me.showDiff, "diff", "d", false, "print a line diff of each change instead of the converted text")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.stdin = cmd.InOrStdin()
		me.stdout = cmd.OutOrStdout()
		return me.Run(cmd.Context(), args)
	}

	return cmd
}

// NewHandler is used by tests to run a mode against an arbitrary filesystem.
func NewHandler(mode Mode, fs afero.Fs, stdin io.Reader, stdout io.Writer, globs []string, inPlace bool) *Handler {
	return &Handler{mode: mode, fs: fs, stdin: stdin, stdout: stdout, globs: globs, inPlace: inPlace}
}

// WithDiff switches output to line diffs.
func (me *Handler) WithDiff(show bool) *Handler {
	me.showDiff = show
	return me
}

func Transform(mode Mode, c *codec.Codec) (batch.Transform, error) {
	switch mode {
	case ModeEncode:
		return func(s string) (string, error) { return c.ChipsToDelimited(s), nil }, nil
	case ModeDecode:
		return func(s string) (string, error) { return c.DelimitedToChips(s), nil }, nil
	case ModeMigrate:
		return func(s string) (string, error) {
			out, _, err := c.MigrateFragment(s)
			return out, err
		}, nil
	default:
		return nil, errors.Errorf("unknown mode %q", mode)
	}
}

func (me *Handler) Run(ctx context.Context, args []string) error {
	engine, err := mergetags.New(ctx, options.FromContext(ctx), nil)
	if err != nil {
		return errors.Errorf("creating engine: %w", err)
	}

	transform, err := Transform(me.mode, engine.Codec())
	if err != nil {
		return err
	}

	paths := append([]string{}, args...)
	if len(me.globs) > 0 {
		matched, err := batch.Expand(me.fs, me.globs...)
		if err != nil {
			return errors.Errorf("expanding globs: %w", err)
		}
		paths = append(paths, matched...)
	}

	if len(paths) == 0 {
		if me.inPlace {
			return errors.New("--in-place needs files or --glob")
		}
		return me.runStdin(transform)
	}

	results, runErr := batch.NewRunner(me.fs, transform, me.inPlace).Run(ctx, paths)

	for _, res := range results {
		if me.showDiff {
			me.printDiff(res.Path, res.Input, res.Output)
			continue
		}
		if me.inPlace {
			status := color.New(color.Faint).Sprint("unchanged")
			if res.Changed {
				status = color.New(color.FgGreen).Sprint("updated")
			}
			fmt.Fprintf(me.stdout, "%s %s\n", status, res.Path)
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(me.stdout, "%s\n", color.New(color.Bold).Sprintf("==> %s <==", res.Path))
		}
		fmt.Fprint(me.stdout, ensureNewline(res.Output))
	}

	zerolog.Ctx(ctx).Debug().Str("mode", string(me.mode)).Int("files", len(results)).Msg("conversion finished")

	if runErr != nil {
		return errors.Errorf("%s failed: %w", me.mode, runErr)
	}
	return nil
}

func (me *Handler) runStdin(transform batch.Transform) error {
	in := me.stdin
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Errorf("reading stdin: %w", err)
	}
	out, err := transform(string(data))
	if err != nil {
		return errors.Errorf("transforming stdin: %w", err)
	}
	if me.showDiff {
		me.printDiff("<stdin>", string(data), out)
		return nil
	}
	_, err = io.WriteString(me.stdout, out)
	return err
}

func (me *Handler) printDiff(path, before, after string) {
	d := diff.Lines(before, after)
	if d == "" {
		fmt.Fprintf(me.stdout, "%s %s\n", color.New(color.Faint).Sprint("unchanged"), path)
		return
	}
	fmt.Fprintf(me.stdout, "%s\n%s", color.New(color.Bold).Sprintf("--- %s", path), diff.Colorize(diff.Changed(d)))
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
