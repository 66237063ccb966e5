// Package batch applies a content transform to many files at once.
package batch

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Transform rewrites one file's content.
type Transform func(content string) (string, error)

type Result struct {
	Path    string
	Input   string
	Output  string
	Changed bool
}

type Runner struct {
	fs        afero.Fs
	transform Transform
	inPlace   bool
}

// NewRunner builds a runner over fs. With inPlace set, changed files are
// written back following the .editorconfig final newline rule.
func NewRunner(fs afero.Fs, transform Transform, inPlace bool) *Runner {
	return &Runner{fs: fs, transform: transform, inPlace: inPlace}
}

// Expand resolves doublestar patterns against fs into a sorted, de-duplicated
// list of files. Patterns use forward slashes. Relative patterns match from
// the root of fs and yield relative paths; absolute patterns are matched
// under their literal base directory and yield absolute paths.
func Expand(fs afero.Fs, patterns ...string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	for _, pattern := range patterns {
		base, rel := splitPattern(pattern)
		if !doublestar.ValidatePattern(rel) {
			return nil, errors.Errorf("invalid glob pattern %q", pattern)
		}

		iofs := afero.NewIOFS(fs)
		if base != "" {
			iofs = afero.NewIOFS(afero.NewBasePathFs(fs, base))
		}

		matches, err := doublestar.Glob(iofs, rel, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if base != "" {
				m = path.Join(base, m)
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

// splitPattern returns the literal base directory of an absolute pattern
// ("" for relative ones) and the pattern left to match under it.
func splitPattern(p string) (base, rel string) {
	if strings.HasPrefix(p, "/") {
		base, rel = doublestar.SplitPattern(p)
		if rel == "" {
			rel = "."
		}
		return base, rel
	}
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return "", "."
	}
	return "", p
}

// Run transforms every path. A failing file does not stop the run; all
// failures are returned together.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	var errs error
	results := make([]Result, 0, len(paths))

	for _, p := range paths {
		res, err := r.runOne(ctx, p)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", p).Msg("file skipped")
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

func (r *Runner) runOne(ctx context.Context, p string) (Result, error) {
	info, err := r.fs.Stat(p)
	if err != nil {
		return Result{}, errors.Errorf("stat %s: %w", p, err)
	}

	data, err := afero.ReadFile(r.fs, p)
	if err != nil {
		return Result{}, errors.Errorf("reading %s: %w", p, err)
	}
	in := string(data)

	out, err := r.transform(in)
	if err != nil {
		return Result{}, errors.Errorf("transforming %s: %w", p, err)
	}

	if r.inPlace {
		rule, err := FinalNewline(r.fs, p)
		if err != nil {
			return Result{}, err
		}
		out = applyFinalNewline(in, out, rule)
	}

	res := Result{Path: p, Input: in, Output: out, Changed: out != in}

	if r.inPlace && res.Changed {
		if err := afero.WriteFile(r.fs, p, []byte(out), info.Mode().Perm()); err != nil {
			return Result{}, errors.Errorf("writing %s: %w", p, err)
		}
		zerolog.Ctx(ctx).Debug().Str("path", p).Msg("file rewritten")
	}

	return res, nil
}

func applyFinalNewline(in, out string, rule *bool) string {
	if out == "" {
		return out
	}
	want := strings.HasSuffix(in, "\n")
	if rule != nil {
		want = *rule
	}
	if want {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		return out
	}
	return strings.TrimRight(out, "\r\n")
}

func parentDirs(p string) []string {
	var dirs []string
	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		dirs = append(dirs, dir)
		if dir == "." || dir == "/" {
			return dirs
		}
	}
}
