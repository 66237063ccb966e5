// Package delimiter owns the delimited text form of a merge tag,
// prefix + value + suffix, and the pattern that finds it.
package delimiter

import (
	"regexp"

	"github.com/walteh/mergetags/pkg/options"
)

// Format reads the prefix and suffix from the live options on every call.
type Format struct {
	opts *options.Options
}

func New(opts *options.Options) *Format {
	return &Format{opts: opts}
}

func (f *Format) Prefix() string { return f.opts.Prefix }

func (f *Format) Suffix() string { return f.opts.Suffix }

// Wrap returns the literal delimited text for a value.
func (f *Format) Wrap(value string) string {
	return f.opts.Prefix + value + f.opts.Suffix
}

// Pattern compiles a fresh pattern for the current prefix and suffix. The
// capture is lazy so the first suffix closes the span and neighbouring tags
// on one line stay separate. Patterns are not cached: a reconfigured prefix
// is honoured by the next call.
func (f *Format) Pattern(global bool) *Pattern {
	expr := regexp.QuoteMeta(f.opts.Prefix) + `((?s:.*?))` + regexp.QuoteMeta(f.opts.Suffix)
	return &Pattern{
		re:     regexp.MustCompile(expr),
		global: global,
	}
}

// Pattern finds delimited spans. A global pattern visits every span, a
// non-global one only the first.
type Pattern struct {
	re     *regexp.Regexp
	global bool
}

// Match is one delimited span. Offsets are byte offsets into the scanned
// string; Start/End cover the delimiters, ValueStart/ValueEnd the value.
type Match struct {
	Start      int
	End        int
	ValueStart int
	ValueEnd   int
	Text       string
	Value      string
}

func (p *Pattern) Regexp() *regexp.Regexp { return p.re }

func (p *Pattern) Global() bool { return p.global }

func (p *Pattern) limit() int {
	if p.global {
		return -1
	}
	return 1
}

// Matches returns the spans found in s, in order.
func (p *Pattern) Matches(s string) []Match {
	idx := p.re.FindAllStringSubmatchIndex(s, p.limit())
	out := make([]Match, 0, len(idx))
	for _, m := range idx {
		out = append(out, Match{
			Start:      m[0],
			End:        m[1],
			ValueStart: m[2],
			ValueEnd:   m[3],
			Text:       s[m[0]:m[1]],
			Value:      s[m[2]:m[3]],
		})
	}
	return out
}

// ReplaceFunc rewrites each span with fn(match); returning match.Text leaves
// the span untouched.
func (p *Pattern) ReplaceFunc(s string, fn func(m Match) string) string {
	matches := p.Matches(s)
	if len(matches) == 0 {
		return s
	}

	buf := make([]byte, 0, len(s))
	last := 0
	for _, m := range matches {
		buf = append(buf, s[last:m.Start]...)
		buf = append(buf, fn(m)...)
		last = m.End
	}
	buf = append(buf, s[last:]...)
	return string(buf)
}
