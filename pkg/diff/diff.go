// Package diff renders line diffs between a file and its converted form.
package diff

import (
	"strings"

	"github.com/fatih/color"
	"github.com/kylelemons/godebug/diff"
)

// Lines returns a line diff turning before into after, or "" when they match.
// Lines only in before start with "-", lines only in after with "+".
func Lines(before, after string) string {
	if before == after {
		return ""
	}
	return diff.Diff(strings.TrimSuffix(before, "\n"), strings.TrimSuffix(after, "\n"))
}

// Changed drops the unchanged context lines of a Lines result.
func Changed(d string) string {
	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+") {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Colorize paints removed lines red and added lines green.
func Colorize(d string) string {
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	lines := strings.Split(d, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "-"):
			lines[i] = removed.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = added.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}
