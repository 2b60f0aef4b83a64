package driver

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is how many unchanged lines surround each change.
const contextLines = 3

// Diff renders a line diff turning current into generated. It returns ""
// when both are equal.
func Diff(name string, current, generated []byte) string {
	if string(current) == string(generated) {
		return ""
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(current), string(generated))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s (generated)\n", name, name)
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffpatch.DiffDelete:
			writeLines(&out, "-", text)
		case diffpatch.DiffInsert:
			writeLines(&out, "+", text)
		case diffpatch.DiffEqual:
			writeContext(&out, text, i > 0, i < len(diffs)-1)
		}
	}
	return out.String()
}

// writeContext keeps the unchanged lines next to a change and elides the
// rest.
func writeContext(out *strings.Builder, text []string, after, before bool) {
	var head, tail []string
	if after {
		head = text[:min(contextLines, len(text))]
		text = text[len(head):]
	}
	if before {
		tail = text[max(0, len(text)-contextLines):]
		text = text[:len(text)-len(tail)]
	}
	writeLines(out, " ", head)
	if len(text) > 0 {
		fmt.Fprintf(out, "@@ %d unchanged lines @@\n", len(text))
	}
	writeLines(out, " ", tail)
}

func writeLines(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteString("\n")
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
