package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented tree shaped text for debug reports.
type TreeWriter struct {
	w      strings.Builder
	indent string
}

// NewTreeWriter creates a writer using the given indentation unit, two
// spaces when empty.
func NewTreeWriter(indent string) *TreeWriter {
	if len(indent) == 0 {
		indent = "  "
	}
	return &TreeWriter{indent: indent}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes a labeled value, quoted so embedded newlines and control
// characters survive the dump. Empty values stay unquoted.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if len(value) > 0 {
		tw.w.WriteString(strconv.Quote(value))
	}
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}
