package convert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExecutableNotFound wraps a configured external tool that could not be
// resolved against PATH. It is raised at pipeline entry, before any work
// starts.
var ErrExecutableNotFound = errors.New("executable not found")

// ExitError carries the verbatim output of a failed external tool. Nothing
// is parsed or trimmed, the streams go to the user as captured.
type ExitError struct {
	Tool   string
	Code   int
	Stdout []byte
	Stderr []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Tool, e.Code)
}

// CompilerError marks a failed TeX compilation. LogExcerpt holds the first
// error from the compiler log with its context lines, the underlying
// ExitError keeps the full stdout and stderr.
type CompilerError struct {
	LogExcerpt string
	Err        error
}

func (e *CompilerError) Error() string {
	if len(e.LogExcerpt) > 0 {
		first, _, _ := strings.Cut(e.LogExcerpt, "\n")
		return fmt.Sprintf("tex compilation failed: %s", first)
	}
	return fmt.Sprintf("tex compilation failed: %v", e.Err)
}

func (e *CompilerError) Unwrap() error {
	return e.Err
}

// MalformedOutputError marks tool output that exists but cannot be used:
// a compiler artifact that is not a PDF, converter output that is not an SVG
// or has no drawable content.
type MalformedOutputError struct {
	Path string
	Err  error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("unusable tool output %s: %v", e.Path, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}
