package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"texsvg/config"
)

// Backend turns the first page of a compiled PDF into an SVG file inside
// workDir and returns the path of the produced file. There is no fallback
// between backends and no retries, a failed conversion propagates as is.
type Backend interface {
	fmt.Stringer
	Convert(ctx context.Context, pdfPath, workDir string) (string, error)
}

// NewBackend builds the backend for the selected converter. exe must be an
// already resolved executable path.
func NewBackend(c config.Converter, exe string) Backend {
	switch c {
	case config.ConverterInkscape:
		return &inkscapeBackend{exe: exe}
	case config.ConverterPdf2svg:
		return &pdf2svgBackend{exe: exe}
	case config.ConverterPstoedit:
		return &pstoeditBackend{exe: exe}
	default:
		// this should never happen
		panic("unsupported converter requested")
	}
}

// LookupTool resolves a configured tool name against PATH.
func LookupTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
	}
	return path, nil
}

type inkscapeBackend struct {
	exe string
}

func (b *inkscapeBackend) String() string { return config.ConverterInkscape.String() }

func (b *inkscapeBackend) Convert(ctx context.Context, pdfPath, workDir string) (string, error) {
	out := filepath.Join(workDir, "content"+config.ConverterInkscape.Ext())
	_, _, err := runTool(ctx, workDir, b.exe,
		"--pdf-poppler",
		"--pages=1",
		"--export-type=svg",
		"--export-text-to-path",
		"--export-area-drawing",
		"--export-filename", out,
		pdfPath)
	if err != nil {
		return "", err
	}
	return out, nil
}

type pdf2svgBackend struct {
	exe string
}

func (b *pdf2svgBackend) String() string { return config.ConverterPdf2svg.String() }

func (b *pdf2svgBackend) Convert(ctx context.Context, pdfPath, workDir string) (string, error) {
	out := filepath.Join(workDir, "content"+config.ConverterPdf2svg.Ext())
	if _, _, err := runTool(ctx, workDir, b.exe, pdfPath, out, "1"); err != nil {
		return "", err
	}
	return out, nil
}

type pstoeditBackend struct {
	exe string
}

func (b *pstoeditBackend) String() string { return config.ConverterPstoedit.String() }

func (b *pstoeditBackend) Convert(ctx context.Context, pdfPath, workDir string) (string, error) {
	out := filepath.Join(workDir, "content"+config.ConverterPstoedit.Ext())
	if _, _, err := runTool(ctx, workDir, b.exe, "-f", "plot-svg", "-dt", "-ssp", pdfPath, out); err != nil {
		return "", err
	}
	return out, nil
}

// runTool executes an external tool capturing both output streams. A non
// zero exit becomes an ExitError with the verbatim streams attached.
func runTool(ctx context.Context, dir, exe string, args ...string) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return stdout.Bytes(), stderr.Bytes(), cerr
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return stdout.Bytes(), stderr.Bytes(), &ExitError{
				Tool:   filepath.Base(exe),
				Code:   ee.ExitCode(),
				Stdout: stdout.Bytes(),
				Stderr: stderr.Bytes(),
			}
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("unable to run %s: %w", exe, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
