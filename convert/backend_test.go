package convert

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"texsvg/config"
)

func TestNewBackendVariants(t *testing.T) {
	for _, c := range []config.Converter{config.ConverterInkscape, config.ConverterPdf2svg, config.ConverterPstoedit} {
		b := NewBackend(c, "/usr/bin/"+c.String())
		if b.String() != c.String() {
			t.Errorf("backend name mismatch: %s != %s", b.String(), c.String())
		}
	}
}

func TestLookupToolNotFound(t *testing.T) {
	_, err := LookupTool("definitely-not-an-installed-tool-4f9d")
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("expected ErrExecutableNotFound, got %v", err)
	}
}

func TestRunToolCapturesStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	stdout, stderr, err := runTool(context.Background(), t.TempDir(), "sh", "-c", "echo visible; echo hidden >&2; exit 3")
	if err == nil {
		t.Fatal("expected tool failure")
	}
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if ee.Code != 3 {
		t.Errorf("exit code = %d, want 3", ee.Code)
	}
	if string(ee.Stdout) != "visible\n" || string(ee.Stderr) != "hidden\n" {
		t.Errorf("captured streams mismatch: %q / %q", ee.Stdout, ee.Stderr)
	}
	if string(stdout) != "visible\n" || string(stderr) != "hidden\n" {
		t.Errorf("returned streams mismatch: %q / %q", stdout, stderr)
	}
}

func TestRunToolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := runTool(ctx, t.TempDir(), "sh", "-c", "true"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
