package latex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCompilerStub creates a shell script that optionally writes the
// expected PDF into the directory passed via -output-directory and exits
// with the given code.
func writeCompilerStub(t *testing.T, dir, name string, writePDF bool, exitCode int) string {
	t.Helper()
	var body strings.Builder
	body.WriteString("#!/bin/sh\n")
	if writePDF {
		// Find the output directory in either -output-directory=DIR or
		// -output-directory DIR form, then drop a PDF for the last argument.
		body.WriteString(`outdir=""
prev=""
for arg in "$@"; do
  case "$arg" in
    -output-directory=*) outdir="${arg#-output-directory=}" ;;
  esac
  if [ "$prev" = "-output-directory" ]; then outdir="$arg"; fi
  prev="$arg"
  last="$arg"
done
stem=$(basename "$last" .tex)
printf 'pdf' > "$outdir/$stem.pdf"
`)
	}
	body.WriteString(fmt.Sprintf("exit %d\n", exitCode))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body.String()), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestBuildUsesLatexmk(t *testing.T) {
	binDir := t.TempDir()
	latexmk := writeCompilerStub(t, binDir, "latexmk", true, 0)
	builder := NewCLI(WithLatexmk(latexmk), WithPdflatex("missing-pdflatex"))

	buildDir := t.TempDir()
	pdf, err := builder.Build(context.Background(), t.TempDir(), "main.tex", buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pdf != filepath.Join(buildDir, "main.pdf") {
		t.Fatalf("unexpected pdf path: %q", pdf)
	}
	if _, err := os.Stat(pdf); err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
}

func TestBuildFallsBackToPdflatex(t *testing.T) {
	binDir := t.TempDir()
	latexmk := writeCompilerStub(t, binDir, "latexmk", false, 1)
	pdflatex := writeCompilerStub(t, binDir, "pdflatex", true, 0)
	builder := NewCLI(WithLatexmk(latexmk), WithPdflatex(pdflatex))

	buildDir := t.TempDir()
	pdf, err := builder.Build(context.Background(), t.TempDir(), "paper.tex", buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if filepath.Base(pdf) != "paper.pdf" {
		t.Fatalf("unexpected pdf name: %q", pdf)
	}
}

func TestBuildFallsBackWhenLatexmkProducesNoPDF(t *testing.T) {
	binDir := t.TempDir()
	latexmk := writeCompilerStub(t, binDir, "latexmk", false, 0)
	pdflatex := writeCompilerStub(t, binDir, "pdflatex", true, 0)
	builder := NewCLI(WithLatexmk(latexmk), WithPdflatex(pdflatex))

	if _, err := builder.Build(context.Background(), t.TempDir(), "main.tex", t.TempDir()); err != nil {
		t.Fatalf("expected pdflatex fallback to succeed: %v", err)
	}
}

func TestBuildFailsWhenBothCompilersFail(t *testing.T) {
	binDir := t.TempDir()
	latexmk := writeCompilerStub(t, binDir, "latexmk", false, 1)
	pdflatex := writeCompilerStub(t, binDir, "pdflatex", false, 1)
	builder := NewCLI(WithLatexmk(latexmk), WithPdflatex(pdflatex))

	_, err := builder.Build(context.Background(), t.TempDir(), "main.tex", t.TempDir())
	if err == nil {
		t.Fatal("expected build failure")
	}
	if !strings.Contains(err.Error(), "pdflatex") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildFailsWithoutAnyCompiler(t *testing.T) {
	builder := NewCLI(WithLatexmk("missing-latexmk"), WithPdflatex("missing-pdflatex"))

	_, err := builder.Build(context.Background(), t.TempDir(), "main.tex", t.TempDir())
	if err == nil {
		t.Fatal("expected error when no compiler is available")
	}
	if !strings.Contains(err.Error(), "available") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildRequiresArguments(t *testing.T) {
	builder := NewCLI()
	if _, err := builder.Build(context.Background(), t.TempDir(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for missing tex path")
	}
	if _, err := builder.Build(context.Background(), t.TempDir(), "main.tex", ""); err == nil {
		t.Fatal("expected error for missing build directory")
	}
}
