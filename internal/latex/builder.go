package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Builder compiles a LaTeX source file into a PDF build artifact.
type Builder interface {
	// Build compiles texRel (relative to repoDir) and returns the path of
	// the produced PDF inside buildDir.
	Build(ctx context.Context, repoDir, texRel, buildDir string) (string, error)
}

// Option configures the CLI builder.
type Option func(*CLI)

// WithLatexmk overrides the latexmk binary name. An empty value disables the
// primary tool entirely.
func WithLatexmk(binary string) Option {
	return func(c *CLI) { c.latexmk = binary }
}

// WithPdflatex overrides the pdflatex binary name.
func WithPdflatex(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.pdflatex = binary
		}
	}
}

// CLI builds documents by invoking latexmk with a pdflatex fallback.
type CLI struct {
	latexmk  string
	pdflatex string
}

// NewCLI constructs a CLI builder using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{latexmk: "latexmk", pdflatex: "pdflatex"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Build tries latexmk first; on failure or missing output it falls back to
// two pdflatex passes. Compilation runs with the repository root as working
// directory so relative \input and asset paths resolve, while all build
// products land in buildDir.
func (c *CLI) Build(ctx context.Context, repoDir, texRel, buildDir string) (string, error) {
	if texRel == "" {
		return "", errors.New("tex path required")
	}
	if buildDir == "" {
		return "", errors.New("build directory required")
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", fmt.Errorf("create build directory: %w", err)
	}

	base := filepath.Base(texRel)
	pdfPath := filepath.Join(buildDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")

	var latexmkErr error
	if c.latexmk != "" {
		if _, err := exec.LookPath(c.latexmk); err == nil {
			latexmkErr = c.runTool(ctx, repoDir, c.latexmk,
				"-pdf", "-interaction=nonstopmode", "-halt-on-error", "-silent",
				"-output-directory="+buildDir, texRel)
			if latexmkErr == nil {
				if _, err := os.Stat(pdfPath); err == nil {
					return pdfPath, nil
				}
				latexmkErr = fmt.Errorf("latexmk finished but PDF not found at %s", pdfPath)
			}
		}
	}

	if _, err := exec.LookPath(c.pdflatex); err != nil {
		if latexmkErr != nil {
			return "", fmt.Errorf("latexmk failed (%v) and pdflatex is unavailable", latexmkErr)
		}
		return "", errors.New("neither latexmk nor pdflatex is available to build the document")
	}

	// Two passes so references and the table of contents settle.
	for pass := 1; pass <= 2; pass++ {
		if err := c.runTool(ctx, repoDir, c.pdflatex,
			"-interaction=nonstopmode", "-halt-on-error",
			"-output-directory", buildDir, texRel); err != nil {
			return "", fmt.Errorf("pdflatex pass %d: %w", pass, err)
		}
	}

	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("build succeeded but PDF not found at %s", pdfPath)
	}
	return pdfPath, nil
}

func (c *CLI) runTool(ctx context.Context, dir, binary string, args ...string) error {
	cmd := commandContext(ctx, binary, args...)
	cmd.Dir = dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if tail := outputTail(output.String()); tail != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(binary), err, tail)
		}
		return fmt.Errorf("%s: %w", filepath.Base(binary), err)
	}
	return nil
}

// outputTail keeps the last few lines of compiler output, which is where TeX
// engines put the actual error.
func outputTail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	const keep = 5
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}

var _ Builder = (*CLI)(nil)
