// Package latex compiles a commit's checked-out LaTeX source into a PDF.
//
// The CLI implementation prefers latexmk and falls back to two pdflatex
// passes when latexmk is absent, fails, or produces no PDF. Build failures
// are per-commit events; callers skip the commit and continue.
package latex
