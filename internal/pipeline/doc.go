// Package pipeline drives the per-commit workflow: checkout, build,
// rasterize, compose, save, then final animation assembly.
//
// Each commit moves through pending, checked_out, built, rasterized,
// composed, and saved, or drops to skipped at the first stage failure. A
// single commit's failure never aborts the run; the run aborts only on
// preconditions (before any checkout) or when zero frames survive.
// Execution is strictly sequential because checkout mutates the one shared
// working tree.
package pipeline
