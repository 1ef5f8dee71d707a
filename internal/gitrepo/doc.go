// Package gitrepo wraps the git command line for the handful of operations
// the pipeline needs: listing commits that touched a file, reading the
// current reference, and switching the working tree between commits.
//
// The working tree is shared mutable state. Callers own it exclusively for
// the duration of a run: record the current reference before the first
// checkout and restore it when done.
package gitrepo
