// Package deps verifies the external binaries texlapse shells out to are
// present before a run mutates any repository state.
package deps
