// Package main hosts the texlapse CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the render pipeline from the root
// command and surfaces supporting utilities as subcommands: configuration
// scaffolding, external-tool checks, and run history from the ledger. It
// centralizes configuration resolution and structured logging setup so the
// pipeline packages stay free of terminal concerns.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
