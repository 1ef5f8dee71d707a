// Package config loads, normalizes, and validates texlapse configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: external tool names, rendering geometry, and logging
// settings. Flag values take precedence over file values, which take
// precedence over defaults; that resolution happens in the command layer.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
