// Package raster converts PDF build artifacts into per-page PNG images via
// pdftoppm. Page numbering is treated as contiguous starting at 1; a gap
// silently truncates the page list rather than erroring.
package raster
