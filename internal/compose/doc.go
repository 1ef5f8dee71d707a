// Package compose turns a commit's rendered page images into one horizontal
// strip: pages placed left to right, top-aligned, downscaled (never
// upscaled) to a common maximum height, separated by a fixed gap, flattened
// over a white background.
package compose
