// Package anim assembles composed strip images into the final animation.
// Encoding failure here is fatal to the run; everything upstream has already
// succeeded by the time frames reach the encoder.
package anim
