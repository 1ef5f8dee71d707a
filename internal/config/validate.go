package config

import (
	"errors"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCompose(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.Git == "" {
		return errors.New("tools.git must be set")
	}
	if c.Tools.Pdftoppm == "" {
		return errors.New("tools.pdftoppm must be set")
	}
	if c.Tools.Latexmk == "" && c.Tools.Pdflatex == "" {
		return errors.New("at least one of tools.latexmk or tools.pdflatex must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.DPI < 10 || c.Render.DPI > 2400 {
		return errors.New("render.dpi must be between 10 and 2400")
	}
	if c.Render.MaxPages < 1 {
		return errors.New("render.max_pages must be at least 1")
	}
	if c.Render.FrameDuration <= 0 {
		return errors.New("render.frame_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCompose() error {
	if c.Compose.MaxHeight < 1 {
		return errors.New("compose.max_height must be at least 1")
	}
	if c.Compose.Gap < 0 {
		return errors.New("compose.gap must not be negative")
	}
	return nil
}
