package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeRender()
	c.normalizeCompose()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = defaultLedgerPath
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	// OutDir stays relative to the invocation directory unless the user made
	// it absolute; it is resolved at run time.
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	return nil
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.Git) == "" {
		c.Tools.Git = defaultGitBinary
	}
	if strings.TrimSpace(c.Tools.Latexmk) == "" {
		c.Tools.Latexmk = defaultLatexmk
	}
	if strings.TrimSpace(c.Tools.Pdflatex) == "" {
		c.Tools.Pdflatex = defaultPdflatex
	}
	if strings.TrimSpace(c.Tools.Pdftoppm) == "" {
		c.Tools.Pdftoppm = defaultPdftoppm
	}
}

func (c *Config) normalizeRender() {
	if c.Render.DPI <= 0 {
		c.Render.DPI = defaultDPI
	}
	if c.Render.MaxPages <= 0 {
		c.Render.MaxPages = defaultMaxPages
	}
	if c.Render.FrameDuration <= 0 {
		c.Render.FrameDuration = defaultFrameDuration
	}
}

func (c *Config) normalizeCompose() {
	if c.Compose.MaxHeight <= 0 {
		c.Compose.MaxHeight = defaultMaxHeight
	}
	if c.Compose.Gap < 0 {
		c.Compose.Gap = defaultGap
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "json":
	default:
		c.Logging.Format = "auto"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
