package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texlapse/internal/clierr"
	"texlapse/internal/config"
)

func writeTestConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutDir = filepath.Join(base, "strips")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	if mutate != nil {
		mutate(&cfg)
	}

	content := fmt.Sprintf(`[paths]
out_dir = %q
log_dir = %q
ledger_path = %q

[tools]
git = %q
latexmk = %q
pdflatex = %q
pdftoppm = %q
`, cfg.Paths.OutDir, cfg.Paths.LogDir, cfg.Paths.LedgerPath,
		cfg.Tools.Git, cfg.Tools.Latexmk, cfg.Tools.Pdflatex, cfg.Tools.Pdftoppm)

	path := filepath.Join(base, "texlapse.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeStubTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsMissingRepository(t *testing.T) {
	toolDir := t.TempDir()
	configPath := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Tools.Git = writeStubTool(t, toolDir, "git")
		cfg.Tools.Latexmk = writeStubTool(t, toolDir, "latexmk")
		cfg.Tools.Pdflatex = writeStubTool(t, toolDir, "pdflatex")
		cfg.Tools.Pdftoppm = writeStubTool(t, toolDir, "pdftoppm")
	})

	missing := filepath.Join(t.TempDir(), "nope")
	_, err := runCLI(t, "--config", configPath, missing)
	if err == nil {
		t.Fatal("expected failure for missing repository")
	}
	if clierr.ExitCodeOf(err) != clierr.CodePrecondition {
		t.Fatalf("expected exit code 2, got %d (%v)", clierr.ExitCodeOf(err), err)
	}
}

func TestRootFailsDependencyCheckBeforeTouchingRepository(t *testing.T) {
	configPath := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Tools.Git = "texlapse-no-such-git"
		cfg.Tools.Latexmk = "texlapse-no-such-latexmk"
		cfg.Tools.Pdflatex = "texlapse-no-such-pdflatex"
		cfg.Tools.Pdftoppm = "texlapse-no-such-pdftoppm"
	})

	_, err := runCLI(t, "--config", configPath, t.TempDir())
	if err == nil {
		t.Fatal("expected dependency check failure")
	}
	if clierr.ExitCodeOf(err) != clierr.CodePrecondition {
		t.Fatalf("expected exit code 2, got %d (%v)", clierr.ExitCodeOf(err), err)
	}
	if !strings.Contains(err.Error(), "dependency check") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyRenderOverrides(t *testing.T) {
	cfg := config.Default()
	cmd := newRootCommand()
	flags := &renderFlags{outDir: "custom", maxPages: 3, dpi: 72, frameDuration: 0.5}

	if err := cmd.Flags().Set("out-dir", "custom"); err != nil {
		t.Fatalf("set out-dir: %v", err)
	}
	if err := cmd.Flags().Set("dpi", "72"); err != nil {
		t.Fatalf("set dpi: %v", err)
	}

	applyRenderOverrides(&cfg, cmd, flags)

	if cfg.Paths.OutDir != "custom" {
		t.Fatalf("out-dir override not applied: %q", cfg.Paths.OutDir)
	}
	if cfg.Render.DPI != 72 {
		t.Fatalf("dpi override not applied: %d", cfg.Render.DPI)
	}
	// Untouched flags keep the config values.
	if cfg.Render.MaxPages != 10 {
		t.Fatalf("max-pages should stay at default, got %d", cfg.Render.MaxPages)
	}
	if cfg.Render.FrameDuration != 1.0 {
		t.Fatalf("frame duration should stay at default, got %v", cfg.Render.FrameDuration)
	}
}

func TestConfigInitShowAndPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("init output should name the target: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("reinit without --overwrite should fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	configPath := writeTestConfig(t, nil)

	out, err = runCLI(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[render]") || !strings.Contains(out, "dpi = 150") {
		t.Fatalf("unexpected show output: %q", out)
	}

	out, err = runCLI(t, "--config", configPath, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != configPath {
		t.Fatalf("expected %q, got %q", configPath, out)
	}
}

func TestDepsCommandReportsMissingTools(t *testing.T) {
	toolDir := t.TempDir()
	configPath := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Tools.Git = writeStubTool(t, toolDir, "git")
		cfg.Tools.Latexmk = "texlapse-no-such-latexmk"
		cfg.Tools.Pdflatex = "texlapse-no-such-pdflatex"
		cfg.Tools.Pdftoppm = "texlapse-no-such-pdftoppm"
	})

	out, err := runCLI(t, "--config", configPath, "deps")
	if err == nil {
		t.Fatal("expected deps failure with missing tools")
	}
	if clierr.ExitCodeOf(err) != clierr.CodePrecondition {
		t.Fatalf("expected exit code 2, got %d", clierr.ExitCodeOf(err))
	}
	if !strings.Contains(out, "git") || !strings.Contains(out, "missing") {
		t.Fatalf("table should list tools and status: %q", out)
	}
}

func TestRunsCommandWithEmptyLedger(t *testing.T) {
	configPath := writeTestConfig(t, nil)

	out, err := runCLI(t, "--config", configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("unexpected runs output: %q", out)
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable(
		[]string{"NAME", "COUNT"},
		[][]string{{"alpha", "1"}, {"beta", "22"}},
		2,
	)
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "alpha") {
		t.Fatalf("unexpected table output: %q", out)
	}
}
