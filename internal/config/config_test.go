package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texlapse/internal/config"
)

func TestLoadDefaultsWhenNoFileExists(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "texlapse", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.OutDir != "latex_history_out" {
		t.Fatalf("unexpected out dir: %q", cfg.Paths.OutDir)
	}
	if cfg.Tools.Git != "git" || cfg.Tools.Pdftoppm != "pdftoppm" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Render.DPI != 150 || cfg.Render.MaxPages != 10 {
		t.Fatalf("unexpected render defaults: %+v", cfg.Render)
	}
	if cfg.Render.FrameDuration != 1.0 {
		t.Fatalf("unexpected frame duration: %v", cfg.Render.FrameDuration)
	}
	if cfg.Compose.MaxHeight != 1200 || cfg.Compose.Gap != 8 {
		t.Fatalf("unexpected compose defaults: %+v", cfg.Compose)
	}
	if cfg.Logging.Format != "auto" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[tools]
latexmk = ""
pdflatex = "/opt/texlive/bin/pdflatex"

[render]
dpi = 300
max_pages = 4

[compose]
max_height = 900
gap = 4

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Tools.Latexmk != "latexmk" {
		t.Fatalf("empty latexmk should fall back to default, got %q", cfg.Tools.Latexmk)
	}
	if cfg.Tools.Pdflatex != "/opt/texlive/bin/pdflatex" {
		t.Fatalf("unexpected pdflatex: %q", cfg.Tools.Pdflatex)
	}
	if cfg.Render.DPI != 300 || cfg.Render.MaxPages != 4 {
		t.Fatalf("unexpected render settings: %+v", cfg.Render)
	}
	if cfg.Compose.MaxHeight != 900 || cfg.Compose.Gap != 4 {
		t.Fatalf("unexpected compose settings: %+v", cfg.Compose)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[render]\ndpi = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for dpi below range")
	}
	if !strings.Contains(err.Error(), "render.dpi") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Render.DPI != 150 {
		t.Fatalf("sample config should carry defaults, got dpi %d", cfg.Render.DPI)
	}
}

func TestExpandPathTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/work/repo")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(tempHome, "work", "repo") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
