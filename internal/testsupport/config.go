package testsupport

import (
	"path/filepath"
	"testing"

	"texlapse/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerPath = filepath.Join(base, "ledger.db")
	cfg.Paths.OutDir = filepath.Join(base, "out")
	return &cfg
}
