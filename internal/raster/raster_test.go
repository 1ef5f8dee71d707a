package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touchPage(t *testing.T, prefix string, n int) {
	t.Helper()
	if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, n), []byte("png"), 0o644); err != nil {
		t.Fatalf("touch page %d: %v", n, err)
	}
}

func TestCollectPagesStopsAtFirstGap(t *testing.T) {
	prefix := PagePrefix(t.TempDir())
	for _, n := range []int{1, 2, 4} {
		touchPage(t, prefix, n)
	}

	pages := CollectPages(prefix, 10)
	if len(pages) != 2 {
		t.Fatalf("expected pages [1 2], got %v", pages)
	}
	if !strings.HasSuffix(pages[0], "page-1.png") || !strings.HasSuffix(pages[1], "page-2.png") {
		t.Fatalf("unexpected page order: %v", pages)
	}
}

func TestCollectPagesHonorsCap(t *testing.T) {
	prefix := PagePrefix(t.TempDir())
	for n := 1; n <= 6; n++ {
		touchPage(t, prefix, n)
	}

	pages := CollectPages(prefix, 4)
	if len(pages) != 4 {
		t.Fatalf("expected cap of 4 pages, got %d", len(pages))
	}
}

func TestCollectPagesEmpty(t *testing.T) {
	if pages := CollectPages(PagePrefix(t.TempDir()), 10); len(pages) != 0 {
		t.Fatalf("expected no pages, got %v", pages)
	}
}

func TestPagesRunsToolAndCollects(t *testing.T) {
	// Stub pdftoppm writes three pages for whatever prefix it receives as
	// its last argument.
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "pdftoppm")
	script := `#!/bin/sh
for arg in "$@"; do last="$arg"; done
for n in 1 2 3; do printf 'png' > "$last-$n.png"; done
exit 0
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	cli := NewCLI(WithBinary(stub))
	prefix := PagePrefix(t.TempDir())
	pages, err := cli.Pages(context.Background(), "doc.pdf", prefix, 150, 2)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected cap to apply, got %d pages", len(pages))
	}
}

func TestPagesSurfacesToolFailure(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "pdftoppm")
	script := "#!/bin/sh\necho 'Syntax Error: broken PDF' >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	cli := NewCLI(WithBinary(stub))
	_, err := cli.Pages(context.Background(), "doc.pdf", PagePrefix(t.TempDir()), 150, 10)
	if err == nil {
		t.Fatal("expected rasterization failure")
	}
	if !strings.Contains(err.Error(), "Syntax Error") {
		t.Fatalf("expected stderr detail, got %v", err)
	}
}

func TestPagesValidatesArguments(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Pages(context.Background(), "", "prefix", 150, 10); err == nil {
		t.Fatal("expected error for missing pdf path")
	}
	if _, err := cli.Pages(context.Background(), "doc.pdf", "prefix", 150, 0); err == nil {
		t.Fatal("expected error for zero page cap")
	}
}
