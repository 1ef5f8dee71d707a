package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// gitStubScript emulates the subset of git the pipeline uses. Repository
// state lives in plain files under .git: REF holds the current reference,
// COMMITS the log output, CHECKOUTS the record of every checkout performed.
const gitStubScript = `#!/bin/sh
dir="$2"
state="$dir/.git"
sub="$3"
case "$sub" in
  rev-parse)
    if [ "$4" = "--git-dir" ]; then
      echo "$state"
      exit 0
    fi
    cat "$state/REF"
    exit 0
    ;;
  log)
    cat "$state/COMMITS" 2>/dev/null
    exit 0
    ;;
  checkout)
    if [ -f "$state/FAIL_CHECKOUT" ] && grep -qx "$5" "$state/FAIL_CHECKOUT"; then
      echo "error: could not check out $5" >&2
      exit 1
    fi
    echo "$5" >> "$state/CHECKOUTS"
    echo "$5" > "$state/REF"
    exit 0
    ;;
esac
exit 1
`

// GitStub describes a scripted repository for pipeline tests.
type GitStub struct {
	Binary  string
	RepoDir string
}

// NewGitStub creates a fake repository directory plus a git binary stub that
// serves the given commit list (oldest first) and starts on branch.
func NewGitStub(t testing.TB, commits []string, branch string) *GitStub {
	t.Helper()

	repoDir := t.TempDir()
	stateDir := filepath.Join(repoDir, ".git")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	writeStateFile(t, stateDir, "REF", branch+"\n")
	writeStateFile(t, stateDir, "COMMITS", strings.Join(commits, "\n")+"\n")

	binDir := t.TempDir()
	binary := filepath.Join(binDir, "git")
	if err := os.WriteFile(binary, []byte(gitStubScript), 0o755); err != nil {
		t.Fatalf("write git stub: %v", err)
	}

	return &GitStub{Binary: binary, RepoDir: repoDir}
}

// FailCheckout makes subsequent checkouts of the given refs fail.
func (g *GitStub) FailCheckout(t testing.TB, refs ...string) {
	t.Helper()
	writeStateFile(t, filepath.Join(g.RepoDir, ".git"), "FAIL_CHECKOUT", strings.Join(refs, "\n")+"\n")
}

// Checkouts returns every reference checked out so far, in order.
func (g *GitStub) Checkouts(t testing.TB) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(g.RepoDir, ".git", "CHECKOUTS"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read checkouts: %v", err)
	}
	var refs []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			refs = append(refs, trimmed)
		}
	}
	return refs
}

// CurrentRef returns the reference the stub repository currently sits on.
func (g *GitStub) CurrentRef(t testing.TB) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(g.RepoDir, ".git", "REF"))
	if err != nil {
		t.Fatalf("read ref: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// WriteWorkFile places a file inside the stub repository's working tree.
func (g *GitStub) WriteWorkFile(t testing.TB, relPath, content string) {
	t.Helper()
	path := filepath.Join(g.RepoDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func writeStateFile(t testing.TB, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
