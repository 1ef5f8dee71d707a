package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Repo wraps the git command line for a single repository working tree.
type Repo struct {
	dir    string
	binary string
}

// Option configures the git wrapper.
type Option func(*Repo)

// WithBinary overrides the default git binary name.
func WithBinary(binary string) Option {
	return func(r *Repo) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// New constructs a Repo rooted at dir.
func New(dir string, opts ...Option) *Repo {
	repo := &Repo{dir: dir, binary: "git"}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Dir returns the repository working-tree path.
func (r *Repo) Dir() string { return r.dir }

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", r.dir}, args...)
	cmd := commandContext(ctx, r.binary, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, detail)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// IsRepository reports whether the wrapped directory is inside a git work tree.
func (r *Repo) IsRepository(ctx context.Context) error {
	if _, err := r.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("not a git repository: %s", r.dir)
	}
	return nil
}

// CommitsTouching returns the hashes of all commits that modified relPath,
// ordered oldest to newest.
func (r *Repo) CommitsTouching(ctx context.Context, relPath string) ([]string, error) {
	out, err := r.run(ctx, "log", "--pretty=format:%H", "--reverse", "--", relPath)
	if err != nil {
		return nil, err
	}
	var hashes []string
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			hashes = append(hashes, trimmed)
		}
	}
	return hashes, nil
}

// CurrentRef returns the checked-out branch name, or the commit hash when
// HEAD is detached. The returned value is suitable for a later Checkout.
func (r *Repo) CurrentRef(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	ref := strings.TrimSpace(out)
	if ref == "" {
		return "", errors.New("git rev-parse returned no reference")
	}
	if ref != "HEAD" {
		return ref, nil
	}
	// Detached HEAD: record the hash instead.
	out, err = r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return "", errors.New("git rev-parse returned no hash for detached HEAD")
	}
	return hash, nil
}

// Checkout switches the working tree to the given commit hash or branch name.
func (r *Repo) Checkout(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return errors.New("checkout reference required")
	}
	_, err := r.run(ctx, "checkout", "--quiet", ref)
	return err
}

// ShortHash abbreviates a commit hash for file names and log lines.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
