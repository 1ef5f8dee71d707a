package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"texlapse/internal/anim"
	"texlapse/internal/clierr"
	"texlapse/internal/compose"
	"texlapse/internal/gitrepo"
	"texlapse/internal/latex"
	"texlapse/internal/ledger"
	"texlapse/internal/logging"
	"texlapse/internal/raster"
)

// Options carries everything one pipeline run needs.
type Options struct {
	RepoPath      string
	TexPath       string // relative to the repository root
	OutPath       string // final animation file
	OutDir        string // directory for composed strip images
	MaxPages      int
	DPI           int
	FrameDuration time.Duration
	MaxHeight     int
	Gap           int
	KeepTemp      bool
}

// Summary reports what a run produced.
type Summary struct {
	RunID       string
	Commits     int
	FramesSaved int
	Skipped     int
	OutPath     string
}

// Driver walks a repository's history and turns each qualifying commit into
// one animation frame. It owns the working tree for the duration of a run:
// the original reference is recorded before the first checkout and restored
// after the last commit, however many commits were skipped in between.
type Driver struct {
	opts       Options
	repo       *gitrepo.Repo
	builder    latex.Builder
	rasterizer raster.Rasterizer
	encoder    anim.Encoder
	store      *ledger.Store
	logger     *slog.Logger
}

// New constructs a Driver. The ledger store may be nil, in which case run
// records are not persisted.
func New(opts Options, repo *gitrepo.Repo, builder latex.Builder, rasterizer raster.Rasterizer, encoder anim.Encoder, store *ledger.Store, logger *slog.Logger) (*Driver, error) {
	if repo == nil || builder == nil || rasterizer == nil || encoder == nil {
		return nil, fmt.Errorf("pipeline requires repo, builder, rasterizer, and encoder")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		opts:       opts,
		repo:       repo,
		builder:    builder,
		rasterizer: rasterizer,
		encoder:    encoder,
		store:      store,
		logger:     logger.With(logging.String(logging.FieldComponent, "pipeline")),
	}, nil
}

// Run executes the full pipeline. Errors carry exit codes via clierr:
// precondition failures map to 2, encoding failures to 1.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	repoPath, err := filepath.Abs(d.opts.RepoPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "resolve repository path", err)
	}
	if _, err := os.Stat(repoPath); err != nil {
		return nil, clierr.Newf(clierr.CodePrecondition, "repository path does not exist: %s", repoPath)
	}
	if err := d.repo.IsRepository(ctx); err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "check repository", err)
	}
	texAbs := filepath.Join(repoPath, d.opts.TexPath)
	if _, err := os.Stat(texAbs); err != nil {
		return nil, clierr.Newf(clierr.CodePrecondition, "target document not found in repository: %s", texAbs)
	}

	// The working tree is shared mutable state; one run owns it exclusively.
	lock := flock.New(filepath.Join(repoPath, ".git", "texlapse.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "acquire repository lock", err)
	}
	if !locked {
		return nil, clierr.Newf(clierr.CodePrecondition, "another texlapse run is active in %s", repoPath)
	}
	defer func() { _ = lock.Unlock() }()

	originalRef, err := d.repo.CurrentRef(ctx)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "record current reference", err)
	}
	d.logger.Info("recorded original reference", logging.String("ref", originalRef))

	commits, err := d.repo.CommitsTouching(ctx, d.opts.TexPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "list commits", err)
	}
	if len(commits) == 0 {
		return nil, clierr.Newf(clierr.CodePrecondition, "no commits found touching %s", d.opts.TexPath)
	}
	d.logger.Info("found commits touching document",
		logging.Int("commits", len(commits)),
		logging.String("tex", d.opts.TexPath))

	if err := os.MkdirAll(d.opts.OutDir, 0o755); err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "create output directory", err)
	}
	if d.opts.KeepTemp {
		d.logger.Info("build directories are always ephemeral; composed strips are kept",
			logging.String("out_dir", d.opts.OutDir))
	}

	run := d.beginRun(ctx, repoPath, len(commits))
	if run != nil {
		ctx = logging.WithRunID(ctx, run.ID)
	}

	var framePaths []string
	skipped := 0
	for idx, commit := range commits {
		seq := idx + 1
		short := gitrepo.ShortHash(commit)
		commitCtx := logging.WithCommit(ctx, short)
		commitLogger := logging.WithContext(commitCtx, d.logger)
		commitLogger.Info("processing commit", logging.Int("seq", seq), logging.Int("total", len(commits)))

		frame := d.addFrame(commitCtx, run, seq, commit)
		stripPath, err := d.processCommit(commitCtx, commitLogger, repoPath, seq, commit, frame)
		if err != nil {
			skipped++
			commitLogger.Warn("commit skipped", logging.Error(err))
			if frame != nil {
				frame.MarkSkipped(err.Error())
				d.updateFrame(commitCtx, frame)
			}
			continue
		}
		framePaths = append(framePaths, stripPath)
	}

	// Restore no matter how many commits were skipped. Failure is logged,
	// not fatal: the animation may still be worth having.
	if err := d.repo.Checkout(ctx, originalRef); err != nil {
		d.logger.Warn("could not restore original reference; check out manually",
			logging.String("ref", originalRef),
			logging.Error(err))
	} else {
		d.logger.Info("restored original reference", logging.String("ref", originalRef))
	}

	summary := &Summary{
		Commits:     len(commits),
		FramesSaved: len(framePaths),
		Skipped:     skipped,
		OutPath:     d.opts.OutPath,
	}
	if run != nil {
		summary.RunID = run.ID
	}

	if len(framePaths) == 0 {
		err := clierr.New(clierr.CodePrecondition, "no composed strips were generated")
		d.finishRun(ctx, run, 0, err)
		return summary, err
	}

	d.logger.Info("assembling animation",
		logging.Int("frames", len(framePaths)),
		logging.String("out", d.opts.OutPath))
	if err := d.encoder.Encode(ctx, framePaths, d.opts.FrameDuration, d.opts.OutPath); err != nil {
		wrapped := clierr.Wrap(clierr.CodeFailure, "write animation", err)
		d.finishRun(ctx, run, len(framePaths), wrapped)
		return summary, wrapped
	}

	d.finishRun(ctx, run, len(framePaths), nil)
	d.logger.Info("animation saved",
		logging.String("out", d.opts.OutPath),
		logging.Int("frames", len(framePaths)),
		logging.Int("skipped", skipped))
	return summary, nil
}

// processCommit runs one commit through checkout, build, rasterize, compose,
// and save. Any error disqualifies the commit's frame only.
func (d *Driver) processCommit(ctx context.Context, logger *slog.Logger, repoPath string, seq int, commit string, frame *ledger.Frame) (string, error) {
	if err := d.repo.Checkout(ctx, commit); err != nil {
		return "", fmt.Errorf("checkout: %w", err)
	}
	d.transition(ctx, frame, ledger.StatusCheckedOut)

	buildDir, err := os.MkdirTemp("", "texlapse-build-")
	if err != nil {
		return "", fmt.Errorf("create build directory: %w", err)
	}
	defer os.RemoveAll(buildDir)

	stageCtx := logging.WithStage(ctx, "build")
	pdfPath, err := d.builder.Build(stageCtx, repoPath, d.opts.TexPath, buildDir)
	if err != nil {
		return "", fmt.Errorf("build: %w", err)
	}
	d.transition(ctx, frame, ledger.StatusBuilt)
	logging.WithContext(stageCtx, logger).Debug("document built", logging.String("pdf", pdfPath))

	stageCtx = logging.WithStage(ctx, "rasterize")
	pages, err := d.rasterizer.Pages(stageCtx, pdfPath, raster.PagePrefix(buildDir), d.opts.DPI, d.opts.MaxPages)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages produced")
	}
	d.transition(ctx, frame, ledger.StatusRasterized)
	if frame != nil {
		frame.Pages = len(pages)
	}
	logging.WithContext(stageCtx, logger).Debug("pages rendered", logging.Int("pages", len(pages)))

	images, err := compose.LoadPNGs(pages)
	if err != nil {
		return "", fmt.Errorf("load pages: %w", err)
	}
	strip, err := compose.Strip(images, compose.Options{MaxHeight: d.opts.MaxHeight, Gap: d.opts.Gap})
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	d.transition(ctx, frame, ledger.StatusComposed)

	stripPath := filepath.Join(d.opts.OutDir, fmt.Sprintf("composed_%04d_%s.png", seq, gitrepo.ShortHash(commit)))
	if err := compose.WritePNG(stripPath, strip); err != nil {
		return "", fmt.Errorf("save strip: %w", err)
	}
	if frame != nil {
		frame.Status = ledger.StatusSaved
		frame.StripPath = stripPath
		d.updateFrame(ctx, frame)
	}
	logger.Info("strip saved", logging.String("strip", stripPath), logging.Int("pages", len(pages)))
	return stripPath, nil
}

func (d *Driver) beginRun(ctx context.Context, repoPath string, commitCount int) *ledger.Run {
	if d.store == nil {
		return nil
	}
	run, err := d.store.BeginRun(ctx, repoPath, d.opts.TexPath, d.opts.OutPath, commitCount)
	if err != nil {
		d.logger.Warn("could not record run in ledger", logging.Error(err))
		return nil
	}
	return run
}

func (d *Driver) finishRun(ctx context.Context, run *ledger.Run, framesSaved int, runErr error) {
	if d.store == nil || run == nil {
		return
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if err := d.store.FinishRun(ctx, run.ID, framesSaved, message); err != nil {
		d.logger.Warn("could not finalize run in ledger", logging.Error(err))
	}
}

func (d *Driver) addFrame(ctx context.Context, run *ledger.Run, seq int, commit string) *ledger.Frame {
	if d.store == nil || run == nil {
		return nil
	}
	frame, err := d.store.AddFrame(ctx, run.ID, seq, commit)
	if err != nil {
		d.logger.Warn("could not record frame in ledger", logging.Error(err))
		return nil
	}
	return frame
}

func (d *Driver) transition(ctx context.Context, frame *ledger.Frame, status ledger.Status) {
	if frame == nil {
		return
	}
	frame.Status = status
	d.updateFrame(ctx, frame)
}

func (d *Driver) updateFrame(ctx context.Context, frame *ledger.Frame) {
	if d.store == nil || frame == nil {
		return
	}
	if err := d.store.UpdateFrame(ctx, frame); err != nil {
		d.logger.Warn("could not update frame in ledger", logging.Error(err))
	}
}
