package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"texlapse/internal/anim"
	"texlapse/internal/clierr"
	"texlapse/internal/config"
	"texlapse/internal/deps"
	"texlapse/internal/gitrepo"
	"texlapse/internal/latex"
	"texlapse/internal/ledger"
	"texlapse/internal/logging"
	"texlapse/internal/pipeline"
	"texlapse/internal/raster"
)

// renderFlags collects the per-run overrides accepted by the root command.
// A flag only overrides configuration when the user actually set it.
type renderFlags struct {
	tex           string
	out           string
	outDir        string
	maxPages      int
	dpi           int
	frameDuration float64
	keepTemp      bool
	verbose       bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	flags := &renderFlags{}

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "texlapse <repository>",
		Short:         "Render a LaTeX document's git history as an animated timeline",
		Long: `texlapse walks every commit that touched a LaTeX document, builds the
document at each commit, rasterizes the resulting PDF, composes the pages
into a horizontal strip, and assembles the strips into an animated GIF.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(ctx, cmd, args[0], flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&flags.tex, "tex", "main.tex", "Target .tex file, relative to the repository root")
	rootCmd.Flags().StringVar(&flags.out, "out", "history_anim.gif", "Output animation path")
	rootCmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Directory for composed strip images")
	rootCmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "Maximum pages rendered per commit")
	rootCmd.Flags().IntVar(&flags.dpi, "dpi", 0, "Rasterization resolution in dots per inch")
	rootCmd.Flags().Float64Var(&flags.frameDuration, "frame-duration", 0, "Seconds each frame is shown")
	rootCmd.Flags().BoolVar(&flags.keepTemp, "keep-temp", false, "Keep intermediate artifacts where possible")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))

	return rootCmd
}

func runRender(cmdCtx *commandContext, cmd *cobra.Command, repoArg string, flags *renderFlags) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "load configuration", err)
	}
	applyRenderOverrides(cfg, cmd, flags)
	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "validate settings", err)
	}

	logger, err := logging.NewFromConfig(cfg, flags.verbose)
	if err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "configure logging", err)
	}

	if err := deps.Verify(cfg); err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "dependency check", err)
	}

	repoPath, err := filepath.Abs(repoArg)
	if err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "resolve repository path", err)
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		logger.Warn("run ledger unavailable; continuing without it",
			logging.String("path", cfg.Paths.LedgerPath),
			logging.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	opts := pipeline.Options{
		RepoPath:      repoPath,
		TexPath:       flags.tex,
		OutPath:       flags.out,
		OutDir:        cfg.Paths.OutDir,
		MaxPages:      cfg.Render.MaxPages,
		DPI:           cfg.Render.DPI,
		FrameDuration: time.Duration(cfg.Render.FrameDuration * float64(time.Second)),
		MaxHeight:     cfg.Compose.MaxHeight,
		Gap:           cfg.Compose.Gap,
		KeepTemp:      flags.keepTemp,
	}

	repo := gitrepo.New(repoPath, gitrepo.WithBinary(cfg.Tools.Git))
	builder := latex.NewCLI(latex.WithLatexmk(cfg.Tools.Latexmk), latex.WithPdflatex(cfg.Tools.Pdflatex))
	rasterizer := raster.NewCLI(raster.WithBinary(cfg.Tools.Pdftoppm))
	encoder := anim.NewGIF()

	driver, err := pipeline.New(opts, repo, builder, rasterizer, encoder, store, logger)
	if err != nil {
		return clierr.Wrap(clierr.CodePrecondition, "assemble pipeline", err)
	}

	summary, err := driver.Run(runCtx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Animation saved to %s (%d of %d commits rendered, %d skipped)\n",
		summary.OutPath, summary.FramesSaved, summary.Commits, summary.Skipped)
	return nil
}

// applyRenderOverrides folds explicitly-set flags into the loaded config so
// the precedence is flag, then config file, then built-in default.
func applyRenderOverrides(cfg *config.Config, cmd *cobra.Command, flags *renderFlags) {
	if cmd.Flags().Changed("out-dir") {
		cfg.Paths.OutDir = flags.outDir
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.Render.MaxPages = flags.maxPages
	}
	if cmd.Flags().Changed("dpi") {
		cfg.Render.DPI = flags.dpi
	}
	if cmd.Flags().Changed("frame-duration") {
		cfg.Render.FrameDuration = flags.frameDuration
	}
}
