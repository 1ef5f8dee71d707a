package config

const (
	defaultLogDir        = "~/.local/share/texlapse/logs"
	defaultLedgerPath    = "~/.local/share/texlapse/ledger.db"
	defaultOutDir        = "latex_history_out"
	defaultGitBinary     = "git"
	defaultLatexmk       = "latexmk"
	defaultPdflatex      = "pdflatex"
	defaultPdftoppm      = "pdftoppm"
	defaultDPI           = 150
	defaultMaxPages      = 10
	defaultFrameDuration = 1.0
	defaultMaxHeight     = 1200
	defaultGap           = 8
	defaultLogFormat     = "auto"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir:     defaultOutDir,
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
		},
		Tools: Tools{
			Git:      defaultGitBinary,
			Latexmk:  defaultLatexmk,
			Pdflatex: defaultPdflatex,
			Pdftoppm: defaultPdftoppm,
		},
		Render: Render{
			DPI:           defaultDPI,
			MaxPages:      defaultMaxPages,
			FrameDuration: defaultFrameDuration,
		},
		Compose: Compose{
			MaxHeight: defaultMaxHeight,
			Gap:       defaultGap,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
