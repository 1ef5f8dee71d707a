package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"texlapse/internal/config"
)

// Requirement defines an external binary texlapse relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the external tool set from configuration. git and
// pdftoppm are hard requirements; the two LaTeX compilers are individually
// optional because either one suffices to build a document.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "git", Command: cfg.Tools.Git, Description: "commit history and checkout"},
		{Name: "pdftoppm", Command: cfg.Tools.Pdftoppm, Description: "PDF page rasterization (Poppler)"},
		{Name: "latexmk", Command: cfg.Tools.Latexmk, Description: "primary LaTeX build tool", Optional: true},
		{Name: "pdflatex", Command: cfg.Tools.Pdflatex, Description: "fallback LaTeX compiler", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Verify checks the config's tool set and returns an error naming every
// missing required binary. At least one of the two LaTeX compilers must be
// present even though each is individually optional.
func Verify(cfg *config.Config) error {
	statuses := CheckBinaries(Requirements(cfg))
	var missing []string
	var haveCompiler bool
	for _, status := range statuses {
		if status.Optional {
			if status.Available {
				haveCompiler = true
			}
			continue
		}
		if !status.Available {
			missing = append(missing, status.Command)
		}
	}
	if !haveCompiler {
		missing = append(missing, cfg.Tools.Latexmk+" or "+cfg.Tools.Pdflatex)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
