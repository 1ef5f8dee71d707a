package ledger

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a commit's frame within a run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCheckedOut Status = "checked_out"
	StatusBuilt      Status = "built"
	StatusRasterized Status = "rasterized"
	StatusComposed   Status = "composed"
	StatusSaved      Status = "saved"
	StatusSkipped    Status = "skipped"
)

var allStatuses = []Status{
	StatusPending,
	StatusCheckedOut,
	StatusBuilt,
	StatusRasterized,
	StatusComposed,
	StatusSaved,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends a frame's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusSaved || s == StatusSkipped
}

// Run records one pipeline invocation.
type Run struct {
	ID          string
	RepoPath    string
	TexPath     string
	OutputPath  string
	CommitCount int
	FramesSaved int
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Frame records the outcome of one commit attempt within a run.
type Frame struct {
	ID         int64
	RunID      string
	Seq        int
	Commit     string
	Status     Status
	SkipReason string
	StripPath  string
	Pages      int
	UpdatedAt  time.Time
}

// MarkSkipped moves a frame to the skipped state with the given reason.
func (f *Frame) MarkSkipped(reason string) {
	f.Status = StatusSkipped
	f.SkipReason = strings.TrimSpace(reason)
}
