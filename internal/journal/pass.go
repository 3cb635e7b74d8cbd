package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Kind names the operation a pass ran.
type Kind string

const (
	KindPull   Kind = "pull"
	KindPush   Kind = "push"
	KindRemove Kind = "remove"
)

const (
	levelError   = "error"
	levelWarning = "warning"
)

// Pass is one journal entry.
type Pass struct {
	ID         string
	Kind       Kind
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time

	Created int
	Updated int
	Skipped int
	Deleted int

	// Fatal is the error that aborted the pass, if any.
	Fatal string

	// Errors and Warnings are loaded by GetPass only; ListPasses fills in
	// the counts.
	Errors       []string
	Warnings     []string
	ErrorCount   int
	WarningCount int
}

// Start begins a pass of the given kind, stamped with a fresh id.
func Start(kind Kind, dryRun bool) *Pass {
	return &Pass{
		ID:        uuid.NewString(),
		Kind:      kind,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
}

// ShortID returns the first eight characters of the id.
func (p *Pass) ShortID() string {
	if len(p.ID) < 8 {
		return p.ID
	}
	return p.ID[:8]
}

// Failed reports whether the pass aborted or had per-record errors.
func (p *Pass) Failed() bool {
	return p.Fatal != "" || p.ErrorCount > 0
}

// Finish stamps the end time and the fatal error, if any.
func (p *Pass) Finish(err error) *Pass {
	p.FinishedAt = time.Now().UTC()
	if err != nil {
		p.Fatal = err.Error()
	}
	p.ErrorCount, p.WarningCount = len(p.Errors), len(p.Warnings)
	return p
}

// FromSync copies the outcome of a pull.
func (p *Pass) FromSync(r *types.SyncResult) *Pass {
	if r == nil {
		return p
	}
	p.Created, p.Updated, p.Skipped = r.Created, r.Updated, r.Skipped
	p.Errors = append(p.Errors, r.Errors...)
	p.Warnings = append(p.Warnings, r.Warnings...)
	return p
}

// FromPush copies the outcome of a push.
func (p *Pass) FromPush(r *types.PushResult) *Pass {
	if r == nil {
		return p
	}
	p.Created, p.Updated, p.Skipped = r.Created, r.Updated, r.Skipped
	p.Errors = append(p.Errors, r.Errors...)
	p.Warnings = append(p.Warnings, r.Warnings...)
	return p
}

// FromRemove copies the outcome of a remove. Closed remote records are
// counted as updates.
func (p *Pass) FromRemove(r *types.RemoveResult) *Pass {
	if r == nil {
		return p
	}
	p.Deleted, p.Updated = r.Deleted, r.Closed
	p.Errors = append(p.Errors, r.Errors...)
	return p
}
