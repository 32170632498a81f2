package connector

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncKind
// ---------------------------------------------------------------------------

// SyncKind identifies the direction of a sync run.
type SyncKind string

const (
	// SyncKindPush sends catalog items to the commerce platform
	SyncKindPush SyncKind = "push"
	// SyncKindPull fetches platform products back into the catalog
	SyncKindPull SyncKind = "pull"
)

// IsValid returns true if the kind is valid
func (k SyncKind) IsValid() bool {
	return k == SyncKindPush || k == SyncKindPull
}

// String returns the string representation of SyncKind
func (k SyncKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// RunStatus
// ---------------------------------------------------------------------------

// RunStatus is the lifecycle status of a sync run.
type RunStatus string

const (
	// RunStatusPending indicates the run record exists but work has not begun
	RunStatusPending RunStatus = "pending"
	// RunStatusRunning indicates item processing is in progress
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates the run finished its item loop
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates a top-level failure outside the item loop
	RunStatusFailed RunStatus = "failed"
)

// IsValid returns true if the status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status is a final state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// String returns the string representation of RunStatus
func (s RunStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// SyncDetail
// ---------------------------------------------------------------------------

// DetailAction is the operation applied to one item during a run.
type DetailAction string

const (
	// ActionCreate indicates the item was created on the receiving side
	ActionCreate DetailAction = "create"
	// ActionUpdate indicates an existing item was updated
	ActionUpdate DetailAction = "update"
	// ActionSkip indicates the item was deliberately not applied
	ActionSkip DetailAction = "skip"
)

// DetailStatus is the outcome of one item within a run.
type DetailStatus string

const (
	// DetailStatusSuccess indicates the item was processed without error
	DetailStatusSuccess DetailStatus = "success"
	// DetailStatusError indicates the item failed and the run moved on
	DetailStatusError DetailStatus = "error"
)

// SyncDetail records the outcome for exactly one item within one run.
// Details are created once per processed item and never mutated after the
// run records them.
type SyncDetail struct {
	// ID is the unique identifier of this detail
	ID uuid.UUID
	// HistoryID is the owning run
	HistoryID uuid.UUID
	// Identifier is the item's natural key (SKU)
	Identifier string
	// Action is what the run did with the item
	Action DetailAction
	// Status is whether the item succeeded or failed
	Status DetailStatus
	// ErrorMessage carries the failure reason for error details, or an
	// explanatory note for deliberate skips
	ErrorMessage string
	// Position is the 0-based recording order within the run. Timestamps
	// can collide inside a tight loop; the position cannot.
	Position int
	// CreatedAt is when the detail was recorded
	CreatedAt time.Time
}

// NewSyncDetail creates a detail stamped with the item's natural key.
func NewSyncDetail(historyID uuid.UUID, identifier string) *SyncDetail {
	return &SyncDetail{
		ID:         uuid.New(),
		HistoryID:  historyID,
		Identifier: identifier,
		CreatedAt:  time.Now(),
	}
}

// Succeed marks the detail as a successful outcome with the given action.
func (d *SyncDetail) Succeed(action DetailAction) {
	d.Action = action
	d.Status = DetailStatusSuccess
}

// SkipWithNote marks the detail as a deliberate, successful skip. The note
// names why the item was not applied so the outcome is inspectable.
func (d *SyncDetail) SkipWithNote(note string) {
	d.Action = ActionSkip
	d.Status = DetailStatusSuccess
	d.ErrorMessage = note
}

// Fail marks the detail as failed with the given message.
func (d *SyncDetail) Fail(message string) {
	d.Status = DetailStatusError
	d.ErrorMessage = message
}

// ---------------------------------------------------------------------------
// ItemFilter
// ---------------------------------------------------------------------------

// ItemFilter narrows which items a run enumerates. It is passed through to
// the item producer (push) or the platform listing (pull) and stored on the
// run record for auditing.
type ItemFilter struct {
	// UpdatedSinceDays restricts enumeration to items modified in the last
	// N days; zero means no recency filter
	UpdatedSinceDays int `json:"updated_since_days,omitempty"`
	// Limit caps enumeration; zero means no cap
	Limit int `json:"limit,omitempty"`
}

// UpdatedSince converts a recency window in days to its cutoff instant.
func UpdatedSince(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}

// ---------------------------------------------------------------------------
// SyncHistory Aggregate Root
// ---------------------------------------------------------------------------

// SyncHistory is one synchronization run. It is created in pending state and
// persisted before any work begins, mutated only by the orchestrator
// executing it, and never reopened after reaching a terminal status. Its
// details are owned exclusively by this record.
type SyncHistory struct {
	// ID is the unique identifier of this run
	ID uuid.UUID
	// Kind is the run direction
	Kind SyncKind
	// Status is the lifecycle status
	Status RunStatus
	// Filters is the item criteria the run was started with
	Filters ItemFilter
	// StartedAt is when the run record was created
	StartedAt time.Time
	// CompletedAt is when the run reached a terminal status (nil until then)
	CompletedAt *time.Time
	// TotalItems is the enumerated item count, set once after enumeration
	TotalItems int
	// SuccessCount is the number of items recorded as success
	SuccessCount int
	// ErrorCount is the number of items recorded as error
	ErrorCount int
	// InitiatedBy is the user who started the run
	InitiatedBy string
	// ErrorMessage carries the top-level failure reason for failed runs
	ErrorMessage string
	// Details are the per-item outcomes, in processing order
	Details []SyncDetail
}

// NewSyncHistory creates a pending run record.
func NewSyncHistory(kind SyncKind, filters ItemFilter, initiatedBy string) *SyncHistory {
	return &SyncHistory{
		ID:          uuid.New(),
		Kind:        kind,
		Status:      RunStatusPending,
		Filters:     filters,
		StartedAt:   time.Now(),
		InitiatedBy: initiatedBy,
		Details:     make([]SyncDetail, 0),
	}
}

// MarkRunning transitions the run from pending to running.
func (h *SyncHistory) MarkRunning() error {
	if h.Status.IsTerminal() {
		return ErrRunTerminal
	}
	h.Status = RunStatusRunning
	return nil
}

// MarkCompleted transitions the run to completed and stamps CompletedAt.
// The stamp is set exactly once: a terminal run is never reopened.
func (h *SyncHistory) MarkCompleted() error {
	if h.Status.IsTerminal() {
		return ErrRunTerminal
	}
	h.Status = RunStatusCompleted
	now := time.Now()
	h.CompletedAt = &now
	return nil
}

// MarkFailed transitions the run to failed, stamps CompletedAt and records
// the top-level error message. Details written before the failure are kept.
func (h *SyncHistory) MarkFailed(message string) error {
	if h.Status.IsTerminal() {
		return ErrRunTerminal
	}
	h.Status = RunStatusFailed
	h.ErrorMessage = message
	now := time.Now()
	h.CompletedAt = &now
	return nil
}

// RecordDetail appends a finished detail and bumps the matching counter.
// successCount + errorCount never exceeds totalItems.
func (h *SyncHistory) RecordDetail(d *SyncDetail) {
	d.Position = len(h.Details)
	h.Details = append(h.Details, *d)
	if h.SuccessCount+h.ErrorCount >= h.TotalItems {
		return
	}
	switch d.Status {
	case DetailStatusSuccess:
		h.SuccessCount++
	case DetailStatusError:
		h.ErrorCount++
	}
}

// Duration returns how long the run took, or the elapsed time for a run
// still in progress.
func (h *SyncHistory) Duration() time.Duration {
	if h.CompletedAt != nil {
		return h.CompletedAt.Sub(h.StartedAt)
	}
	return time.Since(h.StartedAt)
}

// ---------------------------------------------------------------------------
// SyncHistoryRepository Interface
// ---------------------------------------------------------------------------

// SyncHistoryReader defines the interface for reading sync history
type SyncHistoryReader interface {
	// FindByID finds a run with its details
	FindByID(ctx context.Context, id uuid.UUID) (*SyncHistory, error)

	// FindRecent returns the most recent runs, newest first
	FindRecent(ctx context.Context, limit int) ([]SyncHistory, error)

	// FindByKind returns the most recent runs of one kind, newest first
	FindByKind(ctx context.Context, kind SyncKind, limit int) ([]SyncHistory, error)
}

// SyncHistoryWriter defines the interface for persisting sync history.
// Details are append-only from the perspective of concurrent readers: a run
// in progress may be observed with a partial detail list, never a revised one.
type SyncHistoryWriter interface {
	// Create persists a new run record
	Create(ctx context.Context, history *SyncHistory) error

	// Update persists the run's mutable fields (status, counters, stamps)
	Update(ctx context.Context, history *SyncHistory) error

	// AppendDetail persists one finished detail for the run
	AppendDetail(ctx context.Context, detail *SyncDetail) error
}

// SyncHistoryRepository defines the full interface for sync history persistence
type SyncHistoryRepository interface {
	SyncHistoryReader
	SyncHistoryWriter
}
