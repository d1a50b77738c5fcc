// Package splitlog defines the domain types for the split journal.
//
// A multi-seller checkout writes N order documents with no
// multi-document transaction underneath. The journal is the durable
// audit trail of every state transition such a split goes through:
//
//  1. Observability: the journal shows exactly where a split is (or
//     was), correlated with a distributed trace via trace_id.
//
//  2. Recovery: the reconciler reads the journal and compensates
//     splits that were in-flight when the process crashed.
package splitlog

import (
	"context"
	"time"
)

// Status is the lifecycle state of a split execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the split journal. Rows are append-only;
// the newest row per split is its current state.
type Entry struct {
	// SplitID identifies one split execution (one checkout).
	SplitID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// CurrentStep is the step that was just executed or failed.
	CurrentStep string

	// OrderID is the order document created by the step, if any.
	// STEP_DONE rows carry it so the reconciler knows which sibling
	// documents exist and may need compensating.
	OrderID string

	// Payload is the JSON-serialized checkout that started the split.
	// Written once on STARTED so the split can be replayed.
	Payload string

	// ErrorMessages accumulates failure details as a JSON array.
	ErrorMessages string

	// TraceID / SpanID are the W3C identifiers of the OTel span active
	// when the row was written.
	TraceID string
	SpanID  string

	// UpdatedAt is the wall-clock time of this row.
	UpdatedAt time.Time
}

// Repository is the write port for the journal. Each Save appends a
// row; the journal is an audit log, not an upsert target.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
}

// Reader is the read port used by the reconciler.
type Reader interface {
	// ListStale returns the newest entry of every split whose latest
	// state is still in flight and older than the given cutoff.
	ListStale(ctx context.Context, before time.Time) ([]Entry, error)

	// Entries returns all journal rows for one split, oldest first.
	Entries(ctx context.Context, splitID string) ([]Entry, error)
}
