// Package coordinator runs a multi-seller checkout split as a saga.
//
// The order store offers per-document atomicity only, so the N
// per-seller order writes of one checkout cannot share a transaction.
// Instead each write is a Step with a compensating action, every
// transition is journaled, and a reconciler sweeps the journal for
// splits abandoned mid-flight.
package coordinator

import (
	"context"
	"log/slog"

	"github.com/selliq/order-engine/internal/coordinator/splitlog"
)

// Step is a single unit of work in the split. Each step must have a
// compensating action that undoes its effects.
type Step interface {
	Name() string
	// OrderID identifies the document the step created; empty until
	// Execute succeeds. Journaled so recovery knows which siblings exist.
	OrderID() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator executes a collection of Steps sequentially, rolling
// back (LIFO) on the first failure.
type Orchestrator struct {
	id      string
	steps   []Step
	journal splitlog.Repository
	payload string
}

// NewOrchestrator builds an orchestrator for one split execution.
// journal may be nil — transitions are then not persisted. payload is
// the JSON-serialized input, journaled once on start so the split can
// be replayed from the log.
func NewOrchestrator(id string, steps []Step, journal splitlog.Repository, payload string) *Orchestrator {
	return &Orchestrator{id: id, steps: steps, journal: journal, payload: payload}
}

// Start runs the steps in order. If a step fails, every previously
// successful step is compensated and the step's error is returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, splitlog.StatusStarted, "", "", nil)

	var done []Step
	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "split step failed, rolling back",
				"split_id", o.id, "step", step.Name(), "error", err)
			o.record(ctx, splitlog.StatusCompensating, step.Name(), "", []string{err.Error()})
			compErrs := o.rollback(ctx, done)
			if len(compErrs) > 0 {
				// Left in COMPENSATING so the reconciler retries the
				// unfinished rollback on its next sweep.
				o.record(ctx, splitlog.StatusCompensating, step.Name(), "", append([]string{err.Error()}, compErrs...))
			} else {
				o.record(ctx, splitlog.StatusFailed, step.Name(), "", []string{err.Error()})
			}
			return err
		}
		done = append(done, step)
		o.record(ctx, splitlog.StatusStepDone, step.Name(), step.OrderID(), nil)
	}

	o.record(ctx, splitlog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "split completed", "split_id", o.id, "steps", len(o.steps))
	return nil
}

// rollback compensates steps newest-first and collects compensation
// failures. A failed compensation is logged CRITICAL; the split then
// stays COMPENSATING in the journal so the reconciler retries it.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate split step",
				"split_id", o.id, "step", step.Name(), "error", err)
			errs = append(errs, "compensation of "+step.Name()+" failed: "+err.Error())
		}
	}
	return errs
}

// record journals a transition. Journal failures must not abort the
// business flow; they are logged and dropped.
func (o *Orchestrator) record(ctx context.Context, status splitlog.Status, step, orderID string, errs []string) {
	if o.journal == nil {
		return
	}
	payload := ""
	if status == splitlog.StatusStarted {
		payload = o.payload
	}
	entry := splitlog.NewEntry(ctx, o.id, status, step, orderID, payload, errs)
	if err := o.journal.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to journal split transition",
			"split_id", o.id, "status", status, "error", err)
	}
}
