package coordinator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/selliq/order-engine/internal/coordinator/splitlog"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

func nowUTC() time.Time { return time.Now().UTC() }

// Reconciler sweeps the split journal for executions left in flight —
// a crash between sibling writes, or a compensation that itself failed
// — and rolls their created orders back. It is the recovery half of
// the saga: without it a partial split would persist silently.
type Reconciler struct {
	journal    splitlog.Reader
	writer     splitlog.Repository
	store      ports.OrderStore
	staleAfter time.Duration
}

// NewReconciler builds a reconciler. staleAfter is how long a split may
// sit in an in-flight state before the sweep considers it abandoned;
// it must comfortably exceed the longest plausible checkout.
func NewReconciler(journal splitlog.Reader, writer splitlog.Repository, store ports.OrderStore, staleAfter time.Duration) *Reconciler {
	return &Reconciler{journal: journal, writer: writer, store: store, staleAfter: staleAfter}
}

// Run sweeps on the given interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "split reconciliation sweep failed", "error", err)
			}
		}
	}
}

// Sweep performs a single reconciliation pass.
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.journal.ListStale(ctx, nowUTC().Add(-r.staleAfter))
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	slog.InfoContext(ctx, "reconciling stale splits", "count", len(stale))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, entry := range stale {
		g.Go(func() error {
			return r.reconcile(gctx, entry.SplitID)
		})
	}
	return g.Wait()
}

// reconcile rolls back one abandoned split: every order recorded as
// created is cancelled (if still PENDING), then a terminal FAILED row
// is journaled. Errors leave the split in flight for the next sweep.
func (r *Reconciler) reconcile(ctx context.Context, splitID string) error {
	entries, err := r.journal.Entries(ctx, splitID)
	if err != nil {
		return err
	}

	var compErrs []string
	for _, e := range entries {
		if e.Status != splitlog.StatusStepDone || e.OrderID == "" {
			continue
		}
		if err := CancelSplitOrder(ctx, r.store, e.OrderID); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: reconciler failed to compensate order",
				"split_id", splitID, "order_id", e.OrderID, "error", err)
			compErrs = append(compErrs, err.Error())
		}
	}

	if len(compErrs) > 0 {
		// Stay in COMPENSATING; retried on the next sweep.
		return r.writer.Save(ctx, splitlog.NewEntry(ctx, splitID, splitlog.StatusCompensating, "reconciler", "", "", compErrs))
	}

	slog.InfoContext(ctx, "stale split rolled back", "split_id", splitID)
	return r.writer.Save(ctx, splitlog.NewEntry(ctx, splitID, splitlog.StatusFailed, "reconciler", "", "", []string{"abandoned split rolled back by reconciler"}))
}
