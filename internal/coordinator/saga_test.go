package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selliq/order-engine/internal/coordinator/splitlog"
	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/infra/store/memory"
)

// memJournal is an in-memory splitlog for tests.
type memJournal struct {
	mu      sync.Mutex
	entries []splitlog.Entry
}

func (j *memJournal) Save(ctx context.Context, e *splitlog.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, *e)
	return nil
}

func (j *memJournal) ListStale(ctx context.Context, before time.Time) ([]splitlog.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	latest := make(map[string]splitlog.Entry)
	for _, e := range j.entries {
		latest[e.SplitID] = e
	}
	var out []splitlog.Entry
	for _, e := range latest {
		inFlight := e.Status == splitlog.StatusStarted ||
			e.Status == splitlog.StatusStepDone ||
			e.Status == splitlog.StatusCompensating
		if inFlight && e.UpdatedAt.Before(before) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *memJournal) Entries(ctx context.Context, splitID string) ([]splitlog.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []splitlog.Entry
	for _, e := range j.entries {
		if e.SplitID == splitID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *memJournal) statuses() []splitlog.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]splitlog.Status, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.Status
	}
	return out
}

// fakeStep records execution and compensation order.
type fakeStep struct {
	name        string
	failExecute bool
	failComp    bool
	log         *[]string
}

func (s *fakeStep) Name() string    { return s.name }
func (s *fakeStep) OrderID() string { return "order-" + s.name }

func (s *fakeStep) Execute(ctx context.Context) error {
	if s.failExecute {
		return errors.New(s.name + " exploded")
	}
	*s.log = append(*s.log, "exec:"+s.name)
	return nil
}

func (s *fakeStep) Compensate(ctx context.Context) error {
	if s.failComp {
		return errors.New(s.name + " compensation exploded")
	}
	*s.log = append(*s.log, "comp:"+s.name)
	return nil
}

func TestOrchestratorHappyPath(t *testing.T) {
	var log []string
	journal := &memJournal{}
	steps := []Step{
		&fakeStep{name: "a", log: &log},
		&fakeStep{name: "b", log: &log},
	}

	err := NewOrchestrator("split-1", steps, journal, `{"x":1}`).Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"exec:a", "exec:b"}, log)
	assert.Equal(t, []splitlog.Status{
		splitlog.StatusStarted,
		splitlog.StatusStepDone,
		splitlog.StatusStepDone,
		splitlog.StatusCompleted,
	}, journal.statuses())

	// Payload journaled once, on the STARTED row.
	assert.Equal(t, `{"x":1}`, journal.entries[0].Payload)
	assert.Empty(t, journal.entries[1].Payload)
	assert.Equal(t, "order-a", journal.entries[1].OrderID)
}

func TestOrchestratorRollsBackLIFO(t *testing.T) {
	var log []string
	journal := &memJournal{}
	steps := []Step{
		&fakeStep{name: "a", log: &log},
		&fakeStep{name: "b", log: &log},
		&fakeStep{name: "c", failExecute: true, log: &log},
	}

	err := NewOrchestrator("split-2", steps, journal, "").Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"exec:a", "exec:b", "comp:b", "comp:a"}, log)

	statuses := journal.statuses()
	assert.Equal(t, splitlog.StatusCompensating, statuses[len(statuses)-2])
	assert.Equal(t, splitlog.StatusFailed, statuses[len(statuses)-1])
}

func TestOrchestratorKeepsCompensatingOnRollbackFailure(t *testing.T) {
	var log []string
	journal := &memJournal{}
	steps := []Step{
		&fakeStep{name: "a", failComp: true, log: &log},
		&fakeStep{name: "b", failExecute: true, log: &log},
	}

	err := NewOrchestrator("split-3", steps, journal, "").Start(context.Background())
	require.Error(t, err)

	// The failed compensation leaves the split in COMPENSATING so the
	// reconciler retries it.
	statuses := journal.statuses()
	assert.Equal(t, splitlog.StatusCompensating, statuses[len(statuses)-1])
}

func TestOrchestratorNilJournal(t *testing.T) {
	var log []string
	steps := []Step{&fakeStep{name: "a", log: &log}}
	require.NoError(t, NewOrchestrator("split-4", steps, nil, "").Start(context.Background()))
}

func TestCreateOrderStepCompensationLeavesProgressedOrdersAlone(t *testing.T) {
	store := memory.New()
	o := &entity.Order{
		OrderNumber:   "ORD-9-9",
		CustomerID:    "cust-1",
		CustomerEmail: "buyer@example.com",
		OrderStatus:   entity.OrderPending,
		PaymentStatus: entity.PaymentPending,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	step := NewCreateOrderStep(store, o)
	require.NoError(t, step.Execute(context.Background()))
	require.NotEmpty(t, step.OrderID())

	// Someone confirms the order before compensation lands: rollback
	// must not clobber real state.
	stored, err := store.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	stored.OrderStatus = entity.OrderConfirmed
	require.NoError(t, store.Update(context.Background(), stored))

	require.NoError(t, step.Compensate(context.Background()))
	after, err := store.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderConfirmed, after.OrderStatus)
}
