package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesa/internal/amqp"
	"spesa/internal/core"
	"spesa/internal/sheets/memory"
)

type staticSource struct {
	snap core.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (core.Snapshot, error) { return s.snap, s.err }

type chanConsumer struct {
	events chan *amqp.ChangeEvent
}

func (c chanConsumer) ConsumeChanges(ctx context.Context, h amqp.Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			_ = h(ctx, ev)
		}
	}
}

func testSource() staticSource {
	return staticSource{snap: core.Snapshot{
		Expenses: []core.Expense{
			{ID: 1, Date: core.NewDate(2024, 3, 15), Amount: core.Money{Cents: 12050}, Item: "chicken", CategoryID: 1},
			{ID: 2, Date: core.NewDate(2024, 1, 5), Amount: core.Money{Cents: 500}, Item: "bread", CategoryID: 4},
		},
		Categories: core.DefaultCategories(),
		Items:      core.DefaultItemMap(),
	}}
}

func newWorker(src SnapshotSource, exp *memory.Exporter) *ExportWorker {
	w := NewExportWorker(src, exp, 3, nil)
	w.now = func() time.Time { return time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC) }
	return w
}

func TestHandleChangeExportsNamedPeriods(t *testing.T) {
	exp := memory.New()
	w := newWorker(testSource(), exp)

	ev := amqp.NewChangeEvent(amqp.ExpenseUpdated, "2024-01", "not-a-month")
	require.NoError(t, w.HandleChange(context.Background(), ev))

	assert.Equal(t, []string{"2024-01"}, exp.Titles())
	rows, ok := exp.Tab("2024-01")
	require.True(t, ok)
	assert.Equal(t, []string{"2024-01-05", "bread", "Grains", "5.00"}, rows[1])
}

func TestHandleChangeWithoutPeriodsExportsWindow(t *testing.T) {
	exp := memory.New()
	w := newWorker(testSource(), exp)

	require.NoError(t, w.HandleChange(context.Background(), amqp.NewChangeEvent(amqp.CategoryRenamed)))
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, exp.Titles())
}

func TestExportErrorsAreReturned(t *testing.T) {
	exp := memory.New()
	exp.FailWith(errors.New("quota"))
	w := newWorker(testSource(), exp)

	err := w.ExportWindow(context.Background())
	assert.ErrorContains(t, err, "export 2024-03: quota")

	w = newWorker(staticSource{err: errors.New("db gone")}, memory.New())
	assert.ErrorContains(t, w.ExportWindow(context.Background()), "load snapshot")
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	exp := memory.New()
	w := newWorker(testSource(), exp)
	events := make(chan *amqp.ChangeEvent, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, chanConsumer{events: events}, time.Hour) }()

	require.Eventually(t, func() bool { return exp.Exports() >= 3 }, time.Second, 5*time.Millisecond, "startup export")
	events <- amqp.NewChangeEvent(amqp.ExpenseCreated, "2023-12")
	require.Eventually(t, func() bool {
		_, ok := exp.Tab("2023-12")
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
