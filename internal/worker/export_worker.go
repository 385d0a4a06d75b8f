// Package worker keeps the spreadsheet export in step with tracker changes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"spesa/internal/amqp"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/sheets"
)

// SnapshotSource provides the current tracker state.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

// Consumer delivers change events until its context ends.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler amqp.Handler) error
}

// ExportWorker rewrites the month tabs touched by each change event and
// periodically re-exports the trailing window as a backstop for lost events.
type ExportWorker struct {
	source   SnapshotSource
	exporter sheets.MonthExporter
	months   int
	now      func() time.Time
	logger   *log.Logger
}

func NewExportWorker(source SnapshotSource, exporter sheets.MonthExporter, months int, logger *log.Logger) *ExportWorker {
	if months <= 0 {
		months = 6
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		months:   months,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange exports every period named by the event, or the trailing
// window when the event names none.
func (w *ExportWorker) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldEventType, ev.Type,
		"periods", ev.Periods)

	periods := make([]core.Period, 0, len(ev.Periods))
	for _, s := range ev.Periods {
		p, err := core.ParsePeriod(s)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping malformed period", log.FieldPeriod, s, log.FieldError, err)
			continue
		}
		periods = append(periods, p)
	}
	if len(ev.Periods) == 0 {
		periods = w.window()
	}
	return w.export(ctx, periods)
}

// ExportWindow exports the trailing window of months ending now.
func (w *ExportWorker) ExportWindow(ctx context.Context) error {
	return w.export(ctx, w.window())
}

func (w *ExportWorker) window() []core.Period {
	current := core.PeriodOf(w.now())
	out := make([]core.Period, 0, w.months)
	for i := w.months - 1; i >= 0; i-- {
		out = append(out, current.AddMonths(-i))
	}
	return out
}

func (w *ExportWorker) export(ctx context.Context, periods []core.Period) error {
	if len(periods) == 0 {
		return nil
	}
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var errs []error
	for _, p := range periods {
		sheet := sheets.BuildMonthSheet(p, snap.Expenses, snap.Categories)
		if err := w.exporter.ExportMonth(ctx, sheet); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export month",
				log.FieldPeriod, p.String(),
				log.FieldError, err)
			errs = append(errs, fmt.Errorf("export %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Run consumes change events (when consumer is non-nil) and re-exports the
// trailing window every interval, until ctx is cancelled or either loop fails.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeChanges(ctx, w.HandleChange)
		})
	}

	g.Go(func() error {
		if err := w.ExportWindow(ctx); err != nil {
			w.logger.WarnContext(ctx, "Startup export incomplete", log.FieldError, err)
		}
		if interval <= 0 {
			<-ctx.Done()
			return ctx.Err()
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ExportWindow(ctx); err != nil {
					w.logger.WarnContext(ctx, "Periodic export incomplete", log.FieldError, err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
