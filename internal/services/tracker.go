// Package services implements the tracker: expense, category and item-map
// operations over an injected store, plus memoized reports.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"spesa/internal/amqp"
	"spesa/internal/cache"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/storage"
)

// Publisher receives change events after successful mutations.
type Publisher interface {
	PublishChange(ctx context.Context, ev *amqp.ChangeEvent) error
}

// Options configures a Tracker. Zero values are usable.
type Options struct {
	Now       func() time.Time
	Publisher Publisher
	Logger    *log.Logger
	CacheSize int
	CacheTTL  time.Duration
}

// Tracker serializes all access to the three records. Reads share the lock;
// mutations hold it exclusively and purge the report caches before releasing
// it, so a memoized value never outlives the state it was computed from.
type Tracker struct {
	mu        sync.RWMutex
	records   *storage.Records
	ids       *core.IDSource
	now       func() time.Time
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger

	summaries *cache.Memo[core.Summary]
	details   *cache.Memo[core.CategoryDetail]
	trends    *cache.Memo[[]core.MonthTotal]
}

func NewTracker(store storage.Store, opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	logger := opts.Logger.WithComponent(log.ComponentTracker)
	return &Tracker{
		records:   storage.NewRecords(store),
		ids:       core.NewIDSource(opts.Now),
		now:       opts.Now,
		publisher: opts.Publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		summaries: cache.NewMemo[core.Summary](cache.NewLRUCache[core.Summary](opts.CacheSize, opts.CacheTTL)),
		details:   cache.NewMemo[core.CategoryDetail](cache.NewLRUCache[core.CategoryDetail](opts.CacheSize, opts.CacheTTL)),
		trends:    cache.NewMemo[[]core.MonthTotal](cache.NewLRUCache[[]core.MonthTotal](opts.CacheSize, opts.CacheTTL)),
	}
}

// EnsureSeeded installs the default categories and item map, and an empty
// expense list, for every record that has never been stored.
func (t *Tracker) EnsureSeeded(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	store := t.records.Store()
	var missing []string
	for _, key := range storage.Keys {
		_, ok, err := store.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("check %s: %w", key, err)
		}
		if !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	snap := core.Snapshot{
		Expenses:   []core.Expense{},
		Categories: core.DefaultCategories(),
		Items:      core.DefaultItemMap(),
	}
	if err := t.records.Save(ctx, snap, missing...); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	t.invalidate()
	t.logger.InfoContext(ctx, "Seeded default records", "records", missing)
	return nil
}

// load reads the current snapshot; callers hold t.mu.
func (t *Tracker) load(ctx context.Context) (core.Snapshot, error) {
	snap, err := t.records.Load(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	t.ids.Observe(snap.MaxID())
	return snap, nil
}

func (t *Tracker) save(ctx context.Context, snap core.Snapshot, keys ...string) error {
	if err := t.records.Save(ctx, snap, keys...); err != nil {
		return err
	}
	t.invalidate()
	return nil
}

func (t *Tracker) invalidate() {
	t.summaries.Invalidate()
	t.details.Invalidate()
	t.trends.Invalidate()
}

// publish is best effort: the mutation already succeeded.
func (t *Tracker) publish(ctx context.Context, ev *amqp.ChangeEvent) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishChange(ctx, ev); err != nil {
		t.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldEventType, ev.Type,
			log.FieldError, err)
	}
}

// Snapshot returns a copy of the full state.
func (t *Tracker) Snapshot(ctx context.Context) (core.Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.load(ctx)
}

// Import replaces all three records with snap in one batch.
func (t *Tracker) Import(ctx context.Context, snap core.Snapshot) error {
	if _, ok := snap.Categories.Find(core.FallbackCategoryID); !ok {
		snap.Categories = append(snap.Categories, core.Fallback())
	}
	for _, e := range snap.Expenses {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("expense %d: %w", e.ID, err)
		}
	}

	t.mu.Lock()
	if err := t.save(ctx, snap); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("import records: %w", err)
	}
	t.ids.Observe(snap.MaxID())
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Imported records",
		log.FieldOperation, log.OpImport,
		"expenses", len(snap.Expenses),
		"categories", len(snap.Categories),
		"mappings", len(snap.Items))
	t.publish(ctx, amqp.NewChangeEvent(amqp.RecordsImported))
	return nil
}

// Ping checks the backing store when it supports it.
func (t *Tracker) Ping(ctx context.Context) error {
	if p, ok := t.records.Store().(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	_, _, err := t.records.Store().Load(ctx, storage.KeyCategories)
	return err
}

func (t *Tracker) Close() error {
	return t.records.Store().Close()
}

func periodsOf(expenses ...core.Expense) []string {
	out := make([]string, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.Date.Period().String())
	}
	return out
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
