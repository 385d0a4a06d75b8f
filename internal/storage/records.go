package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"spesa/internal/core"
)

// Records is the typed view over a Store. Absent records load as empty
// values, never nil.
type Records struct {
	store Store
}

func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// Store returns the underlying key-value store.
func (r *Records) Store() Store { return r.store }

// Version returns the store's write version, or ok=false when the store does
// not track one.
func (r *Records) Version(ctx context.Context) (v int64, ok bool, err error) {
	vs, ok := r.store.(Versioner)
	if !ok {
		return 0, false, nil
	}
	v, err = vs.Version(ctx)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Load reads all three records.
func (r *Records) Load(ctx context.Context) (core.Snapshot, error) {
	snap := core.Snapshot{
		Expenses:   []core.Expense{},
		Categories: core.Categories{},
		Items:      core.ItemMap{},
	}
	if err := r.load(ctx, KeyExpenses, &snap.Expenses); err != nil {
		return core.Snapshot{}, err
	}
	if err := r.load(ctx, KeyCategories, &snap.Categories); err != nil {
		return core.Snapshot{}, err
	}
	if err := r.load(ctx, KeyItemMap, &snap.Items); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

func (r *Records) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := r.store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes the named records of snap in one batch. With no keys every
// record is written.
func (r *Records) Save(ctx context.Context, snap core.Snapshot, keys ...string) error {
	if len(keys) == 0 {
		keys = Keys
	}
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, err := encode(snap, key)
		if err != nil {
			return err
		}
		values[key] = raw
	}
	if len(values) == 1 {
		for key, raw := range values {
			if err := r.store.Save(ctx, key, raw); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
		return nil
	}
	if err := r.store.SaveBatch(ctx, values); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	return nil
}

func encode(snap core.Snapshot, key string) ([]byte, error) {
	var v any
	switch key {
	case KeyExpenses:
		if snap.Expenses == nil {
			snap.Expenses = []core.Expense{}
		}
		v = snap.Expenses
	case KeyCategories:
		if snap.Categories == nil {
			snap.Categories = core.Categories{}
		}
		v = snap.Categories
	case KeyItemMap:
		if snap.Items == nil {
			snap.Items = core.ItemMap{}
		}
		v = snap.Items
	default:
		return nil, fmt.Errorf("unknown record %q", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return raw, nil
}
