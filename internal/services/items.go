package services

import (
	"context"
	"fmt"

	"spesa/internal/amqp"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/storage"
)

// Classify returns the category an item would be assigned today.
func (t *Tracker) Classify(ctx context.Context, item string) (core.Category, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return core.Category{}, err
	}
	return core.Classify(snap.Items, snap.Categories, item), nil
}

// UpsertMapping maps an item to a live category, replacing any previous entry.
// Existing expenses keep their category; only future classifications change.
func (t *Tracker) UpsertMapping(ctx context.Context, item string, categoryID int64) (core.Mapping, error) {
	key := core.NormalizeItem(item)
	if key == "" {
		return core.Mapping{}, core.ErrEmptyItem
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return core.Mapping{}, err
	}
	cat, ok := snap.Categories.Find(categoryID)
	if !ok {
		t.mu.Unlock()
		return core.Mapping{}, fmt.Errorf("%w: %d", core.ErrCategoryNotFound, categoryID)
	}
	snap.Items[key] = categoryID
	if err := t.save(ctx, snap, storage.KeyItemMap); err != nil {
		t.mu.Unlock()
		return core.Mapping{}, fmt.Errorf("upsert mapping: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Item mapping saved",
		log.FieldItem, key,
		log.FieldCategoryID, categoryID)
	ev := amqp.NewChangeEvent(amqp.MappingUpserted)
	ev.Item, ev.CategoryID = key, categoryID
	t.publish(ctx, ev)
	return core.Mapping{Item: key, Category: cat}, nil
}

// RemoveMapping deletes an item mapping. Removing an absent item is not an
// error.
func (t *Tracker) RemoveMapping(ctx context.Context, item string) error {
	key := core.NormalizeItem(item)

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if _, ok := snap.Items[key]; !ok {
		t.mu.Unlock()
		return nil
	}
	delete(snap.Items, key)
	if err := t.save(ctx, snap, storage.KeyItemMap); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("remove mapping: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Item mapping removed", log.FieldItem, key)
	ev := amqp.NewChangeEvent(amqp.MappingRemoved)
	ev.Item = key
	t.publish(ctx, ev)
	return nil
}

// ListMappings returns the item map sorted by item.
func (t *Tracker) ListMappings(ctx context.Context) ([]core.Mapping, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return core.Mappings(snap.Items, snap.Categories), nil
}
