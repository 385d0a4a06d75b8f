package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a tracker mutation.
type EventType string

const (
	ExpenseCreated  EventType = "expense.created"
	ExpenseUpdated  EventType = "expense.updated"
	ExpenseDeleted  EventType = "expense.deleted"
	CategoryCreated EventType = "category.created"
	CategoryRenamed EventType = "category.renamed"
	CategoryDeleted EventType = "category.deleted"
	MappingUpserted EventType = "mapping.upserted"
	MappingRemoved  EventType = "mapping.removed"
	RecordsImported EventType = "records.imported"
)

func (t EventType) Valid() bool {
	switch t {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted,
		CategoryCreated, CategoryRenamed, CategoryDeleted,
		MappingUpserted, MappingRemoved, RecordsImported:
		return true
	}
	return false
}

// ChangeEvent is a lightweight notification that tracker state changed.
// Consumers reload the affected months from storage rather than trusting the
// payload. Periods are YYYY-MM strings; an empty list means "every month".
type ChangeEvent struct {
	Type       EventType `json:"type"`
	ExpenseID  int64     `json:"expenseId,omitempty"`
	CategoryID int64     `json:"categoryId,omitempty"`
	Item       string    `json:"item,omitempty"`
	Periods    []string  `json:"periods,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeEvent creates an event stamped with the current time.
func NewChangeEvent(t EventType, periods ...string) *ChangeEvent {
	return &ChangeEvent{
		Type:      t,
		Periods:   dedupe(periods),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeEventFromJSON decodes and validates a message body.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
