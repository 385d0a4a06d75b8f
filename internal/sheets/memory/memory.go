// Package memory is an in-process sheets.MonthExporter for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"sort"
	"sync"

	"spesa/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	tabs    map[string][][]string
	exports int
	err     error
}

func New() *Exporter {
	return &Exporter{tabs: map[string][][]string{}}
}

// FailWith makes subsequent exports return err (nil to recover).
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

func (e *Exporter) ExportMonth(_ context.Context, s sheets.MonthSheet) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = append([]string(nil), r...)
	}
	e.tabs[s.Title()] = rows
	e.exports++
	return nil
}

// Tab returns the rows last exported under title.
func (e *Exporter) Tab(title string) ([][]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.tabs[title]
	return rows, ok
}

// Titles lists exported tabs in order.
func (e *Exporter) Titles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.tabs))
	for k := range e.tabs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exports counts successful exports.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
