package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes aligned columns. Rows are buffered until Flush.
type Table struct {
	w *tabwriter.Writer
}

// NewTable writes the styled header and a rule under it.
func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	styled := make([]any, len(headers))
	rules := make([]any, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	t.Row(styled...)
	t.Row(rules...)
	return t
}

// Row appends one row; values are printed with %v.
func (t *Table) Row(values ...any) {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = fmt.Sprint(v)
	}
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *Table) Flush() error {
	return t.w.Flush()
}
