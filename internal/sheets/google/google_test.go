package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spesa/internal/core"
	"spesa/internal/log"
	ports "spesa/internal/sheets"
)

// fakeSheets implements the handful of Sheets v4 endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    map[string][][]interface{}
	updates int
	clears  int
}

func tabOf(rng string) string {
	rng = strings.TrimPrefix(rng, "'")
	if i := strings.Index(rng, "'"); i >= 0 {
		return rng[:i]
	}
	return rng
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.tabs[rq.AddSheet.Properties.Title] = nil
			}
		}
		_ = json.NewEncoder(w).Encode(gsheet.BatchUpdateSpreadsheetResponse{})
	case strings.Contains(path, "/values/") && strings.HasSuffix(path, ":clear"):
		rng := strings.TrimSuffix(path[strings.Index(path, "/values/")+len("/values/"):], ":clear")
		f.tabs[tabOf(rng)] = nil
		f.clears++
		_ = json.NewEncoder(w).Encode(gsheet.ClearValuesResponse{})
	case strings.Contains(path, "/values/") && r.Method == http.MethodPut:
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.tabs[tabOf(rng)] = vr.Values
		f.updates++
		_ = json.NewEncoder(w).Encode(gsheet.UpdateValuesResponse{})
	case strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{Range: rng, Values: f.tabs[tabOf(rng)]})
	default:
		ss := gsheet.Spreadsheet{}
		for title := range f.tabs {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: title}})
		}
		_ = json.NewEncoder(w).Encode(ss)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{tabs: map[string][][]interface{}{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewWithOptions(context.Background(), "sheet-id", log.Discard(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return c, fake
}

func monthSheet() ports.MonthSheet {
	expenses := []core.Expense{
		{ID: 1, Date: core.NewDate(2024, 3, 15), Amount: core.Money{Cents: 12050}, Item: "chicken", CategoryID: 1},
	}
	return ports.BuildMonthSheet(core.Period{Year: 2024, Month: time.March}, expenses, core.DefaultCategories())
}

func TestExportMonthCreatesAndSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	c, fake := newFakeClient(t)
	sheet := monthSheet()

	require.NoError(t, c.ExportMonth(ctx, sheet))
	fake.mu.Lock()
	_, ok := fake.tabs["2024-03"]
	assert.True(t, ok)
	assert.Equal(t, 1, fake.updates)
	fake.mu.Unlock()

	require.NoError(t, c.ExportMonth(ctx, sheet))
	fake.mu.Lock()
	assert.Equal(t, 1, fake.updates, "unchanged tab is not rewritten")
	fake.mu.Unlock()

	sheet.Rows[1][3] = "99.00"
	require.NoError(t, c.ExportMonth(ctx, sheet))
	fake.mu.Lock()
	assert.Equal(t, 2, fake.updates)
	assert.Equal(t, 2, fake.clears)
	fake.mu.Unlock()
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	_, err := New(context.Background(), "  ", Credentials{JSON: "{}"}, nil)
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")

	_, err = New(context.Background(), "id", Credentials{}, nil)
	assert.ErrorContains(t, err, "missing service account credentials")

	_, err = New(context.Background(), "id", Credentials{File: filepath.Join(t.TempDir(), "nope.json")}, nil)
	assert.ErrorContains(t, err, "read service account file")
}

func TestCredentialsPreferInlineJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"from":"file"}`), 0o600))

	b, err := Credentials{JSON: `{"from":"env"}`, File: file}.load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"env"}`, string(b))

	b, err = Credentials{File: file}.load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"file"}`, string(b))
}

func TestSameRows(t *testing.T) {
	a := [][]string{{"Date", "Item"}, {}, {"Total", "1", ""}}
	b := [][]string{{"Date", "Item"}, {}, {"Total", "1"}, {}}
	assert.True(t, sameRows(a, b))
	assert.False(t, sameRows(a, [][]string{{"Date", "Item"}}))
	assert.False(t, sameRows([][]string{{"a"}}, [][]string{{"b"}}))
}

func TestFromValues(t *testing.T) {
	got := fromValues([][]interface{}{{"2024-03-01", " milk ", 2.5, ""}, {}})
	assert.Equal(t, [][]string{{"2024-03-01", "milk", "2.5"}, {}}, got)
}
