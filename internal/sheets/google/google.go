// Package google exports tracker months to a Google spreadsheet, one tab per
// month.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spesa/internal/log"
	ports "spesa/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.MonthExporter = (*Client)(nil)

// Credentials selects how the exporter authenticates. A service account key
// (inline JSON first) wins over an OAuth client with a saved user token.
type Credentials struct {
	JSON string
	File string

	OAuthClientFile string
	OAuthTokenFile  string
}

func (c Credentials) serviceAccount() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		b, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c Credentials) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if !c.serviceAccount() && c.OAuthClientFile != "" && c.OAuthTokenFile != "" {
		clientJSON, err := os.ReadFile(c.OAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		cfg, err := OAuthConfig(clientJSON, "")
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(c.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		return cfg.TokenSource(ctx, tok), nil
	}

	b, err := c.load()
	if err != nil {
		return nil, err
	}
	creds, err := googleoauth.CredentialsFromJSON(ctx, b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return creds.TokenSource, nil
}

// New creates an authenticated Sheets client for the spreadsheet.
func New(ctx context.Context, spreadsheetID string, creds Credentials, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	ts, err := creds.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	httpClient := newHTTPClientWithPooling()
	httpClient.Transport = &oauth2.Transport{Source: ts, Base: httpClient.Transport}
	return NewWithOptions(ctx, spreadsheetID, logger, goption.WithHTTPClient(httpClient))
}

// NewWithOptions builds a client from raw client options, e.g. a test
// endpoint.
func NewWithOptions(ctx context.Context, spreadsheetID string, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// ExportMonth writes the month's rows to its tab, creating the tab when
// missing. Tabs whose content already matches are left untouched.
func (c *Client) ExportMonth(ctx context.Context, sheet ports.MonthSheet) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := sheet.Title()

	exists, err := c.hasTab(ctx, title)
	if err != nil {
		return err
	}
	if !exists {
		if err := c.addTab(ctx, title); err != nil {
			return err
		}
	} else {
		current, err := c.readTab(ctx, title)
		if err != nil {
			return err
		}
		if sameRows(current, sheet.Rows) {
			c.logger.DebugContext(ctx, "Sheet tab unchanged", log.FieldPeriod, title)
			return nil
		}
	}

	rng := fmt.Sprintf("'%s'!A:Z", title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: toValues(sheet.Rows)}
	start := fmt.Sprintf("'%s'!A1", title)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, start, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", start, err)
	}

	c.logger.InfoContext(ctx, "Exported month to sheet",
		log.FieldPeriod, title,
		"rows", len(sheet.Rows))
	return nil
}

func (c *Client) hasTab(ctx context.Context, title string) (bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) addTab(ctx context.Context, title string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	return nil
}

func (c *Client) readTab(ctx context.Context, title string) ([][]string, error) {
	rng := fmt.Sprintf("'%s'!A:Z", title)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return fromValues(resp.Values), nil
}
