// Package google mirrors ledger records to a Google Sheets spreadsheet.
// Transactions are appended to a year-prefixed sheet; the balance sheet
// snapshot overwrites a fixed range on its own tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/export"
)

const rowCountTTL = 30 * time.Second

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	snapshotSheet     string

	// Caches the used-row count per sheet so consecutive appends skip the
	// dimension read. Invalidated by writes going through this client only.
	rowCounts *cache.LRUCache[int]
}

var _ export.Exporter = (*Client)(nil)

// Options configures the Sheets mirror.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string // base name, year prefix added automatically
	SnapshotSheet     string
	CredentialsJSON   []byte
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(opts.CredentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}

	transactions := opts.TransactionsSheet
	if transactions == "" {
		transactions = "Transactions"
	}
	snapshot := opts.SnapshotSheet
	if snapshot == "" {
		snapshot = "Balance"
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(opts.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: yearPrefixedName(transactions, time.Now().Year()),
		snapshotSheet:     snapshot,
		rowCounts:         cache.NewLRUCache[int](8, rowCountTTL),
	}, nil
}

// NewFromEnv creates a Sheets mirror from environment variables.
// Required: GOOGLE_SPREADSHEET_ID and service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	return New(ctx, Options{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
		SnapshotSheet:     strings.TrimSpace(os.Getenv("GOOGLE_SNAPSHOT_SHEET_NAME")),
		CredentialsJSON:   creds,
	})
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		creds, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return creds, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendTransaction writes the transaction to the next free row.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	nextRow, err := c.nextFreeRow(ctx, c.transactionsSheet)
	if err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.transactionsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.rowCounts.Delete(c.transactionsSheet)
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	c.rowCounts.Set(c.transactionsSheet, nextRow)
	return rng, nil
}

// WriteBalanceSheet overwrites the snapshot tab with the current figures.
func (c *Client) WriteBalanceSheet(ctx context.Context, sheet core.BalanceSheet, asOf core.Date) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A1:B6", c.snapshotSheet)
	vr := &gsheet.ValueRange{Values: snapshotRows(sheet, asOf)}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Balance sheet snapshot mirrored",
		"as_of", asOf.ISO(),
		"net_worth_cents", sheet.NetWorth.Cents)
	return nil
}

// nextFreeRow returns the first empty row, consulting the cached row
// count before touching the API.
func (c *Client) nextFreeRow(ctx context.Context, sheetName string) (int, error) {
	if used, ok := c.rowCounts.Get(sheetName); ok {
		return used + 1, nil
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}

	used := len(resp.Values)
	c.rowCounts.Set(sheetName, used)
	return used + 1, nil
}

func transactionRow(t core.Transaction) []any {
	return []any{
		t.Date.ISO(),
		string(t.Kind),
		t.Category,
		t.Note,
		t.Amount.Units(),
		string(t.Method),
		t.CardID,
	}
}

func snapshotRows(sheet core.BalanceSheet, asOf core.Date) [][]any {
	return [][]any{
		{"As of", asOf.ISO()},
		{"Cash position", sheet.CashPosition.Units()},
		{"Unbilled credit card", sheet.UnbilledCreditCard.Units()},
		{"Debt remaining", sheet.TotalDebtRemaining.Units()},
		{"Fixed assets", sheet.FixedAssetsTotal.Units()},
		{"Net worth", sheet.NetWorth.Units()},
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
