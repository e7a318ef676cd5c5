package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sony/gobreaker"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budget/internal/config"
	"budget/internal/core"
)

// Writer is the export target port. The worker appends and removes
// transaction rows without knowing the backing spreadsheet.
type Writer interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
	RemoveTransaction(ctx context.Context, id string) error
}

// ErrCircuitOpen reports that the export target is failing and calls are
// being short-circuited.
var ErrCircuitOpen = errors.New("export circuit open")

// SheetsClient exports transactions to a Google Sheet. All API calls go
// through a circuit breaker so a failing spreadsheet cannot pile up
// requeued deliveries.
type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	cb            *gobreaker.CircuitBreaker
}

var _ Writer = (*SheetsClient)(nil)

// NewSheetsClient creates a client from the service account credentials
// named in the configuration.
func NewSheetsClient(ctx context.Context, cfg *config.Config) (*SheetsClient, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.GoogleServiceAccountJSON) != "":
		credentialsJSON = []byte(cfg.GoogleServiceAccountJSON)
	case strings.TrimSpace(cfg.GoogleServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	settings := gobreaker.Settings{
		Name: "sheets-export",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Export circuit state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &SheetsClient{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
		cb:            gobreaker.NewCircuitBreaker(settings),
	}, nil
}

// AppendTransaction appends one row: date, type, category, amount,
// description, id. The id column lets RemoveTransaction find the row
// again later.
func (c *SheetsClient) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	row := []any{
		t.Date.String(),
		string(t.Type),
		t.Category,
		t.Amount.Float(),
		t.Description,
		t.ID,
	}

	result, err := c.cb.Execute(func() (any, error) {
		vr := &gsheet.ValueRange{Values: [][]any{row}}
		return c.svc.Spreadsheets.Values.
			Append(c.spreadsheetID, c.sheetName+"!A:F", vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return "", fmt.Errorf("%w: append %s", ErrCircuitOpen, t.ID)
		}
		return "", fmt.Errorf("append row for %s: %w", t.ID, err)
	}

	resp := result.(*gsheet.AppendValuesResponse)
	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Appended transaction row",
		"id", t.ID,
		"sheets_ref", ref,
		"amount_cents", t.Amount.Cents)

	return ref, nil
}

// RemoveTransaction clears the row whose id column matches id. A row
// that is already gone is not an error, removal is idempotent.
func (c *SheetsClient) RemoveTransaction(ctx context.Context, id string) error {
	_, err := c.cb.Execute(func() (any, error) {
		rng := c.sheetName + "!F:F"
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read id column: %w", err)
		}

		rowIndex := -1
		for i, row := range resp.Values {
			if len(row) > 0 && fmt.Sprint(row[0]) == id {
				rowIndex = i + 1
				break
			}
		}
		if rowIndex < 0 {
			slog.InfoContext(ctx, "Transaction row already absent", "id", id)
			return nil, nil
		}

		clearRange := fmt.Sprintf("%s!A%d:F%d", c.sheetName, rowIndex, rowIndex)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("clear row %d: %w", rowIndex, err)
		}

		slog.InfoContext(ctx, "Cleared transaction row", "id", id, "row", rowIndex)
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("%w: remove %s", ErrCircuitOpen, id)
		}
		return fmt.Errorf("remove row for %s: %w", id, err)
	}
	return nil
}
