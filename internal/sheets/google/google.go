// Package google reads a spreadsheet through the Sheets API with
// service-account credentials. It is the secondary transport, used
// when the public export endpoint cannot be reached.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"avrora/internal/workbook"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client wraps a Sheets API service.
type Client struct {
	svc *gsheet.Service
}

// Ensure the reader shape without importing the ports package.
var _ interface {
	Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error)
} = (*Client)(nil)

// NewFromEnv builds a client from service-account credentials.
// Accepted: GOOGLE_SERVICE_ACCOUNT_JSON (inline), GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS (path).
func NewFromEnv(ctx context.Context) (*Client, error) {
	credentials, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Configured reports whether any credentials source is set, so callers
// can decide to wire the fallback at all.
func Configured() bool {
	return strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")) != "" ||
		strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")) != "" ||
		strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) != ""
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentials, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentials, nil
}

// Workbook reads every sheet of the spreadsheet into the shared
// workbook shape.
func (c *Client) Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	meta, err := c.svc.Spreadsheets.Get(sourceID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet metadata %s: %w", sourceID, err)
	}

	wb := &workbook.Workbook{}
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		title := sh.Properties.Title
		resp, err := c.svc.Spreadsheets.Values.Get(sourceID, fmt.Sprintf("'%s'", title)).
			Context(ctx).Do()
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable sheet", "sheet", title, "error", err)
			continue
		}
		wb.Sheets = append(wb.Sheets, workbook.Sheet{
			Name: title,
			Rows: toStringRows(resp.Values),
		})
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s: no readable sheets", sourceID)
	}
	return wb, nil
}

func toStringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strings.TrimSpace(fmt.Sprint(v))
		}
		rows[i] = cells
	}
	return rows
}
