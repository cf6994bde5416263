// Package export fetches a spreadsheet through the public xlsx export
// endpoint. This is the primary transport; it needs no credentials,
// only that the document is link-readable.
package export

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"avrora/internal/workbook"
)

const (
	exportURLFormat = "https://docs.google.com/spreadsheets/d/%s/export?format=xlsx"
	// The export endpoint rejects clients without a browser User-Agent.
	userAgent = "Mozilla/5.0"

	maxDownloadBytes = 32 << 20
)

// Client downloads and decodes the xlsx export. A strict-TLS client is
// tried first; certain deployment environments ship broken certificate
// stores, so a lenient-TLS client is the second attempt.
type Client struct {
	strict  *http.Client
	lenient *http.Client
}

// New creates a client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lenientTransport := http.DefaultTransport.(*http.Transport).Clone()
	lenientTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &Client{
		strict:  &http.Client{Timeout: timeout},
		lenient: &http.Client{Timeout: timeout, Transport: lenientTransport},
	}
}

// Workbook fetches the whole document for a spreadsheet id.
func (c *Client) Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error) {
	url := fmt.Sprintf(exportURLFormat, sourceID)

	body, err := c.download(ctx, c.strict, url)
	if err != nil {
		slog.WarnContext(ctx, "export download failed, retrying with lenient TLS",
			"source", sourceID, "error", err)
		body, err = c.download(ctx, c.lenient, url)
	}
	if err != nil {
		return nil, fmt.Errorf("download spreadsheet %s: %w", sourceID, err)
	}

	wb, err := workbook.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode spreadsheet %s: %w", sourceID, err)
	}
	return wb, nil
}

func (c *Client) download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return body, nil
}
