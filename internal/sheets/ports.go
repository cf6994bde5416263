// Package sheets defines the fetch boundary: everything that can turn
// a spreadsheet identifier into a decoded workbook.
package sheets

import (
	"context"
	"errors"

	"avrora/internal/workbook"
)

// ErrFetchFailed marks a fetch that exhausted every transport. It is a
// user-visible "data unavailable" state, not a process fault.
var ErrFetchFailed = errors.New("spreadsheet data unavailable")

// WorkbookReader is the inbound port for the pipeline: one source
// identifier, one decoded workbook.
type WorkbookReader interface {
	Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error)
}

// Invalidator is implemented by readers that cache; callers use it for
// the explicit user-triggered refresh.
type Invalidator interface {
	Invalidate(sourceID string)
	InvalidateAll()
}
