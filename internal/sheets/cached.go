package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"avrora/internal/cache"
	"avrora/internal/workbook"
)

// FallbackReader chains a primary transport with an optional secondary
// one. The secondary is consulted only after the primary failed; when
// both fail the error carries ErrFetchFailed so the presentation layer
// can render a "data unavailable" state instead of a fault.
type FallbackReader struct {
	primary   WorkbookReader
	secondary WorkbookReader
}

func NewFallback(primary, secondary WorkbookReader) *FallbackReader {
	return &FallbackReader{primary: primary, secondary: secondary}
}

func (f *FallbackReader) Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error) {
	wb, err := f.primary.Workbook(ctx, sourceID)
	if err == nil {
		return wb, nil
	}
	if f.secondary == nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	slog.WarnContext(ctx, "primary transport failed, using fallback",
		"source", sourceID, "error", err)
	wb, ferr := f.secondary.Workbook(ctx, sourceID)
	if ferr != nil {
		return nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrFetchFailed, err, ferr)
	}
	return wb, nil
}

// CachedReader serves workbooks from a TTL cache keyed by source id.
// Concurrent misses for the same source collapse into one fetch;
// concurrent refreshes are last-write-wins, which is all the source
// behavior requires.
type CachedReader struct {
	next  WorkbookReader
	store *cache.Store[*workbook.Workbook]
	group singleflight.Group
}

// NewCached wraps a reader with a cache of maxEntries sources.
func NewCached(next WorkbookReader, ttl time.Duration, maxEntries int) *CachedReader {
	return &CachedReader{
		next:  next,
		store: cache.New[*workbook.Workbook](maxEntries, ttl),
	}
}

func (c *CachedReader) Workbook(ctx context.Context, sourceID string) (*workbook.Workbook, error) {
	if wb, ok := c.store.Get(sourceID); ok {
		return wb, nil
	}
	v, err, _ := c.group.Do(sourceID, func() (any, error) {
		// A concurrent caller may have filled the cache while we
		// waited on the flight group.
		if wb, ok := c.store.Get(sourceID); ok {
			return wb, nil
		}
		wb, err := c.next.Workbook(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		c.store.Set(sourceID, wb)
		return wb, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*workbook.Workbook), nil
}

// Invalidate drops one source from the cache so the next read fetches.
func (c *CachedReader) Invalidate(sourceID string) {
	c.store.Delete(sourceID)
}

// InvalidateAll drops every cached source.
func (c *CachedReader) InvalidateAll() {
	c.store.Clear()
}

var (
	_ WorkbookReader = (*FallbackReader)(nil)
	_ WorkbookReader = (*CachedReader)(nil)
	_ Invalidator    = (*CachedReader)(nil)
)
