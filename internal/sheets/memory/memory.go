// Package memory is an in-memory workbook source for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"avrora/internal/workbook"
)

// Store holds preloaded workbooks keyed by source id and counts how
// often each one is read.
type Store struct {
	mu    sync.Mutex
	books map[string]*workbook.Workbook
	errs  map[string]error
	calls map[string]int
}

func New() *Store {
	return &Store{
		books: map[string]*workbook.Workbook{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

// Put registers a workbook under a source id.
func (s *Store) Put(sourceID string, wb *workbook.Workbook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[sourceID] = wb
	delete(s.errs, sourceID)
}

// Fail makes further reads of the source return err.
func (s *Store) Fail(sourceID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[sourceID] = err
}

// Calls reports how many reads a source has served.
func (s *Store) Calls(sourceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[sourceID]
}

// Workbook implements the reader port.
func (s *Store) Workbook(_ context.Context, sourceID string) (*workbook.Workbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[sourceID]++
	if err, ok := s.errs[sourceID]; ok {
		return nil, err
	}
	wb, ok := s.books[sourceID]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceID)
	}
	return wb, nil
}
