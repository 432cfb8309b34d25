// Package cache implements the client's local query cache: the last
// known-good snapshot of remote data, keyed by logical query identity. It is
// the single source the presentation layer reads from; the reconciler patches
// it optimistically and the real-time merge handlers splice events into it.
//
// Entries carry a staleness flag rather than being evicted on invalidation,
// so a consumer can keep rendering the last snapshot while a refetch is in
// flight.
package cache

import (
	"sync"

	"github.com/thinkex/thinkex/pkg/board"
)

type listEntry struct {
	list  *board.ClusterList
	stale bool
}

// Store is a process-wide snapshot store for board data. All methods are
// safe for concurrent use; values passed in and handed out are deep clones,
// so callers never alias cache internals.
type Store struct {
	mu     sync.RWMutex
	lists  map[string]*listEntry
	boards []board.ClusterListInfo
	// boardsFresh distinguishes "no summaries fetched yet" from an empty
	// but valid summary set.
	boardsFresh bool
}

// New returns an empty store.
func New() *Store {
	return &Store{lists: make(map[string]*listEntry)}
}

// GetList returns a deep copy of the cached list, whether the entry has been
// invalidated since it was stored, and whether an entry exists at all.
func (s *Store) GetList(listID string) (list *board.ClusterList, stale bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lists[listID]
	if !ok {
		return nil, false, false
	}
	return e.list.Clone(), e.stale, true
}

// SetList stores a deep copy of the list under its own id and marks the
// entry fresh.
func (s *Store) SetList(list *board.ClusterList) {
	if list == nil || list.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list.ID] = &listEntry{list: list.Clone()}
}

// PatchList stores a deep copy of the list like SetList but keeps the
// entry's staleness flag. In-place merges use this: splicing an event into
// a snapshot must not cancel a pending refetch of the authoritative state.
// A list not currently cached is stored fresh.
func (s *Store) PatchList(list *board.ClusterList) {
	if list == nil || list.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := false
	if e, ok := s.lists[list.ID]; ok {
		stale = e.stale
	}
	s.lists[list.ID] = &listEntry{list: list.Clone(), stale: stale}
}

// InvalidateList marks the entry stale without discarding the snapshot.
// No-op for unknown ids.
func (s *Store) InvalidateList(listID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lists[listID]; ok {
		e.stale = true
	}
}

// DropList removes the entry entirely. Used after an explicit remote delete.
func (s *Store) DropList(listID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, listID)
}

// GetBoards returns the cached board summaries and whether they are current.
func (s *Store) GetBoards() ([]board.ClusterListInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.boardsFresh {
		return nil, false
	}
	out := make([]board.ClusterListInfo, len(s.boards))
	copy(out, s.boards)
	return out, true
}

// SetBoards replaces the cached board summaries.
func (s *Store) SetBoards(infos []board.ClusterListInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = make([]board.ClusterListInfo, len(infos))
	copy(s.boards, infos)
	s.boardsFresh = true
}

// InvalidateBoards discards the summary collection.
func (s *Store) InvalidateBoards() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = nil
	s.boardsFresh = false
}
