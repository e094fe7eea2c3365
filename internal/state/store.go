// Package state holds the local mirror of one company's accounting data plus
// the surrounding UI-facing flags. The store is the single shared slot
// described by the sync design: only the sync engine and the lifecycle
// manager write to it, everything else reads snapshots.
package state

import (
	"sync"

	"github.com/quillbooks/backend/internal/domain/company"
)

// Snapshot is an observable copy of the store's contents.
type Snapshot struct {
	Companies []company.Company
	Selected  *company.Company // nil when no company is selected
	Data      company.Data
	Loading   bool
	LastErr   error
	Offline   bool
}

// Store is the mutex-protected local state slot.
type Store struct {
	mu       sync.RWMutex
	snap     Snapshot
	watchers map[int]chan Snapshot
	nextID   int
}

// NewStore creates a store holding the default (empty, unselected) snapshot.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{
			Companies: []company.Company{},
			Data:      company.DefaultData(""),
		},
		watchers: make(map[int]chan Snapshot),
	}
}

// Snapshot returns a copy of the current state. Collection fields are cloned
// so the caller can hold the snapshot across later store mutations.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySnapshotLocked()
}

// Watch registers an observer. The returned channel receives a snapshot after
// every mutation; delivery is non-blocking and coalescing, so a slow reader
// always sees the latest state rather than a backlog. The cancel func
// unregisters and closes the channel.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.watchers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
	}
}

// SetCompanies replaces the companies list.
func (s *Store) SetCompanies(companies []company.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if companies == nil {
		companies = []company.Company{}
	}
	s.snap.Companies = companies
	s.notifyLocked()
}

// SetSelected replaces the selected company. Passing nil clears selection.
func (s *Store) SetSelected(c *company.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Selected = c
	s.notifyLocked()
}

// Selected returns the currently selected company, or nil.
func (s *Store) Selected() *company.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Selected == nil {
		return nil
	}
	c := *s.snap.Selected
	return &c
}

// SetData replaces the current company data wholesale.
func (s *Store) SetData(data company.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Data = data
	s.notifyLocked()
}

// Data returns a copy of the current company data.
func (s *Store) Data() company.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Data.Clone()
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = loading
	s.notifyLocked()
}

// SetErr records the last observed error. Passing nil clears it.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastErr = err
	s.notifyLocked()
}

// SetOffline sets the offline flag.
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Offline = offline
	s.notifyLocked()
}

// Offline reports the current offline flag.
func (s *Store) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Offline
}

func (s *Store) copySnapshotLocked() Snapshot {
	out := s.snap
	out.Companies = append([]company.Company{}, s.snap.Companies...)
	if s.snap.Selected != nil {
		c := *s.snap.Selected
		out.Selected = &c
	}
	out.Data = s.snap.Data.Clone()
	return out
}

func (s *Store) notifyLocked() {
	snap := s.copySnapshotLocked()
	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
