// Package notifications holds the client-side notification read model, the
// networked service that mutates it optimistically, and the polling driver
// that keeps it reconciled with the backend.
package notifications

import (
	"sync"

	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
)

// Store is the in-memory notification list plus its derived unread counter.
// Every mutation keeps the invariant unread == count(!IsRead); incremental
// updates where possible, a full recount only on wholesale replacement.
type Store struct {
	mu     sync.RWMutex
	items  []notificationDatamodel.Notification
	unread int
}

func NewStore() *Store {
	return &Store{items: []notificationDatamodel.Notification{}}
}

// ReplaceAll overwrites the list with the backend's ordering (newest first)
// and recounts unread from scratch.
func (s *Store) ReplaceAll(list []notificationDatamodel.Notification) {
	if list == nil {
		list = []notificationDatamodel.Notification{}
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}

	s.mu.Lock()
	s.items = list
	s.unread = unread
	s.mu.Unlock()
}

// Insert prepends a notification, bumping the unread counter when it is
// unread.
func (s *Store) Insert(n notificationDatamodel.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]notificationDatamodel.Notification{n}, s.items...)
	if !n.IsRead {
		s.unread++
	}
}

// Remove deletes the entry by id. Removing an unread entry decrements the
// counter so the invariant holds.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.items {
		if n.ID == id {
			if !n.IsRead && s.unread > 0 {
				s.unread--
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// MarkRead flips one entry to read with a saturating decrement. Already-read
// or missing ids are no-ops.
func (s *Store) MarkRead(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.items {
		if n.ID == id {
			if !n.IsRead {
				s.items[i].IsRead = true
				if s.unread > 0 {
					s.unread--
				}
			}
			return
		}
	}
}

// MarkAllRead flips every entry and zeroes the counter unconditionally.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.unread = 0
}

// All returns a copy of the current list.
func (s *Store) All() []notificationDatamodel.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]notificationDatamodel.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
