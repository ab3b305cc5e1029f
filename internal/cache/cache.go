// Package cache holds the client-side store of built timelines. There is one
// owner (the timeline service) and one invalidation rule: any write touching
// a pocket/month evicts that pocket/month before the write returns.
package cache

import (
	"container/list"
	"sync"
	"time"

	"saku/internal/ledger"
)

// Key identifies one pocket's view of one month.
type Key struct {
	PocketID string
	Month    ledger.MonthKey
}

func (k Key) String() string {
	return k.PocketID + "@" + k.Month.String()
}

// TimelineStore is an LRU store with TTL for materialized timelines.
type TimelineStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[Key]*list.Element
	order   *list.List
}

type storeItem struct {
	key       Key
	timeline  ledger.Timeline
	expiresAt time.Time
}

// NewTimelineStore creates a store bounded by maxSize entries, each living
// at most ttl.
func NewTimelineStore(maxSize int, ttl time.Duration) *TimelineStore {
	return &TimelineStore{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[Key]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached timeline for the key, if present and unexpired.
func (s *TimelineStore) Get(key Key) (ledger.Timeline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return ledger.Timeline{}, false
	}
	item := elem.Value.(*storeItem)
	if time.Now().After(item.expiresAt) {
		s.remove(elem)
		return ledger.Timeline{}, false
	}
	s.order.MoveToFront(elem)
	return item.timeline, true
}

// Put stores a freshly built timeline, evicting the least recently used
// entry when over capacity.
func (s *TimelineStore) Put(key Key, t ledger.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &storeItem{key: key, timeline: t, expiresAt: time.Now().Add(s.ttl)}
	if elem, ok := s.items[key]; ok {
		elem.Value = item
		s.order.MoveToFront(elem)
		return
	}

	s.items[key] = s.order.PushFront(item)
	if s.order.Len() > s.maxSize {
		if oldest := s.order.Back(); oldest != nil {
			s.remove(oldest)
		}
	}
}

// Invalidate drops the cached timeline for one pocket/month.
func (s *TimelineStore) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.remove(elem)
	}
}

// InvalidatePocket drops every cached month for a pocket. Used when the
// pocket itself changes (rename, original amount, deletion).
func (s *TimelineStore) InvalidatePocket(pocketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []*list.Element
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*storeItem).key.PocketID == pocketID {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		s.remove(elem)
	}
}

// Len returns the number of cached timelines.
func (s *TimelineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *TimelineStore) remove(elem *list.Element) {
	item := elem.Value.(*storeItem)
	delete(s.items, item.key)
	s.order.Remove(elem)
}
