/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package subscribers

import (
	"slices"

	"github.com/tochemey/goakt-extra/mailbox"
)

// Entry holds what a mailbox knows about one subscriber for one message type.
// An entry may exist only because of a delivery filter, before or after the
// subscription itself.
type Entry struct {
	Subscriber mailbox.Subscriber
	Limit      *mailbox.Limit
	Filter     mailbox.Filter
	subscribed bool
}

// Subscribed reports whether the subscriber is currently subscribed
func (e Entry) Subscribed() bool {
	return e.subscribed
}

// Set is the ordered collection of subscribers registered for one message type.
// Subscribers are kept sorted by mailbox.Less so that iteration is deterministic.
// A Set is not safe for concurrent use; the owning mailbox guards it.
type Set struct {
	entries []*Entry
}

// NewSet creates an empty Set
func NewSet() *Set {
	return &Set{}
}

// Subscribe marks sub as subscribed, updating its limit.
// It returns true when sub was not subscribed before.
func (s *Set) Subscribe(sub mailbox.Subscriber, limit *mailbox.Limit) bool {
	entry := s.findOrInsert(sub)
	added := !entry.subscribed
	entry.subscribed = true
	entry.Limit = limit
	return added
}

// Unsubscribe removes the subscription of sub. A filter installed by sub survives.
// It returns true when sub was subscribed.
func (s *Set) Unsubscribe(sub mailbox.Subscriber) bool {
	index, found := s.search(sub)
	if !found {
		return false
	}

	entry := s.entries[index]
	removed := entry.subscribed
	entry.subscribed = false
	entry.Limit = nil
	if entry.Filter == nil {
		s.entries = slices.Delete(s.entries, index, index+1)
	}
	return removed
}

// SetFilter installs the delivery filter of sub
func (s *Set) SetFilter(sub mailbox.Subscriber, filter mailbox.Filter) {
	s.findOrInsert(sub).Filter = filter
}

// DropFilter removes the delivery filter of sub
func (s *Set) DropFilter(sub mailbox.Subscriber) {
	index, found := s.search(sub)
	if !found {
		return
	}

	entry := s.entries[index]
	entry.Filter = nil
	if !entry.subscribed {
		s.entries = slices.Delete(s.entries, index, index+1)
	}
}

// Find returns a copy of the entry of sub
func (s *Set) Find(sub mailbox.Subscriber) (Entry, bool) {
	index, found := s.search(sub)
	if !found {
		return Entry{}, false
	}
	return *s.entries[index], true
}

// Registration returns what the Set holds for sub
func (s *Set) Registration(sub mailbox.Subscriber) (mailbox.Registration, bool) {
	entry, ok := s.Find(sub)
	if !ok {
		return mailbox.Registration{}, false
	}
	return mailbox.Registration{Subscribed: entry.subscribed, Limit: entry.Limit, Filter: entry.Filter}, true
}

// Count returns the number of subscribed subscribers
func (s *Set) Count() int {
	count := 0
	for _, entry := range s.entries {
		if entry.subscribed {
			count++
		}
	}
	return count
}

// Empty reports whether the Set holds neither subscriptions nor filters
func (s *Set) Empty() bool {
	return len(s.entries) == 0
}

// Snapshot returns a copy of the subscribed entries in delivery order
func (s *Set) Snapshot() []Entry {
	snapshot := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.subscribed {
			snapshot = append(snapshot, *entry)
		}
	}
	return snapshot
}

func (s *Set) findOrInsert(sub mailbox.Subscriber) *Entry {
	index, found := s.search(sub)
	if found {
		return s.entries[index]
	}

	entry := &Entry{Subscriber: sub}
	s.entries = slices.Insert(s.entries, index, entry)
	return entry
}

func (s *Set) search(sub mailbox.Subscriber) (int, bool) {
	return slices.BinarySearchFunc(s.entries, sub, func(entry *Entry, target mailbox.Subscriber) int {
		switch {
		case entry.Subscriber.ID() == target.ID():
			return 0
		case mailbox.Less(entry.Subscriber, target):
			return -1
		default:
			return 1
		}
	})
}
