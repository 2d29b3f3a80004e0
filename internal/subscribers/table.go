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
	"github.com/tochemey/goakt-extra/mailbox"
)

// Table maps message types to their subscriber Set.
// A Table is not safe for concurrent use; the owning mailbox guards it.
type Table struct {
	sets map[mailbox.Type]*Set
}

// NewTable creates an empty Table
func NewTable() *Table {
	return &Table{sets: make(map[mailbox.Type]*Set)}
}

// Get returns the Set of t, nil when there is none
func (t *Table) Get(typ mailbox.Type) *Set {
	return t.sets[typ]
}

// GetOrCreate returns the Set of t, creating it when missing
func (t *Table) GetOrCreate(typ mailbox.Type) *Set {
	set, ok := t.sets[typ]
	if !ok {
		set = NewSet()
		t.sets[typ] = set
	}
	return set
}

// Compact drops the Set of t when it became empty
func (t *Table) Compact(typ mailbox.Type) {
	if set, ok := t.sets[typ]; ok && set.Empty() {
		delete(t.sets, typ)
	}
}

// Len returns the number of types having a Set
func (t *Table) Len() int {
	return len(t.sets)
}

// Push hands msg to every entry of the snapshot whose filter accepts it.
// It returns the number of subscribers reached.
func Push(snapshot []Entry, mailboxID mailbox.ID, typ mailbox.Type, msg *mailbox.Message, redirectDepth int) int {
	delivered := 0
	for _, entry := range snapshot {
		if !mailbox.Accepts(entry.Filter, msg) {
			continue
		}
		entry.Subscriber.Push(mailbox.Delivery{
			MailboxID:     mailboxID,
			Type:          typ,
			Message:       msg,
			Limit:         entry.Limit,
			RedirectDepth: redirectDepth,
		})
		delivered++
	}
	return delivered
}
