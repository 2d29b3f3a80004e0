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

package hierarchy

import (
	"slices"
	"sync"

	"github.com/tochemey/goakt-extra/mailbox"
)

// consumerRoutes holds the routes of one consumer keyed by subscription type
type consumerRoutes struct {
	id     uint64
	routes map[mailbox.Type]*route
}

// candidate is a route selected for a delivery and the level it matched
type candidate struct {
	route *route
	level level
}

// controller owns the routing table of a demuxer.
// Deliveries read the table under the read lock; registration changes and
// consumer teardown take the write lock.
type controller struct {
	mu sync.RWMutex
	// consumers is sorted by consumer id
	consumers []*consumerRoutes
}

func newController() *controller {
	return &controller{}
}

// attach makes the route reachable for type t of the consumer
func (c *controller) attach(consumerID uint64, t mailbox.Type, r *route) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, found := c.search(consumerID)
	if !found {
		c.consumers = slices.Insert(c.consumers, index, &consumerRoutes{
			id:     consumerID,
			routes: make(map[mailbox.Type]*route),
		})
	}
	c.consumers[index].routes[t] = r
}

// detach removes the route of type t of the consumer
func (c *controller) detach(consumerID uint64, t mailbox.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, found := c.search(consumerID)
	if !found {
		return
	}

	routes := c.consumers[index]
	delete(routes.routes, t)
	if len(routes.routes) == 0 {
		c.consumers = slices.Delete(c.consumers, index, index+1)
	}
}

// removeConsumer removes every route of the consumer
func (c *controller) removeConsumer(consumerID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index, found := c.search(consumerID); found {
		c.consumers = slices.Delete(c.consumers, index, index+1)
	}
}

// lookup walks the chain for every consumer and returns, per consumer, the route
// of the nearest level it registered. Returned routes are acquired; the caller
// releases them once delivered.
func (c *controller) lookup(chain []level, mutable bool) []candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var candidates []candidate
	for _, consumer := range c.consumers {
		for _, current := range chain {
			key := mailbox.Type{Of: current.upcaster.typ, Mutable: mutable}
			if r, ok := consumer.routes[key]; ok {
				r.acquire()
				candidates = append(candidates, candidate{route: r, level: current})
				break
			}
		}
	}
	return candidates
}

// consumersCount returns the number of consumers having at least one route
func (c *controller) consumersCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.consumers)
}

func (c *controller) search(consumerID uint64) (int, bool) {
	return slices.BinarySearchFunc(c.consumers, consumerID, func(routes *consumerRoutes, id uint64) int {
		switch {
		case routes.id < id:
			return -1
		case routes.id > id:
			return 1
		default:
			return 0
		}
	})
}
