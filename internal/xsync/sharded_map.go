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

package xsync

import (
	"runtime"
	"sync"

	"github.com/zeebo/xxh3"
)

const maxShards = 64

type shard[V any] struct {
	sync.RWMutex
	m map[string]V
}

// ShardedMap is a string keyed concurrent map split into shards selected
// with an xxh3 hash of the key, so unrelated keys do not contend on a single lock.
type ShardedMap[V any] struct {
	shards []*shard[V]
}

// NewShardedMap creates an instance of ShardedMap sized after the number of CPUs.
func NewShardedMap[V any]() *ShardedMap[V] {
	numShards := calculateNumShards()
	shards := make([]*shard[V], numShards)
	for i := range numShards {
		shards[i] = &shard[V]{m: make(map[string]V)}
	}
	return &ShardedMap[V]{shards: shards}
}

// Load returns the value of a given key
func (s *ShardedMap[V]) Load(key string) (V, bool) {
	sh := s.getShard(key)
	sh.RLock()
	val, ok := sh.m[key]
	sh.RUnlock()
	return val, ok
}

// LoadOrStore returns the existing value for the key if present. Otherwise it stores
// the value produced by create. create runs under the shard lock.
func (s *ShardedMap[V]) LoadOrStore(key string, create func() V) (actual V, loaded bool) {
	sh := s.getShard(key)
	sh.Lock()
	defer sh.Unlock()
	if val, ok := sh.m[key]; ok {
		return val, true
	}
	val := create()
	sh.m[key] = val
	return val, false
}

// Delete removes a given key from the sharded map
func (s *ShardedMap[V]) Delete(key string) {
	sh := s.getShard(key)
	sh.Lock()
	delete(sh.m, key)
	sh.Unlock()
}

// Len returns the number of entries across all shards
func (s *ShardedMap[V]) Len() int {
	count := 0
	for _, sh := range s.shards {
		sh.RLock()
		count += len(sh.m)
		sh.RUnlock()
	}
	return count
}

func (s *ShardedMap[V]) getShard(key string) *shard[V] {
	return s.shards[xxh3.HashString(key)%uint64(len(s.shards))]
}

func calculateNumShards() int {
	numCPU := runtime.NumCPU()
	numShards := numCPU * 2
	if numShards > maxShards {
		numShards = maxShards
	}
	return numShards
}
