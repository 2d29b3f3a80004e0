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

package collecting

// Collected is the aggregate delivered to the target once every expected message
// has arrived. Items are kept in arrival order.
// For signals the items are zero values and only Size is meaningful.
type Collected[T any] struct {
	items []T
}

// Size returns the number of collected messages
func (c *Collected[T]) Size() int {
	return len(c.items)
}

// At returns the collected message at index
func (c *Collected[T]) At(index int) T {
	return c.items[index]
}

// Items returns a copy of the collected messages
func (c *Collected[T]) Items() []T {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// ForEach calls fn with every collected message and its index
func (c *Collected[T]) ForEach(fn func(index int, item T)) {
	for index, item := range c.items {
		fn(index, item)
	}
}
