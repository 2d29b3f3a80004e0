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

package composite

import (
	"github.com/tochemey/goakt-extra/mailbox"
)

type reactionKind int

const (
	dropIfNotFound reactionKind = iota
	failIfNotFound
	redirectIfNotFound
)

// Reaction tells a composite mailbox what to do with a message type it has no
// destination for.
type Reaction struct {
	kind        reactionKind
	destination mailbox.Mailbox
}

// DropIfNotFound silently ignores unknown types
func DropIfNotFound() Reaction {
	return Reaction{kind: dropIfNotFound}
}

// FailIfNotFound rejects unknown types with ErrNoSinkForMessageType.
// Unsubscribe and DropDeliveryFilter still ignore them.
func FailIfNotFound() Reaction {
	return Reaction{kind: failIfNotFound}
}

// RedirectIfNotFound forwards every operation on an unknown type to destination
func RedirectIfNotFound(destination mailbox.Mailbox) Reaction {
	return Reaction{kind: redirectIfNotFound, destination: destination}
}
