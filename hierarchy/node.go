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
	"fmt"
	"reflect"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/xsync"
)

// upcaster describes one type of a hierarchy: its identity, its immediate parent
// and how to obtain the parent view of an instance.
type upcaster struct {
	// typ is the pointer type messages of this level carry
	typ reflect.Type
	// parent is nil for the root
	parent *upcaster
	root   *upcaster
	// upcast converts a payload of typ into a payload of parent.typ
	upcast func(any) any
	// member is the Member interface of the hierarchy, only set on roots
	member reflect.Type
}

// depth returns the number of ancestors of the level
func (u *upcaster) depth() int {
	depth := 0
	for current := u.parent; current != nil; current = current.parent {
		depth++
	}
	return depth
}

var (
	// upcasters is the process-wide table of registered types keyed by pointer type
	upcasters = xsync.NewMap[reflect.Type, *upcaster]()
	// registration serializes writers of the table
	registration sync.Mutex
)

// RegisterNode declares T as a node of a hierarchy whose immediate parent is P.
// upcast returns the embedded parent of a T, typically:
//
//	hierarchy.RegisterNode(func(s *Started) *Event { return &s.Event })
//
// P must be either a root, that is a type embedding Root[P], or a node registered
// before. Registering the same node twice with the same parent is a no-op.
func RegisterNode[T, P any](upcast func(*T) *P) error {
	if upcast == nil {
		return errors.NewErrInvalidArgument(fmt.Errorf("the [upcast] of %s is required", reflect.TypeFor[*T]()))
	}

	registration.Lock()
	defer registration.Unlock()

	nodeType := reflect.TypeFor[*T]()
	parent, err := lookupParent[P]()
	if err != nil {
		return err
	}

	if !nodeType.Implements(parent.root.member) {
		return errors.NewErrMessageIsNotDerivedFromRoot(nodeType, parent.root.typ)
	}

	if existing, ok := upcasters.Get(nodeType); ok {
		if existing.parent != parent {
			return errors.NewErrInvalidArgument(fmt.Errorf("%s is already registered with parent %s", nodeType, existing.parent.typ))
		}
		return nil
	}

	upcasters.Set(nodeType, &upcaster{
		typ:    nodeType,
		parent: parent,
		root:   parent.root,
		upcast: func(payload any) any {
			return upcast(payload.(*T))
		},
	})
	return nil
}

// MustRegisterNode is RegisterNode panicking on error, meant for init functions
func MustRegisterNode[T, P any](upcast func(*T) *P) {
	if err := RegisterNode(upcast); err != nil {
		panic(err)
	}
}

// lookupParent returns the upcaster of P, registering P when it is a root
func lookupParent[P any]() (*upcaster, error) {
	parentType := reflect.TypeFor[*P]()
	if parent, ok := upcasters.Get(parentType); ok {
		return parent, nil
	}

	if _, isRoot := any(new(P)).(Member[P]); !isRoot {
		return nil, errors.NewErrNodeNotRegistered(parentType)
	}
	return registerRoot(parentType, reflect.TypeFor[Member[P]]()), nil
}

// registerRoot returns the upcaster of a root, creating it on first use
func registerRoot(rootType, member reflect.Type) *upcaster {
	root, _ := upcasters.GetOrSet(rootType, func() *upcaster {
		root := &upcaster{typ: rootType, member: member}
		root.root = root
		return root
	})
	return root
}

// rootOf returns the upcaster of the root R
func rootOf[R Member[R]]() *upcaster {
	return registerRoot(reflect.TypeFor[*R](), reflect.TypeFor[Member[R]]())
}

// level is one step of the ancestor chain of a payload
type level struct {
	upcaster *upcaster
	payload  any
}

// chainOf returns the levels of payload from its concrete type up to the root
func chainOf(concrete *upcaster, payload any) []level {
	chain := make([]level, 0, concrete.depth()+1)
	for current := concrete; current != nil; current = current.parent {
		chain = append(chain, level{upcaster: current, payload: payload})
		if current.parent != nil {
			payload = current.upcast(payload)
		}
	}
	return chain
}
