// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package collections

// Iterator steps lazily through the elements of a collection. Elements are
// loaded from the world state on demand. Typical use:
//
//	iter := vector.Iterator()
//	for iter.Next() {
//		use(iter.Value())
//	}
//	if err := iter.Err(); err != nil {
//		...
//	}
//
// An iterator is finite; a new one may be obtained at any time to restart.
type Iterator[T any] struct {
	step  func() (T, bool, error)
	value T
	err   error
	done  bool
}

func newIterator[T any](step func() (T, bool, error)) *Iterator[T] {
	return &Iterator[T]{step: step}
}

func failedIterator[T any](err error) *Iterator[T] {
	return &Iterator[T]{err: err, done: true}
}

// Next advances to the next element. It returns false once the collection
// is exhausted or an error occurred.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}
	value, ok, err := it.step()
	if err != nil || !ok {
		var zero T
		it.value = zero
		it.err = err
		it.done = true
		return false
	}
	it.value = value
	return true
}

// Value returns the element the iterator is positioned at.
func (it *Iterator[T]) Value() T {
	return it.value
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}
