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

import (
	"fmt"
	"math"

	"github.com/parallelchain-io/pchain-sdk/cells"
	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// Vector is an indexable sequence kept in the world state. The length is
// stored under (parent, 0), element i as a cell under (parent, 1, i).
//
// Accesses are served by a lazy cache: every element is read at most once
// per invocation and modifications are only written by Flush.
//
// Elements may be nested maps (see FastMapOf and IterableMapOf). A nested
// map is bound to the key of its element cell and flushed with the vector.
type Vector[T any] struct {
	ws     worldstate.WorldState
	parent []byte
	values codec.Codec[T]

	length       uint32
	lengthLoaded bool
	lengthDirty  bool

	slots *lazyCache[uint32, vectorSlot[T]]
}

// vectorSlot is the cached state of an element. The edition is the one of
// the cell in the world state; for slots written without being read it is
// unresolved until the slot is flushed.
type vectorSlot[T any] struct {
	edition  uint32
	resolved bool
	live     bool
	value    T
}

// OpenVector provides access to the vector stored under the given parent key.
func OpenVector[T any](ws worldstate.WorldState, parent []byte, values codec.Codec[T]) *Vector[T] {
	res := &Vector[T]{
		ws:     ws,
		parent: append([]byte(nil), parent...),
		values: values,
	}
	res.slots = newLazyCache[uint32, vectorSlot[T]](res.loadSlot, res.storeSlot)
	return res
}

func (v *Vector[T]) lengthKey() []byte {
	return VectorLengthKey(v.parent)
}

func (v *Vector[T]) elementKey(index uint32) []byte {
	return VectorElementKey(v.parent, index)
}

func (v *Vector[T]) loadSlot(index uint32) (vectorSlot[T], bool, error) {
	cell, present, err := cells.Read(v.ws, v.elementKey(index), cells.DecodeCell)
	if err != nil || !present {
		return vectorSlot[T]{resolved: true}, false, err
	}
	slot := vectorSlot[T]{edition: cell.Edition, resolved: true}
	if cell.IsTombstone() {
		return slot, true, nil
	}
	slot.value, err = codec.Decode(v.values, cell.Data)
	if err != nil {
		return slot, false, fmt.Errorf("%w: element %d: %v", cells.ErrCorruptCell, index, err)
	}
	if child, ok := asNested(slot.value); ok {
		if err := child.attach(v.ws, v.elementKey(index), cell.Edition, false); err != nil {
			return slot, false, err
		}
	}
	slot.live = true
	return slot, true, nil
}

func (v *Vector[T]) storeSlot(index uint32, slot vectorSlot[T]) (vectorSlot[T], error) {
	key := v.elementKey(index)
	if !slot.resolved {
		stored, present, err := cells.Read(v.ws, key, cells.DecodeCell)
		if err != nil {
			return slot, err
		}
		if !present && !slot.live {
			// an element pushed and popped without ever being stored
			slot.resolved = true
			return slot, nil
		}
		slot.edition = stored.Edition
		slot.resolved = true
	}
	cell := cells.Cell{Edition: slot.edition}
	if slot.live {
		if slot.edition == math.MaxUint32 {
			return slot, fmt.Errorf("%w: edition of element %d", ErrCapacityExceeded, index)
		}
		cell.Edition++
		cell.Data = codec.Encode(v.values, slot.value)
	}
	if err := v.ws.Set(key, cells.EncodeCell(cell)); err != nil {
		return slot, err
	}
	slot.edition = cell.Edition
	return slot, nil
}

// Len returns the number of elements in the vector.
func (v *Vector[T]) Len() (uint32, error) {
	if v.lengthLoaded {
		return v.length, nil
	}
	data, found, err := v.ws.Get(v.lengthKey())
	if err != nil {
		return 0, err
	}
	if found {
		if v.length, err = codec.Decode[uint32](codec.Uint32, data); err != nil {
			return 0, fmt.Errorf("%w: vector length: %v", cells.ErrCorruptCell, err)
		}
	}
	v.lengthLoaded = true
	return v.length, nil
}

// Push appends an element. Only the length is read, if not known yet.
func (v *Vector[T]) Push(value T) error {
	length, err := v.Len()
	if err != nil {
		return err
	}
	if length == math.MaxUint32 {
		return fmt.Errorf("%w: vector length", ErrCapacityExceeded)
	}
	if err := v.write(length, vectorSlot[T]{live: true, value: value}); err != nil {
		return err
	}
	v.length++
	v.lengthDirty = true
	return nil
}

// Pop removes the last element. Popping from an empty vector fails with
// ErrEmptyCollection.
func (v *Vector[T]) Pop() error {
	length, err := v.Len()
	if err != nil {
		return err
	}
	if length == 0 {
		return ErrEmptyCollection
	}
	if err := v.write(length-1, vectorSlot[T]{}); err != nil {
		return err
	}
	v.length--
	v.lengthDirty = true
	return nil
}

// write records a new state for a slot, retaining what is known about the
// stored cell.
func (v *Vector[T]) write(index uint32, slot vectorSlot[T]) error {
	cached, _, found := v.slots.peek(index)
	if found {
		slot.edition = cached.edition
		slot.resolved = cached.resolved
	}
	if !slot.live {
		v.slots.put(index, slot)
		return nil
	}
	child, isChild, err := nestedValue(slot.value)
	if err != nil {
		return err
	}
	if !isChild {
		v.slots.put(index, slot)
		return nil
	}
	if found && cached.live && any(cached.value) == any(slot.value) {
		// the map already held by the slot, modified through its own methods
		return nil
	}
	if child.isAttached() {
		return ErrAlreadyAttached
	}
	// the generation of a nested map is the edition its cell is written with
	if !slot.resolved {
		stored, present, err := cells.Read(v.ws, v.elementKey(index), cells.DecodeCell)
		if err != nil {
			return err
		}
		if present {
			slot.edition = stored.Edition
		}
		slot.resolved = true
	}
	if slot.edition == math.MaxUint32 {
		return fmt.Errorf("%w: edition of element %d", ErrCapacityExceeded, index)
	}
	if err := child.attach(v.ws, v.elementKey(index), slot.edition+1, slot.edition > 0); err != nil {
		return err
	}
	v.slots.put(index, slot)
	return nil
}

func (v *Vector[T]) checkIndex(index uint32) error {
	length, err := v.Len()
	if err != nil {
		return err
	}
	if index >= length {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, index, length)
	}
	return nil
}

// Get returns the element at the given index.
func (v *Vector[T]) Get(index uint32) (T, error) {
	var zero T
	if err := v.checkIndex(index); err != nil {
		return zero, err
	}
	slot, present, err := v.slots.get(index)
	if err != nil {
		return zero, err
	}
	if !present || !slot.live {
		return zero, fmt.Errorf("%w: missing element %d", cells.ErrCorruptCell, index)
	}
	return slot.value, nil
}

// Set replaces the element at the given index. The cell is not read.
func (v *Vector[T]) Set(index uint32, value T) error {
	if err := v.checkIndex(index); err != nil {
		return err
	}
	return v.write(index, vectorSlot[T]{live: true, value: value})
}

// Update modifies the element at the given index in place. The element is
// written on the next flush unless the update fails.
func (v *Vector[T]) Update(index uint32, update func(value *T) error) error {
	value, err := v.Get(index)
	if err != nil {
		return err
	}
	if err := update(&value); err != nil {
		return err
	}
	return v.write(index, vectorSlot[T]{live: true, value: value})
}

// Iterator creates an iterator over the elements in index order.
func (v *Vector[T]) Iterator() *Iterator[T] {
	next := uint32(0)
	return newIterator(func() (T, bool, error) {
		var zero T
		length, err := v.Len()
		if err != nil || next >= length {
			return zero, false, err
		}
		value, err := v.Get(next)
		if err != nil {
			return zero, false, err
		}
		next++
		return value, true, nil
	})
}

// ForEach visits all elements in index order until the visitor fails.
func (v *Vector[T]) ForEach(visit func(index uint32, value T) error) error {
	length, err := v.Len()
	if err != nil {
		return err
	}
	for i := uint32(0); i < length; i++ {
		value, err := v.Get(i)
		if err != nil {
			return err
		}
		if err := visit(i, value); err != nil {
			return err
		}
	}
	return nil
}

// ForEachMut visits all elements in index order, allowing the visitor to
// modify them in place. Every visited element is written on the next flush.
func (v *Vector[T]) ForEachMut(visit func(index uint32, value *T) error) error {
	length, err := v.Len()
	if err != nil {
		return err
	}
	for i := uint32(0); i < length; i++ {
		value, err := v.Get(i)
		if err != nil {
			return err
		}
		if err := visit(i, &value); err != nil {
			return err
		}
		if err := v.write(i, vectorSlot[T]{live: true, value: value}); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the modified length and elements, including the content of
// nested maps, to the world state.
func (v *Vector[T]) Flush() error {
	if v.lengthDirty {
		if err := v.ws.Set(v.lengthKey(), codec.Encode[uint32](codec.Uint32, v.length)); err != nil {
			return err
		}
		v.lengthDirty = false
	}
	if err := v.slots.flush(); err != nil {
		return err
	}
	return v.slots.forEach(func(_ uint32, slot vectorSlot[T]) error {
		if child, ok := asNested(slot.value); ok && slot.live {
			return child.Flush()
		}
		return nil
	})
}
