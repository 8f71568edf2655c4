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

// FastMap is a key/value map kept in the world state that does not support
// enumeration. Each key occupies a single cell under (parent, edition, key),
// where edition is the edition of the map itself: zero for maps opened at a
// field, the edition of the holding slot for nested maps.
//
// Every insert increments the edition of the affected slot. A nested map
// derives its keys from the slot key and the slot edition, so replacing or
// re-inserting a nested map leaves the previous content unreachable without
// touching it. Removing a key writes a tombstone at the current edition.
type FastMap[K, V any] struct {
	ws       worldstate.WorldState
	parent   []byte
	edition  uint32
	attached bool

	keyCodec   codec.Codec[K]
	valueCodec codec.Codec[V]

	slots *lazyCache[string, fastSlot[V]]
}

type fastSlot[V any] struct {
	edition uint32
	live    bool
	value   V
}

// OpenFastMap provides access to the map stored under the given parent key.
func OpenFastMap[K, V any](ws worldstate.WorldState, parent []byte, keys codec.Codec[K], values codec.Codec[V]) *FastMap[K, V] {
	res := NewFastMap(keys, values)
	res.ws = ws
	res.parent = append([]byte(nil), parent...)
	res.attached = true
	return res
}

// NewFastMap creates an empty map which is not bound to the world state. It
// can be populated and inserted as a value into another map, which binds it
// to the slot of its key.
func NewFastMap[K, V any](keys codec.Codec[K], values codec.Codec[V]) *FastMap[K, V] {
	res := &FastMap[K, V]{
		keyCodec:   keys,
		valueCodec: values,
	}
	res.slots = newLazyCache[string, fastSlot[V]](res.loadSlot, res.storeSlot)
	return res
}

func (m *FastMap[K, V]) slotKey(key string) []byte {
	return FastMapSlotKey(m.parent, m.edition, []byte(key))
}

func (m *FastMap[K, V]) loadSlot(key string) (fastSlot[V], bool, error) {
	if !m.attached {
		return fastSlot[V]{}, false, nil
	}
	slotKey := m.slotKey(key)
	cell, present, err := cells.Read(m.ws, slotKey, cells.DecodeCell)
	if err != nil || !present {
		return fastSlot[V]{}, false, err
	}
	slot := fastSlot[V]{edition: cell.Edition}
	if cell.IsTombstone() {
		return slot, true, nil
	}
	slot.value, err = codec.Decode(m.valueCodec, cell.Data)
	if err != nil {
		return slot, false, fmt.Errorf("%w: value at %x: %v", cells.ErrCorruptCell, slotKey, err)
	}
	if child, ok := asNested(slot.value); ok {
		if err := child.attach(m.ws, slotKey, cell.Edition, false); err != nil {
			return slot, false, err
		}
	}
	slot.live = true
	return slot, true, nil
}

func (m *FastMap[K, V]) storeSlot(key string, slot fastSlot[V]) (fastSlot[V], error) {
	cell := cells.Cell{Edition: slot.edition}
	if slot.live {
		cell.Data = codec.Encode(m.valueCodec, slot.value)
	}
	return slot, m.ws.Set(m.slotKey(key), cells.EncodeCell(cell))
}

func (m *FastMap[K, V]) encodeKey(key K) string {
	return string(codec.Encode(m.keyCodec, key))
}

// Get returns the value bound to the given key. The boolean result is false
// if the key is not bound.
func (m *FastMap[K, V]) Get(key K) (V, bool, error) {
	var zero V
	slot, present, err := m.slots.get(m.encodeKey(key))
	if err != nil || !present || !slot.live {
		return zero, false, err
	}
	return slot.value, true, nil
}

// Contains reports whether a value is bound to the given key.
func (m *FastMap[K, V]) Contains(key K) (bool, error) {
	_, found, err := m.Get(key)
	return found, err
}

// Insert binds the value to the given key, replacing any previous value. If
// the value is a nested map, it must not be bound anywhere else yet.
func (m *FastMap[K, V]) Insert(key K, value V) error {
	encoded := m.encodeKey(key)
	slot, _, err := m.slots.get(encoded)
	if err != nil {
		return err
	}
	if slot.edition == math.MaxUint32 {
		return fmt.Errorf("%w: edition of key %x", ErrCapacityExceeded, encoded)
	}
	edition := slot.edition + 1
	child, isChild, err := nestedValue(value)
	if err != nil {
		return err
	}
	if isChild {
		if child.isAttached() {
			return ErrAlreadyAttached
		}
		if m.attached {
			// slots used before may hold content of an earlier map
			if err := child.attach(m.ws, m.slotKey(encoded), edition, slot.edition > 0); err != nil {
				return err
			}
		}
	}
	m.slots.put(encoded, fastSlot[V]{edition: edition, live: true, value: value})
	return nil
}

// Remove unbinds the given key. The result reports whether a value was bound.
// Nested maps held by the key are not visited; their content becomes
// unreachable.
func (m *FastMap[K, V]) Remove(key K) (bool, error) {
	encoded := m.encodeKey(key)
	slot, present, err := m.slots.get(encoded)
	if err != nil || !present || !slot.live {
		return false, err
	}
	m.slots.put(encoded, fastSlot[V]{edition: slot.edition})
	return true, nil
}

// Flush writes all modified slots, including those of nested maps, to the
// world state.
func (m *FastMap[K, V]) Flush() error {
	if !m.attached {
		return ErrDetached
	}
	if err := m.slots.flush(); err != nil {
		return err
	}
	return m.slots.forEach(func(_ string, slot fastSlot[V]) error {
		if child, ok := asNested(slot.value); ok && slot.live {
			return child.Flush()
		}
		return nil
	})
}

// Update modifies the value bound to the given key in place. The slot keeps
// its edition. The result is false if the key is not bound, in which case
// the update is not called. Nested maps are modified through their own
// methods; replacing them requires Insert.
func (m *FastMap[K, V]) Update(key K, update func(value *V) error) (bool, error) {
	encoded := m.encodeKey(key)
	slot, present, err := m.slots.get(encoded)
	if err != nil || !present || !slot.live {
		return false, err
	}
	if _, isChild := asNested(slot.value); isChild {
		held := slot.value
		return true, update(&held)
	}
	if err := update(&slot.value); err != nil {
		return true, err
	}
	m.slots.put(encoded, slot)
	return true, nil
}

func (m *FastMap[K, V]) isNil() bool {
	return m == nil
}

func (m *FastMap[K, V]) isAttached() bool {
	return m.attached
}

func (m *FastMap[K, V]) attach(ws worldstate.WorldState, parent []byte, generation uint32, _ bool) error {
	if m.attached {
		return ErrAlreadyAttached
	}
	m.ws = ws
	m.parent = append([]byte(nil), parent...)
	m.edition = generation
	m.attached = true
	return m.slots.forEach(func(key string, slot fastSlot[V]) error {
		if child, ok := asNested(slot.value); ok && slot.live {
			return child.attach(ws, m.slotKey(key), slot.edition, false)
		}
		return nil
	})
}

// clear has nothing to do; fast maps held by removed entries of an
// iterable map are unreachable since indexes are not reused.
func (m *FastMap[K, V]) clear() (bool, error) {
	return false, nil
}
