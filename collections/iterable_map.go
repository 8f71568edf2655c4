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

// IterableMap is a key/value map kept in the world state that supports
// enumeration in insertion order. It is laid out as
//
//	(parent, 0)            MapInfoCell  {level, sequence}
//	(parent, 1, level, K)  KeyIndexCell {index}
//	(parent, 2, level, I)  ValueCell    holding the key at index I
//	(parent, 3, level, I)  ValueCell    holding the value at index I
//
// New keys are assigned index sequence+1. Removing a key tombstones its cells;
// indexes are never reused within a level. Clear starts a new level, which
// makes all previous entries unreachable in constant time.
type IterableMap[K, V any] struct {
	ws       worldstate.WorldState
	parent   []byte
	attached bool

	keyCodec   codec.Codec[K]
	valueCodec codec.Codec[V]

	info       cells.MapInfoCell
	infoLoaded bool
	infoDirty  bool

	indices     *lazyCache[string, uint32]
	indexKeys   *lazyCache[uint32, []byte] // nil keys mark removed entries
	indexValues *lazyCache[uint32, mapValue[V]]

	// nested maps cleared by Remove, still to be flushed
	retired []nested
}

type mapValue[V any] struct {
	live       bool
	isMap      bool
	generation uint32
	value      V
}

// OpenIterableMap provides access to the map stored under the given parent key.
func OpenIterableMap[K, V any](ws worldstate.WorldState, parent []byte, keys codec.Codec[K], values codec.Codec[V]) *IterableMap[K, V] {
	res := NewIterableMap(keys, values)
	res.ws = ws
	res.parent = append([]byte(nil), parent...)
	res.attached = true
	return res
}

// NewIterableMap creates an empty map which is not bound to the world state.
// It can be populated and inserted as a value into another map.
func NewIterableMap[K, V any](keys codec.Codec[K], values codec.Codec[V]) *IterableMap[K, V] {
	res := &IterableMap[K, V]{
		keyCodec:   keys,
		valueCodec: values,
	}
	res.indices = newLazyCache[string, uint32](res.loadIndex, res.storeIndex)
	res.indexKeys = newLazyCache[uint32, []byte](res.loadKey, res.storeKey)
	res.indexValues = newLazyCache[uint32, mapValue[V]](res.loadValue, res.storeValue)
	return res
}

func (m *IterableMap[K, V]) infoKey() []byte {
	return MapInfoKey(m.parent)
}

func (m *IterableMap[K, V]) keyIndexKey(key string) []byte {
	return MapKeyIndexKey(m.parent, m.info.Level, []byte(key))
}

func (m *IterableMap[K, V]) indexKeyKey(index uint32) []byte {
	return MapIndexKeyKey(m.parent, m.info.Level, index)
}

func (m *IterableMap[K, V]) indexValueKey(index uint32) []byte {
	return MapIndexValueKey(m.parent, m.info.Level, index)
}

func (m *IterableMap[K, V]) loadInfo() error {
	if m.infoLoaded {
		return nil
	}
	if m.attached {
		info, _, err := cells.Read(m.ws, m.infoKey(), cells.DecodeMapInfo)
		if err != nil {
			return err
		}
		m.info = info
	}
	m.infoLoaded = true
	return nil
}

func (m *IterableMap[K, V]) loadIndex(key string) (uint32, bool, error) {
	if !m.attached {
		return 0, false, nil
	}
	cell, present, err := cells.Read(m.ws, m.keyIndexKey(key), cells.DecodeKeyIndex)
	return cell.Index, present, err
}

func (m *IterableMap[K, V]) storeIndex(key string, index uint32) (uint32, error) {
	return index, m.ws.Set(m.keyIndexKey(key), cells.EncodeKeyIndex(cells.KeyIndexCell{Index: index}))
}

func (m *IterableMap[K, V]) loadKey(index uint32) ([]byte, bool, error) {
	if !m.attached {
		return nil, false, nil
	}
	cell, present, err := cells.Read(m.ws, m.indexKeyKey(index), cells.DecodeValueCell)
	return cell.Data, present, err
}

func (m *IterableMap[K, V]) storeKey(index uint32, key []byte) ([]byte, error) {
	return key, m.ws.Set(m.indexKeyKey(index), cells.EncodeValueCell(cells.ValueCell{Data: key}))
}

func (m *IterableMap[K, V]) loadValue(index uint32) (mapValue[V], bool, error) {
	if !m.attached {
		return mapValue[V]{}, false, nil
	}
	valueKey := m.indexValueKey(index)
	cell, present, err := cells.Read(m.ws, valueKey, cells.DecodeValueCell)
	if err != nil || !present || cell.IsTombstone() {
		return mapValue[V]{}, present, err
	}
	if cell.IsMap != isNestedCodec(m.valueCodec) {
		return mapValue[V]{}, false, fmt.Errorf("%w: unexpected map flag %t at %x", cells.ErrCorruptCell, cell.IsMap, valueKey)
	}
	value, err := codec.Decode(m.valueCodec, cell.Data)
	if err != nil {
		return mapValue[V]{}, false, fmt.Errorf("%w: value at %x: %v", cells.ErrCorruptCell, valueKey, err)
	}
	res := mapValue[V]{live: true, isMap: cell.IsMap, value: value}
	if child, ok := asNested(value); ok {
		res.generation, _, _ = readRef(cell.Data, cell.Data[0])
		if err := child.attach(m.ws, valueKey, res.generation, false); err != nil {
			return mapValue[V]{}, false, err
		}
	}
	return res, true, nil
}

func (m *IterableMap[K, V]) storeValue(index uint32, value mapValue[V]) (mapValue[V], error) {
	cell := cells.ValueCell{}
	if value.live {
		cell.IsMap = value.isMap
		cell.Data = codec.Encode(m.valueCodec, value.value)
	}
	return value, m.ws.Set(m.indexValueKey(index), cells.EncodeValueCell(cell))
}

// lookup resolves the index of a key. The boolean result is false if the key
// was never inserted at the current level.
func (m *IterableMap[K, V]) lookup(key string) (uint32, bool, error) {
	if err := m.loadInfo(); err != nil {
		return 0, false, err
	}
	index, present, err := m.indices.get(key)
	if err != nil || !present {
		return 0, false, err
	}
	if index == 0 || index > m.info.Sequence {
		return 0, false, fmt.Errorf("%w: index %d of key %x exceeds sequence %d", cells.ErrCorruptCell, index, key, m.info.Sequence)
	}
	return index, true, nil
}

// entry returns the live value stored for the key, if any.
func (m *IterableMap[K, V]) entry(key string) (uint32, mapValue[V], bool, error) {
	index, found, err := m.lookup(key)
	if err != nil || !found {
		return 0, mapValue[V]{}, false, err
	}
	value, present, err := m.indexValues.get(index)
	if err != nil || !present || !value.live {
		return index, mapValue[V]{}, false, err
	}
	return index, value, true, nil
}

func (m *IterableMap[K, V]) encodeKey(key K) string {
	return string(codec.Encode(m.keyCodec, key))
}

// Get returns the value bound to the given key. The boolean result is false
// if the key is not bound.
func (m *IterableMap[K, V]) Get(key K) (V, bool, error) {
	_, value, found, err := m.entry(m.encodeKey(key))
	return value.value, found, err
}

// Contains reports whether a value is bound to the given key.
func (m *IterableMap[K, V]) Contains(key K) (bool, error) {
	_, _, found, err := m.entry(m.encodeKey(key))
	return found, err
}

// Insert binds the value to the given key. Keys already bound keep their
// index and thus their position in the iteration order. If the value is a
// nested map, it must not be bound anywhere else yet.
func (m *IterableMap[K, V]) Insert(key K, value V) error {
	child, isChild, err := nestedValue(value)
	if err != nil {
		return err
	}
	if isChild && child.isAttached() {
		return ErrAlreadyAttached
	}
	encoded := m.encodeKey(key)
	index, old, found, err := m.entry(encoded)
	if err != nil {
		return err
	}
	if !found {
		if m.info.Sequence == math.MaxUint32 {
			return fmt.Errorf("%w: sequence of map", ErrCapacityExceeded)
		}
		m.info.Sequence++
		m.infoDirty = true
		index = m.info.Sequence
		m.indices.put(encoded, index)
	}

	entry := mapValue[V]{live: true, value: value}
	if isChild {
		entry.isMap = true
		if old.isMap {
			entry.generation = old.generation + 1
		}
		if m.attached {
			// an updated index may hold the content of the replaced map
			if err := child.attach(m.ws, m.indexValueKey(index), entry.generation, found); err != nil {
				return err
			}
		}
	}
	m.indexKeys.put(index, []byte(encoded))
	m.indexValues.put(index, entry)
	return nil
}

// Remove unbinds the given key. The result reports whether a value was bound.
// A nested iterable map held by the key is cleared before being removed.
func (m *IterableMap[K, V]) Remove(key K) (bool, error) {
	index, old, found, err := m.entry(m.encodeKey(key))
	if err != nil || !found {
		return false, err
	}
	if child, ok := asNested(old.value); ok {
		modified, err := child.clear()
		if err != nil {
			return false, err
		}
		if modified {
			m.retired = append(m.retired, child)
		}
	}
	m.indexKeys.put(index, nil)
	m.indexValues.put(index, mapValue[V]{})
	return true, nil
}

// Clear removes all entries by starting a new level. The cost is independent
// of the size of the map; previous entries remain in the world state but
// are unreachable.
func (m *IterableMap[K, V]) Clear() error {
	if err := m.loadInfo(); err != nil {
		return err
	}
	if m.info.Level == math.MaxUint32 {
		return fmt.Errorf("%w: level of map", ErrCapacityExceeded)
	}
	m.info.Level++
	m.info.Sequence = 0
	m.infoDirty = true
	m.indices.reset()
	m.indexKeys.reset()
	m.indexValues.reset()
	m.retired = nil
	return nil
}

// scan visits the live entries in index order. The key is only loaded if
// withKeys is set. Iteration stops if the map is cleared meanwhile.
func (m *IterableMap[K, V]) scan(withKeys bool) func() (uint32, K, mapValue[V], bool, error) {
	next := uint32(1)
	level := uint32(0)
	started := false
	return func() (uint32, K, mapValue[V], bool, error) {
		var key K
		if err := m.loadInfo(); err != nil {
			return 0, key, mapValue[V]{}, false, err
		}
		if !started {
			level = m.info.Level
			started = true
		}
		for ; level == m.info.Level && next <= m.info.Sequence; next++ {
			value, present, err := m.indexValues.get(next)
			if err != nil {
				return 0, key, value, false, err
			}
			if !present || !value.live {
				continue
			}
			index := next
			next++
			if withKeys {
				if key, err = m.keyAt(index); err != nil {
					return 0, key, value, false, err
				}
			}
			return index, key, value, true, nil
		}
		return 0, key, mapValue[V]{}, false, nil
	}
}

func (m *IterableMap[K, V]) keyAt(index uint32) (K, error) {
	var zero K
	encoded, present, err := m.indexKeys.get(index)
	if err != nil {
		return zero, err
	}
	if !present || encoded == nil {
		return zero, fmt.Errorf("%w: missing key for index %d", cells.ErrCorruptCell, index)
	}
	key, err := codec.Decode(m.keyCodec, encoded)
	if err != nil {
		return zero, fmt.Errorf("%w: key at index %d: %v", cells.ErrCorruptCell, index, err)
	}
	return key, nil
}

// Keys creates an iterator over the bound keys in insertion order.
func (m *IterableMap[K, V]) Keys() *Iterator[K] {
	if err := m.loadInfo(); err != nil {
		return failedIterator[K](err)
	}
	next := uint32(1)
	level := m.info.Level
	return newIterator(func() (K, bool, error) {
		var zero K
		for ; level == m.info.Level && next <= m.info.Sequence; next++ {
			encoded, present, err := m.indexKeys.get(next)
			if err != nil {
				return zero, false, err
			}
			if !present || encoded == nil {
				continue
			}
			next++
			key, err := codec.Decode(m.keyCodec, encoded)
			if err != nil {
				return zero, false, fmt.Errorf("%w: key at index %d: %v", cells.ErrCorruptCell, next-1, err)
			}
			return key, true, nil
		}
		return zero, false, nil
	})
}

// Values creates an iterator over the bound values in insertion order.
func (m *IterableMap[K, V]) Values() *Iterator[V] {
	step := m.scan(false)
	return newIterator(func() (V, bool, error) {
		_, _, value, ok, err := step()
		return value.value, ok, err
	})
}

// ForEach visits all entries in insertion order until the visitor fails.
func (m *IterableMap[K, V]) ForEach(visit func(key K, value V) error) error {
	step := m.scan(true)
	for {
		_, key, value, ok, err := step()
		if err != nil || !ok {
			return err
		}
		if err := visit(key, value.value); err != nil {
			return err
		}
	}
}

// ForEachMut visits all entries in insertion order, allowing the visitor to
// modify values in place. Every visited value is written on the next flush.
// Nested maps are modified through their own methods and are not rewritten.
func (m *IterableMap[K, V]) ForEachMut(visit func(key K, value *V) error) error {
	step := m.scan(true)
	for {
		index, key, value, ok, err := step()
		if err != nil || !ok {
			return err
		}
		if err := visit(key, &value.value); err != nil {
			return err
		}
		if !value.isMap {
			m.indexValues.put(index, value)
		}
	}
}

// Flush writes all modified entries, including those of nested maps, to the
// world state.
func (m *IterableMap[K, V]) Flush() error {
	if !m.attached {
		return ErrDetached
	}
	if m.infoDirty {
		if err := m.ws.Set(m.infoKey(), cells.EncodeMapInfo(m.info)); err != nil {
			return err
		}
		m.infoDirty = false
	}
	for _, cache := range []interface{ flush() error }{m.indices, m.indexKeys, m.indexValues} {
		if err := cache.flush(); err != nil {
			return err
		}
	}
	for len(m.retired) > 0 {
		if err := m.retired[0].Flush(); err != nil {
			return err
		}
		m.retired = m.retired[1:]
	}
	return m.indexValues.forEach(func(_ uint32, value mapValue[V]) error {
		if child, ok := asNested(value.value); ok && value.live {
			return child.Flush()
		}
		return nil
	})
}

// Update modifies the value bound to the given key in place, keeping its
// position in the iteration order. The result is false if the key is not
// bound, in which case the update is not called. Nested maps are modified
// through their own methods; replacing them requires Insert.
func (m *IterableMap[K, V]) Update(key K, update func(value *V) error) (bool, error) {
	index, value, found, err := m.entry(m.encodeKey(key))
	if err != nil || !found {
		return false, err
	}
	if value.isMap {
		held := value.value
		return true, update(&held)
	}
	if err := update(&value.value); err != nil {
		return true, err
	}
	m.indexValues.put(index, value)
	return true, nil
}

func (m *IterableMap[K, V]) isNil() bool {
	return m == nil
}

func (m *IterableMap[K, V]) isAttached() bool {
	return m.attached
}

func (m *IterableMap[K, V]) attach(ws worldstate.WorldState, parent []byte, _ uint32, renew bool) error {
	if m.attached {
		return ErrAlreadyAttached
	}
	m.ws = ws
	m.parent = append([]byte(nil), parent...)
	m.attached = true
	m.retired = nil
	if renew {
		stored, present, err := cells.Read(ws, m.infoKey(), cells.DecodeMapInfo)
		if err != nil {
			return err
		}
		m.info.Level = 0
		if present {
			if stored.Level == math.MaxUint32 {
				return fmt.Errorf("%w: level of map", ErrCapacityExceeded)
			}
			m.info.Level = stored.Level + 1
		}
		m.infoLoaded = true
		m.infoDirty = true
	} else if m.infoLoaded && m.info != (cells.MapInfoCell{}) {
		// populated while detached
		m.infoDirty = true
	}
	return m.indexValues.forEach(func(index uint32, value mapValue[V]) error {
		if child, ok := asNested(value.value); ok && value.live {
			return child.attach(ws, m.indexValueKey(index), value.generation, false)
		}
		return nil
	})
}

func (m *IterableMap[K, V]) clear() (bool, error) {
	return true, m.Clear()
}
