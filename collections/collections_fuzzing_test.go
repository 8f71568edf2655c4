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
	"errors"
	"fmt"
	"testing"

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/worldstate/memory"
	"golang.org/x/exp/slices"
)

// These fuzzers run random operation sequences against the collections and
// a shadow structure mimicking the same operations. After every operation
// the content of the collection is compared to the shadow structure. Flush
// operations reopen the collection, so later operations observe the
// persisted state.

const (
	opInsert byte = iota
	opRemove
	opGet
	opClear
	opFlush
	numOps
)

// orderedShadow mimics an iterable map: keys in insertion order.
type orderedShadow struct {
	keys   []uint8
	values map[uint8]uint32
}

func (s *orderedShadow) insert(key uint8, value uint32) {
	if _, found := s.values[key]; !found {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *orderedShadow) remove(key uint8) {
	if _, found := s.values[key]; found {
		delete(s.values, key)
		pos := slices.Index(s.keys, key)
		s.keys = slices.Delete(s.keys, pos, pos+1)
	}
}

func FuzzIterableMap_RandomOps(f *testing.F) {
	f.Add([]byte{opInsert, 1, opInsert, 2, opRemove, 1, opInsert, 1, opFlush, 0})
	f.Add([]byte{opInsert, 1, opFlush, 0, opClear, 0, opGet, 1, opInsert, 3})
	f.Add([]byte{opInsert, 1, opRemove, 1, opFlush, 0, opInsert, 1, opGet, 1})

	f.Fuzz(func(t *testing.T, ops []byte) {
		ws := memory.NewStore()
		open := func() *IterableMap[uint8, uint32] {
			return OpenIterableMap[uint8, uint32](ws, testParent, codec.Uint8, codec.Uint32)
		}
		m := open()
		shadow := &orderedShadow{values: map[uint8]uint32{}}

		for i := 0; i+1 < len(ops); i += 2 {
			key := ops[i+1] % 8
			switch ops[i] % numOps {
			case opInsert:
				if err := m.Insert(key, uint32(i)); err != nil {
					t.Fatalf("failed to insert: %v", err)
				}
				shadow.insert(key, uint32(i))
			case opRemove:
				_, want := shadow.values[key]
				if removed, err := m.Remove(key); err != nil || removed != want {
					t.Fatalf("unexpected removal of %d: %t, %v", key, removed, err)
				}
				shadow.remove(key)
			case opGet:
				want, wantFound := shadow.values[key]
				if got, found, err := m.Get(key); err != nil || found != wantFound || got != want {
					t.Fatalf("unexpected value of %d: %d, %t, %v", key, got, found, err)
				}
			case opClear:
				if err := m.Clear(); err != nil {
					t.Fatalf("failed to clear: %v", err)
				}
				shadow = &orderedShadow{values: map[uint8]uint32{}}
			case opFlush:
				flush(t, m)
				m = open()
			}

			var keys []uint8
			var values []uint32
			err := m.ForEach(func(key uint8, value uint32) error {
				keys = append(keys, key)
				values = append(values, value)
				return nil
			})
			if err != nil {
				t.Fatalf("failed to iterate: %v", err)
			}
			if !slices.Equal(keys, shadow.keys) {
				t.Fatalf("unexpected keys, wanted %v, got %v", shadow.keys, keys)
			}
			for j, key := range keys {
				if values[j] != shadow.values[key] {
					t.Fatalf("unexpected value of %d, wanted %d, got %d", key, shadow.values[key], values[j])
				}
			}
		}
	})
}

func FuzzVector_RandomOps(f *testing.F) {
	f.Add([]byte{opInsert, 1, opInsert, 2, opRemove, 0, opFlush, 0, opInsert, 3})
	f.Add([]byte{opRemove, 0, opInsert, 1, opGet, 0, opFlush, 0, opClear, 5})

	f.Fuzz(func(t *testing.T, ops []byte) {
		ws := memory.NewStore()
		open := func() *Vector[uint32] {
			return OpenVector[uint32](ws, testParent, codec.Uint32)
		}
		v := open()
		var shadow []uint32

		for i := 0; i+1 < len(ops); i += 2 {
			arg := uint32(ops[i+1])
			switch ops[i] % numOps {
			case opInsert:
				if err := v.Push(arg); err != nil {
					t.Fatalf("failed to push: %v", err)
				}
				shadow = append(shadow, arg)
			case opRemove:
				err := v.Pop()
				if len(shadow) == 0 {
					if !errors.Is(err, ErrEmptyCollection) {
						t.Fatalf("expected empty collection, got %v", err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("failed to pop: %v", err)
				}
				shadow = shadow[:len(shadow)-1]
			case opGet:
				if len(shadow) == 0 {
					continue
				}
				index := arg % uint32(len(shadow))
				if got, err := v.Get(index); err != nil || got != shadow[index] {
					t.Fatalf("unexpected element %d: %d, %v", index, got, err)
				}
			case opClear:
				if len(shadow) == 0 {
					continue
				}
				index := arg % uint32(len(shadow))
				if err := v.Set(index, arg+1000); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				shadow[index] = arg + 1000
			case opFlush:
				flush(t, v)
				v = open()
			}

			if got := fmt.Sprint(collect(t, v.Iterator())); got != fmt.Sprint(shadow) {
				t.Fatalf("unexpected elements, wanted %v, got %v", shadow, got)
			}
		}
	})
}
