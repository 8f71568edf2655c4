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

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// Maps and vectors may hold maps as values. The slot of such a value stores a
// reference consisting of a kind byte and a u32 generation; the content of
// the nested map lives under keys derived from the key of the slot.
const (
	kindFastMap     byte = 'F'
	kindIterableMap byte = 'I'
)

// nested is implemented by the collections which may be held as map values.
type nested interface {
	common.Flusher
	isNil() bool
	isAttached() bool
	// attach binds a detached collection to the world state. The parent is
	// the key of the slot holding the collection, the generation tells
	// apart successive collections stored in the same slot. If renew is set,
	// content stored under the parent by an earlier collection must become
	// unreachable.
	attach(ws worldstate.WorldState, parent []byte, generation uint32, renew bool) error
	// clear makes the current content of the collection unreachable. The
	// boolean result reports whether this left modifications to be flushed.
	clear() (bool, error)
}

// nestedCodec is implemented by the codecs of nested collections.
type nestedCodec interface {
	nestedKind() byte
}

func asNested(value any) (nested, bool) {
	res, ok := value.(nested)
	return res, ok
}

// nestedValue checks a value written into a collection. The boolean result
// reports whether it is a nested map; nil maps are rejected.
func nestedValue(value any) (nested, bool, error) {
	child, ok := asNested(value)
	if !ok {
		return nil, false, nil
	}
	if child.isNil() {
		return nil, false, ErrNilCollection
	}
	return child, true, nil
}

func isNestedCodec(c any) bool {
	_, ok := c.(nestedCodec)
	return ok
}

func appendRef(dst []byte, kind byte, generation uint32) []byte {
	return codec.Uint32.Append(append(dst, kind), generation)
}

func readRef(src []byte, kind byte) (uint32, []byte, error) {
	if len(src) < 1 {
		return 0, src, fmt.Errorf("%w: missing collection reference", codec.ErrMalformed)
	}
	if src[0] != kind {
		return 0, src, fmt.Errorf("%w: expected collection of kind %q, found %q", codec.ErrMalformed, kind, src[0])
	}
	return codec.Uint32.Read(src[1:])
}

type fastMapCodec[K, V any] struct {
	keys   codec.Codec[K]
	values codec.Codec[V]
}

// FastMapOf provides the codec for map values that are fast maps with the
// given key and value codecs. Decoded maps are bound by the map holding
// them; new nested maps are created with NewFastMap.
func FastMapOf[K, V any](keys codec.Codec[K], values codec.Codec[V]) codec.Codec[*FastMap[K, V]] {
	return fastMapCodec[K, V]{keys: keys, values: values}
}

func (c fastMapCodec[K, V]) Append(dst []byte, value *FastMap[K, V]) []byte {
	return appendRef(dst, kindFastMap, value.edition)
}

func (c fastMapCodec[K, V]) Read(src []byte) (*FastMap[K, V], []byte, error) {
	generation, rest, err := readRef(src, kindFastMap)
	if err != nil {
		return nil, src, err
	}
	res := NewFastMap[K, V](c.keys, c.values)
	res.edition = generation
	return res, rest, nil
}

func (fastMapCodec[K, V]) nestedKind() byte {
	return kindFastMap
}

type iterableMapCodec[K, V any] struct {
	keys   codec.Codec[K]
	values codec.Codec[V]
}

// IterableMapOf provides the codec for map values that are iterable maps
// with the given key and value codecs. New nested maps are created with
// NewIterableMap.
func IterableMapOf[K, V any](keys codec.Codec[K], values codec.Codec[V]) codec.Codec[*IterableMap[K, V]] {
	return iterableMapCodec[K, V]{keys: keys, values: values}
}

func (c iterableMapCodec[K, V]) Append(dst []byte, _ *IterableMap[K, V]) []byte {
	return appendRef(dst, kindIterableMap, 0)
}

func (c iterableMapCodec[K, V]) Read(src []byte) (*IterableMap[K, V], []byte, error) {
	_, rest, err := readRef(src, kindIterableMap)
	if err != nil {
		return nil, src, err
	}
	return NewIterableMap[K, V](c.keys, c.values), rest, nil
}

func (iterableMapCodec[K, V]) nestedKind() byte {
	return kindIterableMap
}
