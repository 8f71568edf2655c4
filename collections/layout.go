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

import "github.com/parallelchain-io/pchain-sdk/keys"

// Tags of the world state keys used by the collections, relative to the key
// of the collection.
const (
	VectorLengthTag  = keys.Tag(0)
	VectorElementTag = keys.Tag(1)

	MapInfoTag       = keys.Tag(0)
	MapKeyIndexTag   = keys.Tag(1)
	MapIndexKeyTag   = keys.Tag(2)
	MapIndexValueTag = keys.Tag(3)
)

// VectorLengthKey is the key of the u32 length of the vector at parent.
func VectorLengthKey(parent []byte) []byte {
	return keys.Derive(parent, VectorLengthTag)
}

// VectorElementKey is the key of the Cell holding element index.
func VectorElementKey(parent []byte, index uint32) []byte {
	return keys.Derive(parent, VectorElementTag, keys.Counter(index))
}

// FastMapSlotKey is the key of the Cell bound to an encoded user key in a
// fast map of the given edition.
func FastMapSlotKey(parent []byte, edition uint32, key []byte) []byte {
	return keys.Derive(parent, keys.Counter(edition), keys.UserKey(key))
}

// MapInfoKey is the key of the MapInfoCell of the iterable map at parent.
func MapInfoKey(parent []byte) []byte {
	return keys.Derive(parent, MapInfoTag)
}

// MapKeyIndexKey is the key of the KeyIndexCell of an encoded user key.
func MapKeyIndexKey(parent []byte, level uint32, key []byte) []byte {
	return keys.Derive(parent, MapKeyIndexTag, keys.Counter(level), keys.UserKey(key))
}

// MapIndexKeyKey is the key of the ValueCell holding the user key at index.
func MapIndexKeyKey(parent []byte, level, index uint32) []byte {
	return keys.Derive(parent, MapIndexKeyTag, keys.Counter(level), keys.Counter(index))
}

// MapIndexValueKey is the key of the ValueCell holding the value at index.
func MapIndexValueKey(parent []byte, level, index uint32) []byte {
	return keys.Derive(parent, MapIndexValueTag, keys.Counter(level), keys.Counter(index))
}
