// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package keys derives the world state keys of collection entries from the
// key of the owning collection and the logical coordinates of the entry.
package keys

import "encoding/binary"

// Component is a part of a derived key.
type Component interface {
	appendTo(dst []byte) []byte
}

// Tag identifies a sub-structure of a collection (e.g. the length or the
// elements of a vector). It is encoded as a single byte.
type Tag byte

// Counter is an edition, level or index, encoded as 4 little endian bytes.
type Counter uint32

// UserKey is an encoded user key. It must be produced by a self-delimiting
// encoding (see package codec) to keep derived keys unambiguous.
type UserKey []byte

func (t Tag) appendTo(dst []byte) []byte {
	return append(dst, byte(t))
}

func (c Counter) appendTo(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(c))
}

func (k UserKey) appendTo(dst []byte) []byte {
	return append(dst, k...)
}

// Derive computes the world state key of an entry by appending the given
// components to the parent key. The result is a fresh slice; the parent is
// never modified.
func Derive(parent []byte, components ...Component) []byte {
	size := len(parent)
	for _, cur := range components {
		switch c := cur.(type) {
		case Tag:
			size++
		case Counter:
			size += 4
		case UserKey:
			size += len(c)
		}
	}
	res := make([]byte, 0, size)
	res = append(res, parent...)
	for _, cur := range components {
		res = cur.appendTo(res)
	}
	return res
}
