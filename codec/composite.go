// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package codec

import (
	"fmt"

	"github.com/holiman/uint256"
)

// U256 encodes 256-bit unsigned integers as 32 bytes in little endian order.
// A nil value is encoded as zero.
type U256 struct{}

func (U256) Append(dst []byte, value *uint256.Int) []byte {
	var be [32]byte
	if value != nil {
		be = value.Bytes32()
	}
	for i := len(be) - 1; i >= 0; i-- {
		dst = append(dst, be[i])
	}
	return dst
}

func (U256) Read(src []byte) (*uint256.Int, []byte, error) {
	if len(src) < 32 {
		return nil, src, errShort(32, len(src))
	}
	var be [32]byte
	for i := range be {
		be[i] = src[31-i]
	}
	return new(uint256.Int).SetBytes32(be[:]), src[32:], nil
}

// Option encodes optional values, represented by pointers, using a 0 (none)
// or 1 (some) tag followed by the encoded value.
type Option[V any] struct {
	Inner Codec[V]
}

func OptionOf[V any](inner Codec[V]) Option[V] {
	return Option[V]{Inner: inner}
}

func (c Option[V]) Append(dst []byte, value *V) []byte {
	if value == nil {
		return append(dst, 0)
	}
	return c.Inner.Append(append(dst, 1), *value)
}

func (c Option[V]) Read(src []byte) (*V, []byte, error) {
	if len(src) < 1 {
		return nil, src, errShort(1, 0)
	}
	switch src[0] {
	case 0:
		return nil, src[1:], nil
	case 1:
		value, rest, err := c.Inner.Read(src[1:])
		if err != nil {
			return nil, src, err
		}
		return &value, rest, nil
	}
	return nil, src, fmt.Errorf("%w: invalid option tag %d", ErrMalformed, src[0])
}

// Slice encodes sequences as a u32 element count followed by the elements.
type Slice[V any] struct {
	Elem Codec[V]
}

func SliceOf[V any](elem Codec[V]) Slice[V] {
	return Slice[V]{Elem: elem}
}

func (c Slice[V]) Append(dst []byte, values []V) []byte {
	dst = Uint32.Append(dst, uint32(len(values)))
	for _, value := range values {
		dst = c.Elem.Append(dst, value)
	}
	return dst
}

func (c Slice[V]) Read(src []byte) ([]V, []byte, error) {
	count, rest, err := Uint32.Read(src)
	if err != nil {
		return nil, src, err
	}
	// every element occupies at least one byte
	if uint64(count) > uint64(len(rest)) {
		return nil, src, fmt.Errorf("%w: %d elements announced, only %d bytes left", ErrMalformed, count, len(rest))
	}
	res := make([]V, 0, count)
	for i := uint32(0); i < count; i++ {
		var value V
		value, rest, err = c.Elem.Read(rest)
		if err != nil {
			return nil, src, err
		}
		res = append(res, value)
	}
	return res, rest, nil
}
