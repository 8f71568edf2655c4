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
	"unicode/utf8"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Integer encodes fixed-width integers in little endian byte order.
type Integer[T constraints.Integer] struct{}

var (
	Uint8  = Integer[uint8]{}
	Uint16 = Integer[uint16]{}
	Uint32 = Integer[uint32]{}
	Uint64 = Integer[uint64]{}
	Int32  = Integer[int32]{}
	Int64  = Integer[int64]{}
)

func (Integer[T]) Append(dst []byte, value T) []byte {
	size := int(unsafe.Sizeof(value))
	u := uint64(value)
	for i := 0; i < size; i++ {
		dst = append(dst, byte(u>>(8*i)))
	}
	return dst
}

func (Integer[T]) Read(src []byte) (T, []byte, error) {
	var value T
	size := int(unsafe.Sizeof(value))
	if len(src) < size {
		return value, src, errShort(size, len(src))
	}
	var u uint64
	for i := 0; i < size; i++ {
		u |= uint64(src[i]) << (8 * i)
	}
	return T(u), src[size:], nil
}

// Bool encodes booleans as a single 0 or 1 byte.
type Bool struct{}

func (Bool) Append(dst []byte, value bool) []byte {
	if value {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func (Bool) Read(src []byte) (bool, []byte, error) {
	if len(src) < 1 {
		return false, src, errShort(1, 0)
	}
	switch src[0] {
	case 0:
		return false, src[1:], nil
	case 1:
		return true, src[1:], nil
	}
	return false, src, fmt.Errorf("%w: invalid bool value %d", ErrMalformed, src[0])
}

// Bytes encodes byte slices with a u32 length prefix.
type Bytes struct{}

func (Bytes) Append(dst []byte, value []byte) []byte {
	dst = Uint32.Append(dst, uint32(len(value)))
	return append(dst, value...)
}

func (Bytes) Read(src []byte) ([]byte, []byte, error) {
	size, rest, err := Uint32.Read(src)
	if err != nil {
		return nil, src, err
	}
	if uint64(len(rest)) < uint64(size) {
		return nil, src, errShort(int(size), len(rest))
	}
	res := make([]byte, size)
	copy(res, rest)
	return res, rest[size:], nil
}

// String encodes UTF-8 strings with a u32 length prefix.
type String struct{}

func (String) Append(dst []byte, value string) []byte {
	dst = Uint32.Append(dst, uint32(len(value)))
	return append(dst, value...)
}

func (String) Read(src []byte) (string, []byte, error) {
	data, rest, err := Bytes{}.Read(src)
	if err != nil {
		return "", src, err
	}
	if !utf8.Valid(data) {
		return "", src, fmt.Errorf("%w: invalid UTF-8 string", ErrMalformed)
	}
	return string(data), rest, nil
}

// Address is a 32-byte account address, encoded without length prefix.
type Address [32]byte

// AddressCodec encodes addresses as their raw 32 bytes.
type AddressCodec struct{}

func (AddressCodec) Append(dst []byte, value Address) []byte {
	return append(dst, value[:]...)
}

func (AddressCodec) Read(src []byte) (Address, []byte, error) {
	var res Address
	if len(src) < len(res) {
		return res, src, errShort(len(res), len(src))
	}
	copy(res[:], src)
	return res, src[len(res):], nil
}
