// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package codec provides the binary encodings of the keys and values kept in
// contract storage. Encodings are compatible with the Borsh format: integers
// are little endian, variable sized data is prefixed by a u32 length. All
// encodings are self-delimiting, which allows encoded keys to be appended to
// other key components without introducing ambiguities.
package codec

import (
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/common"
)

// ErrMalformed is reported when decoding input that is not a valid encoding.
const ErrMalformed = common.ConstError("malformed encoding")

// Codec converts values of type V to and from their binary representation.
type Codec[V any] interface {
	// Append appends the encoding of the given value to dst and returns the
	// extended slice.
	Append(dst []byte, value V) []byte
	// Read decodes a value from the front of src. It returns the value and
	// the remaining, unconsumed part of src.
	Read(src []byte) (V, []byte, error)
}

// Encode produces the encoding of a single value.
func Encode[V any](codec Codec[V], value V) []byte {
	return codec.Append(nil, value)
}

// Decode decodes a value which has to span the full input.
func Decode[V any](codec Codec[V], data []byte) (V, error) {
	value, rest, err := codec.Read(data)
	if err != nil {
		return value, err
	}
	if len(rest) != 0 {
		var zero V
		return zero, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(rest))
	}
	return value, nil
}

func errShort(want, got int) error {
	return fmt.Errorf("%w: need %d bytes, got %d", ErrMalformed, want, got)
}
