// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package worldstate

import (
	"encoding/binary"
	"hash"

	"github.com/parallelchain-io/pchain-sdk/common"
)

// StateHasher accumulates the bindings of a store in ascending key order into
// the hash reported by Store.GetStateHash.
type StateHasher struct {
	hasher hash.Hash
	buffer [4]byte
}

func NewStateHasher() *StateHasher {
	return &StateHasher{hasher: common.NewKeccakHasher()}
}

// Add includes a binding in the hash. Bindings must be added in ascending
// key order.
func (h *StateHasher) Add(key, value []byte) {
	h.write(key)
	h.write(value)
}

func (h *StateHasher) write(data []byte) {
	binary.LittleEndian.PutUint32(h.buffer[:], uint32(len(data)))
	h.hasher.Write(h.buffer[:])
	h.hasher.Write(data)
}

func (h *StateHasher) Sum() common.Hash {
	var res common.Hash
	h.hasher.Sum(res[:0])
	return res
}
