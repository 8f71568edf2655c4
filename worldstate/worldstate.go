// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package worldstate defines the key/value store contract storage is kept in.
// Implementations are provided by the sub-packages memory, ldb and sqlite;
// the sub-package cache adds a read cache on top of any of them.
package worldstate

import (
	"github.com/parallelchain-io/pchain-sdk/common"
)

//go:generate mockgen -source worldstate.go -destination worldstate_mocks.go -package worldstate

// WorldState is a sparse, ordered key/value store. Absent keys and keys bound
// to a value are distinguishable; there is no notion of a default value.
// Implementations are not required to be safe for concurrent use.
type WorldState interface {
	// Get returns the value bound to the given key. The boolean result is
	// false if the key is not bound. The returned slice must not be modified.
	Get(key []byte) ([]byte, bool, error)
	// Set binds the given value to the key. Neither slice is retained.
	Set(key []byte, value []byte) error
	// Delete removes the binding of the key, if present.
	Delete(key []byte) error
}

// Store is a persistent WorldState backend.
type Store interface {
	WorldState
	common.FlushAndCloser
	// ForEach visits all bindings in ascending key order until the callback
	// returns false. Storage collections never enumerate the world state;
	// this is provided for tooling only.
	ForEach(callback func(key, value []byte) bool) error
	// GetStateHash computes a hash over the ordered content of the store.
	// Stores with equal content produce equal hashes regardless of their
	// implementation.
	GetStateHash() (common.Hash, error)
}
