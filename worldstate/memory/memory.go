// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/tidwall/btree"
	"golang.org/x/exp/slices"
)

// Store is an in-memory worldstate.Store keeping bindings in a B-tree ordered
// by key. It is mainly intended for tests and short-lived simulations.
type Store struct {
	data *btree.Map[string, []byte]
}

// degree of the B-tree nodes
const degree = 32

func NewStore() *Store {
	return &Store{data: btree.NewMap[string, []byte](degree)}
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	value, found := s.data.Get(string(key))
	return value, found, nil
}

func (s *Store) Set(key []byte, value []byte) error {
	s.data.Set(string(key), slices.Clone(value))
	return nil
}

func (s *Store) Delete(key []byte) error {
	s.data.Delete(string(key))
	return nil
}

func (s *Store) ForEach(callback func(key, value []byte) bool) error {
	s.data.Scan(func(key string, value []byte) bool {
		return callback([]byte(key), value)
	})
	return nil
}

// Len returns the number of bindings in the store.
func (s *Store) Len() int {
	return s.data.Len()
}

func (s *Store) GetStateHash() (common.Hash, error) {
	hasher := worldstate.NewStateHasher()
	s.data.Scan(func(key string, value []byte) bool {
		hasher.Add([]byte(key), value)
		return true
	})
	return hasher.Sum(), nil
}

func (s *Store) Flush() error {
	return nil // nothing to flush for an in-memory store
}

func (s *Store) Close() error {
	return nil
}

var _ worldstate.Store = (*Store)(nil)
