// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"fmt"

	"github.com/dolthub/maphash"
	"github.com/elastic/go-freelru"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/pbnjay/memory"
)

const (
	// estimated memory used per cached binding, including keys and overhead
	bytesPerEntry = 256
	minCapacity   = 1 << 10
	maxCapacity   = 1 << 22
)

// DefaultCapacity derives a cache capacity from the memory of the host,
// granting the cache about 1/64 of the total memory.
func DefaultCapacity() uint32 {
	capacity := memory.TotalMemory() / 64 / bytesPerEntry
	if capacity < minCapacity {
		return minCapacity
	}
	if capacity > maxCapacity {
		return maxCapacity
	}
	return uint32(capacity)
}

// Store wraps a worldstate.Store by an LRU cache of recently accessed
// bindings. Misses are cached as well, such that repeated lookups of absent
// keys do not reach the underlying store. Writes are passed through.
type Store struct {
	store  worldstate.Store
	cache  *freelru.LRU[string, entry]
	hits   uint64
	misses uint64
}

type entry struct {
	value []byte
	found bool
}

// NewStore creates a cached view on the given store. A capacity of zero
// selects DefaultCapacity.
func NewStore(store worldstate.Store, capacity uint32) (*Store, error) {
	if capacity == 0 {
		capacity = DefaultCapacity()
	}
	hasher := maphash.NewHasher[string]()
	cache, err := freelru.New[string, entry](capacity, func(key string) uint32 {
		return uint32(hasher.Hash(key))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache of capacity %d: %w", capacity, err)
	}
	return &Store{store: store, cache: cache}, nil
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	if cached, found := s.cache.Get(string(key)); found {
		s.hits++
		return cached.value, cached.found, nil
	}
	s.misses++
	value, found, err := s.store.Get(key)
	if err != nil {
		return nil, false, err
	}
	s.cache.Add(string(key), entry{value: value, found: found})
	return value, found, nil
}

func (s *Store) Set(key []byte, value []byte) error {
	if err := s.store.Set(key, value); err != nil {
		s.cache.Remove(string(key))
		return err
	}
	s.cache.Add(string(key), entry{value: append([]byte{}, value...), found: true})
	return nil
}

func (s *Store) Delete(key []byte) error {
	if err := s.store.Delete(key); err != nil {
		s.cache.Remove(string(key))
		return err
	}
	s.cache.Add(string(key), entry{})
	return nil
}

func (s *Store) ForEach(callback func(key, value []byte) bool) error {
	return s.store.ForEach(callback)
}

func (s *Store) GetStateHash() (common.Hash, error) {
	return s.store.GetStateHash()
}

func (s *Store) Flush() error {
	return s.store.Flush()
}

func (s *Store) Close() error {
	s.cache.Purge()
	return s.store.Close()
}

// Stats returns the number of cache hits and misses observed by Get.
func (s *Store) Stats() (hits, misses uint64) {
	return s.hits, s.misses
}

var _ worldstate.Store = (*Store)(nil)
