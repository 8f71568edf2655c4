// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divides a LevelDB instance into spaces by prefixing all keys.
type TableSpace byte

const (
	// WorldStateKey is the table space of contract storage.
	WorldStateKey TableSpace = 'W'
)

// ToDBKey prepends the table space prefix to the given key.
func (t TableSpace) ToDBKey(key []byte) []byte {
	res := make([]byte, 0, len(key)+1)
	res = append(res, byte(t))
	return append(res, key...)
}

// Store is a worldstate.Store backed by LevelDB. All keys are placed in a
// single table space of the database.
type Store struct {
	db    *leveldb.DB
	table TableSpace
	owned bool
}

// OpenStore opens or creates a LevelDB database in the given directory.
// The database is closed when the store is closed.
func OpenStore(directory string) (*Store, error) {
	db, err := leveldb.OpenFile(directory, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", directory, err)
	}
	return &Store{db: db, table: WorldStateKey, owned: true}, nil
}

// NewStore creates a store on an existing database using the given table
// space. The database remains owned by the caller.
func NewStore(db *leveldb.DB, table TableSpace) *Store {
	return &Store{db: db, table: table}
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	value, err := s.db.Get(s.table.ToDBKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Set(key []byte, value []byte) error {
	return s.db.Put(s.table.ToDBKey(key), value, nil)
}

func (s *Store) Delete(key []byte) error {
	return s.db.Delete(s.table.ToDBKey(key), nil)
}

func (s *Store) ForEach(callback func(key, value []byte) bool) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(s.table)}), nil)
	defer iter.Release()
	for iter.Next() {
		// strip the table space
		if !callback(iter.Key()[1:], iter.Value()) {
			break
		}
	}
	return iter.Error()
}

func (s *Store) GetStateHash() (common.Hash, error) {
	hasher := worldstate.NewStateHasher()
	err := s.ForEach(func(key, value []byte) bool {
		hasher.Add(key, value)
		return true
	})
	if err != nil {
		return common.Hash{}, err
	}
	return hasher.Sum(), nil
}

func (s *Store) Flush() error {
	return nil // writes go straight to the LevelDB journal
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

var _ worldstate.Store = (*Store)(nil)
