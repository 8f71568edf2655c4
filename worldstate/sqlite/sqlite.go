// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536", // abs(N*1024) = 64MB
	}
)

const (
	kCreateStateTable = "CREATE TABLE IF NOT EXISTS state (key BLOB PRIMARY KEY, value BLOB NOT NULL) WITHOUT ROWID"
	kGetValueStmt     = "SELECT value FROM state WHERE key = ?"
	kSetValueStmt     = "INSERT INTO state(key, value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	kDeleteValueStmt  = "DELETE FROM state WHERE key = ?"
	kListValuesStmt   = "SELECT key, value FROM state ORDER BY key"
)

// Store is a worldstate.Store keeping all bindings in a single SQLite table.
// Keys are compared as BLOBs, which matches the byte-wise order of the other
// store implementations.
type Store struct {
	db         *sql.DB
	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	deleteStmt *sql.Stmt
}

// OpenStore opens or creates the SQLite database in the given file.
func OpenStore(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+file)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %w", err)
	}
	// a single connection keeps the store consistent for its single user
	db.SetMaxOpenConns(1)
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to configure connection with %s; %w", cmd, err), db.Close())
		}
	}
	if _, err := db.Exec(kCreateStateTable); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create state table; %w", err), db.Close())
	}

	store := &Store{db: db}
	for _, cur := range []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&store.getStmt, kGetValueStmt},
		{&store.setStmt, kSetValueStmt},
		{&store.deleteStmt, kDeleteValueStmt},
	} {
		if *cur.stmt, err = db.Prepare(cur.query); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to prepare statement %s; %w", cur.query, err), store.Close())
		}
	}
	return store, nil
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := s.getStmt.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Store) Set(key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.setStmt.Exec(key, value)
	return err
}

func (s *Store) Delete(key []byte) error {
	_, err := s.deleteStmt.Exec(key)
	return err
}

// ForEach holds the only connection of the store while iterating; the
// callback must not access the store.
func (s *Store) ForEach(callback func(key, value []byte) bool) error {
	rows, err := s.db.Query(kListValuesStmt)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !callback(key, value) {
			break
		}
	}
	return rows.Err()
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
	_, err := s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
	return err
}

func (s *Store) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.getStmt, s.setStmt, s.deleteStmt} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

var _ worldstate.Store = (*Store)(nil)
