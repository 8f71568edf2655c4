// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package contract

import (
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/collections"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// Storage is the storage context of a single invocation. It binds the
// fields of a contract to the world state and keeps track of them, so all
// modifications of the invocation are written by a single Flush.
//
// Each path is bound at most once: opening a path again returns the instance
// opened first, sharing its unflushed modifications. Opening a path with a
// different field type panics, since both would claim the same keys.
//
// A Storage and everything opened through it must not outlive the
// invocation it was created for.
type Storage struct {
	ws     worldstate.WorldState
	fields []common.Flusher
	byPath map[string]common.Flusher
}

func NewStorage(ws worldstate.WorldState) *Storage {
	return &Storage{ws: ws, byPath: map[string]common.Flusher{}}
}

// WorldState returns the world state the storage is bound to.
func (s *Storage) WorldState() worldstate.WorldState {
	return s.ws
}

// Flush writes the modifications of all fields opened so far, in the order
// in which they were opened.
func (s *Storage) Flush() error {
	for _, field := range s.fields {
		if err := field.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// bind returns the field opened at the given path, creating it on first use.
func bind[F common.Flusher](s *Storage, path Path, create func() F) F {
	if existing, found := s.byPath[string(path)]; found {
		res, ok := existing.(F)
		if !ok {
			panic(fmt.Sprintf("field at path %x opened as %T and as %T", []byte(path), existing, res))
		}
		return res
	}
	res := create()
	if s.byPath == nil {
		s.byPath = map[string]common.Flusher{}
	}
	s.byPath[string(path)] = res
	s.fields = append(s.fields, res)
	return res
}

// OpenField binds a plain field at the given path.
func OpenField[T any](s *Storage, path Path, values codec.Codec[T]) *Field[T] {
	return bind(s, path, func() *Field[T] {
		return newField(s.ws, path, values)
	})
}

// OpenVector binds a vector at the given path.
func OpenVector[T any](s *Storage, path Path, values codec.Codec[T]) *collections.Vector[T] {
	return bind(s, path, func() *collections.Vector[T] {
		return collections.OpenVector(s.ws, path, values)
	})
}

// OpenFastMap binds a fast map at the given path.
func OpenFastMap[K, V any](s *Storage, path Path, keys codec.Codec[K], values codec.Codec[V]) *collections.FastMap[K, V] {
	return bind(s, path, func() *collections.FastMap[K, V] {
		return collections.OpenFastMap(s.ws, path, keys, values)
	})
}

// OpenIterableMap binds an iterable map at the given path.
func OpenIterableMap[K, V any](s *Storage, path Path, keys codec.Codec[K], values codec.Codec[V]) *collections.IterableMap[K, V] {
	return bind(s, path, func() *collections.IterableMap[K, V] {
		return collections.OpenIterableMap(s.ws, path, keys, values)
	})
}
