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

	"github.com/parallelchain-io/pchain-sdk/cells"
	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// Field is a plain, non-collection contract field. Its value is stored as
// the codec encoding under the field's path. The value is read on first
// access and written back on Flush, but only if it was modified.
// A field never written holds the zero value of T.
type Field[T any] struct {
	ws     worldstate.WorldState
	path   Path
	values codec.Codec[T]

	value  T
	loaded bool
	dirty  bool
}

func newField[T any](ws worldstate.WorldState, path Path, values codec.Codec[T]) *Field[T] {
	return &Field[T]{ws: ws, path: path, values: values}
}

func (f *Field[T]) load() error {
	if f.loaded {
		return nil
	}
	data, found, err := f.ws.Get(f.path)
	if err != nil {
		return err
	}
	if found {
		if f.value, err = codec.Decode(f.values, data); err != nil {
			return fmt.Errorf("%w: field %x: %v", cells.ErrCorruptCell, []byte(f.path), err)
		}
	}
	f.loaded = true
	return nil
}

// Get returns the current value of the field.
func (f *Field[T]) Get() (T, error) {
	if err := f.load(); err != nil {
		var zero T
		return zero, err
	}
	return f.value, nil
}

// Set replaces the value of the field. The stored value is not read.
func (f *Field[T]) Set(value T) {
	f.value = value
	f.loaded = true
	f.dirty = true
}

// Update applies the given modification to the current value.
func (f *Field[T]) Update(modify func(*T) error) error {
	if err := f.load(); err != nil {
		return err
	}
	if err := modify(&f.value); err != nil {
		return err
	}
	f.dirty = true
	return nil
}

func (f *Field[T]) Flush() error {
	if !f.dirty {
		return nil
	}
	if err := f.ws.Set(f.path, codec.Encode(f.values, f.value)); err != nil {
		return err
	}
	f.dirty = false
	return nil
}
