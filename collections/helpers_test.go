// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package collections

import (
	"bytes"
	"testing"

	"github.com/parallelchain-io/pchain-sdk/cells"
	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

var testParent = []byte{0xC0, 0xDE}

func str(s string) []byte {
	return codec.Encode[string](codec.String{}, s)
}

func u32(v uint32) []byte {
	return codec.Encode[uint32](codec.Uint32, v)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func flush(t *testing.T, collection interface{ Flush() error }) {
	t.Helper()
	if err := collection.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}
}

func readCell(t *testing.T, ws worldstate.WorldState, key []byte) cells.Cell {
	t.Helper()
	cell, present, err := cells.Read(ws, key, cells.DecodeCell)
	if err != nil || !present {
		t.Fatalf("no cell at %x: %t, %v", key, present, err)
	}
	return cell
}

func readValueCell(t *testing.T, ws worldstate.WorldState, key []byte) cells.ValueCell {
	t.Helper()
	cell, present, err := cells.Read(ws, key, cells.DecodeValueCell)
	if err != nil || !present {
		t.Fatalf("no value cell at %x: %t, %v", key, present, err)
	}
	return cell
}

func readMapInfo(t *testing.T, ws worldstate.WorldState, key []byte) cells.MapInfoCell {
	t.Helper()
	cell, present, err := cells.Read(ws, key, cells.DecodeMapInfo)
	if err != nil || !present {
		t.Fatalf("no map info at %x: %t, %v", key, present, err)
	}
	return cell
}

func collect[T any](t *testing.T, iter *Iterator[T]) []T {
	t.Helper()
	var res []T
	for iter.Next() {
		res = append(res, iter.Value())
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	return res
}
