// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/collections"
	"github.com/parallelchain-io/pchain-sdk/worldstate/memory"
)

func TestWriteVector_PrintsCells(t *testing.T) {
	ws := memory.NewStore()
	vector := collections.OpenVector[uint8](ws, []byte{7}, codec.Uint8)
	vector.Push(0xAA)
	vector.Push(0xBB)
	vector.Flush()

	out := &bytes.Buffer{}
	if err := writeVector(out, ws, []byte{7}); err != nil {
		t.Fatalf("failed to print vector: %v", err)
	}
	want := "length: 2\n0: edition 1, data aa\n1: edition 1, data bb\n"
	if out.String() != want {
		t.Errorf("unexpected output, wanted\n%s\ngot\n%s", want, out.String())
	}
}

func TestWriteIterableMap_SkipsRemovedEntries(t *testing.T) {
	ws := memory.NewStore()
	m := collections.OpenIterableMap[uint8, uint8](ws, nil, codec.Uint8, codec.Uint8)
	m.Insert(1, 0x10)
	m.Insert(2, 0x20)
	m.Remove(1)
	m.Flush()

	out := &bytes.Buffer{}
	if err := writeIterableMap(out, ws, nil); err != nil {
		t.Fatalf("failed to print map: %v", err)
	}
	want := "level: 0, sequence: 2\n2: key 02, value 20\n"
	if out.String() != want {
		t.Errorf("unexpected output, wanted\n%s\ngot\n%s", want, out.String())
	}
}

func TestDumpEntries_FiltersByPrefix(t *testing.T) {
	ws := memory.NewStore()
	ws.Set([]byte{1, 2}, []byte{3})
	ws.Set([]byte{2, 2}, []byte{4})

	out := &bytes.Buffer{}
	if err := dumpEntries(out, ws, []byte{1}); err != nil {
		t.Fatalf("failed to dump: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "0102: 03" {
		t.Errorf("unexpected output: %q", got)
	}
}
