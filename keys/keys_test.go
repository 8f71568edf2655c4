// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package keys

import (
	"bytes"
	"testing"

	"github.com/parallelchain-io/pchain-sdk/codec"
)

func TestDerive_ProducesConcatenatedLayout(t *testing.T) {
	parent := []byte{0xAA, 0xBB}
	tests := map[string]struct {
		got  []byte
		want []byte
	}{
		"no components":    {Derive(parent), []byte{0xAA, 0xBB}},
		"vector length":    {Derive(parent, Tag(0)), []byte{0xAA, 0xBB, 0}},
		"vector element":   {Derive(parent, Tag(1), Counter(2)), []byte{0xAA, 0xBB, 1, 2, 0, 0, 0}},
		"fast map slot":    {Derive(parent, Counter(1), UserKey{7}), []byte{0xAA, 0xBB, 1, 0, 0, 0, 7}},
		"map key index":    {Derive(parent, Tag(1), Counter(0), UserKey{5, 6}), []byte{0xAA, 0xBB, 1, 0, 0, 0, 0, 5, 6}},
		"map index value":  {Derive(parent, Tag(3), Counter(0x0100), Counter(1)), []byte{0xAA, 0xBB, 3, 0, 1, 0, 0, 1, 0, 0, 0}},
		"empty parent tag": {Derive(nil, Tag(9)), []byte{9}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if !bytes.Equal(test.got, test.want) {
				t.Errorf("unexpected key, wanted %x, got %x", test.want, test.got)
			}
		})
	}
}

func TestDerive_DoesNotModifyParent(t *testing.T) {
	parent := make([]byte, 2, 16)
	a := Derive(parent, Tag(1))
	b := Derive(parent, Tag(2))
	if a[2] != 1 || b[2] != 2 {
		t.Errorf("derived keys share memory: %x, %x", a, b)
	}
	if len(parent) != 2 {
		t.Errorf("parent was modified")
	}
}

func TestDerive_DistinctCoordinatesProduceDistinctKeys(t *testing.T) {
	parent := []byte{1}
	seen := map[string]string{}
	add := func(name string, key []byte) {
		if other, found := seen[string(key)]; found {
			t.Errorf("key collision between %s and %s: %x", name, other, key)
		}
		seen[string(key)] = name
	}
	strKey := func(s string) UserKey { return UserKey(codec.Encode[string](codec.String{}, s)) }
	for tag := 0; tag < 4; tag++ {
		for level := 0; level < 3; level++ {
			add("tag/level", Derive(parent, Tag(tag), Counter(level)))
			for _, k := range []string{"", "a", "ab", "b", "a\x00"} {
				add("tag/level/key "+k, Derive(parent, Tag(tag), Counter(level), strKey(k)))
			}
		}
	}
}
