// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package worldstate

// WithPrefix provides a view on a world state in which every key is implicitly
// prefixed by the given bytes. It is used to keep the storage of different
// accounts apart within a single store.
func WithPrefix(ws WorldState, prefix []byte) WorldState {
	return &prefixed{
		ws:     ws,
		prefix: append([]byte(nil), prefix...),
	}
}

type prefixed struct {
	ws     WorldState
	prefix []byte
}

func (p *prefixed) key(key []byte) []byte {
	res := make([]byte, 0, len(p.prefix)+len(key))
	res = append(res, p.prefix...)
	return append(res, key...)
}

func (p *prefixed) Get(key []byte) ([]byte, bool, error) {
	return p.ws.Get(p.key(key))
}

func (p *prefixed) Set(key []byte, value []byte) error {
	return p.ws.Set(p.key(key), value)
}

func (p *prefixed) Delete(key []byte) error {
	return p.ws.Delete(p.key(key))
}
