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

// Path is the world state key of a contract field. Fields of a contract are
// numbered in declaration order; nested fields extend the path of their
// enclosing field by one byte. Collections use the path as parent key.
type Path []byte

// Root is the path of the contract itself.
var Root = Path{}

// Child returns the path of the i-th field below p. The result never
// shares memory with p.
func (p Path) Child(i byte) Path {
	res := make(Path, len(p), len(p)+1)
	copy(res, p)
	return append(res, i)
}
