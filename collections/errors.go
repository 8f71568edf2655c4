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

import "github.com/parallelchain-io/pchain-sdk/common"

const (
	// ErrIndexOutOfBounds is reported when accessing a vector beyond its length.
	ErrIndexOutOfBounds = common.ConstError("index out of bounds")
	// ErrEmptyCollection is reported when popping from an empty vector.
	ErrEmptyCollection = common.ConstError("collection is empty")
	// ErrDetached is reported when flushing a collection that was created
	// with New... and never inserted into an attached map.
	ErrDetached = common.ConstError("collection is not attached to a world state")
	// ErrAlreadyAttached is reported when inserting a collection into a map
	// that is already stored elsewhere.
	ErrAlreadyAttached = common.ConstError("collection is already attached to a world state")
	// ErrNilCollection is reported when writing a nil nested map.
	ErrNilCollection = common.ConstError("nested collection is nil")
	// ErrCapacityExceeded is reported if an edition, level, sequence or
	// length counter would overflow.
	ErrCapacityExceeded = common.ConstError("collection capacity exceeded")
)
