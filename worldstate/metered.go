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

import (
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/common"
)

// ErrOutOfGas is reported once the gas limit of a Metered world state is
// exhausted. Subsequent operations keep failing.
const ErrOutOfGas = common.ConstError("out of gas")

// Schedule defines the gas charged for world state accesses. Each access is
// charged a base cost plus a cost per byte of key and value.
type Schedule struct {
	ReadBase     uint64
	ReadPerByte  uint64
	WriteBase    uint64
	WritePerByte uint64
}

// DefaultSchedule makes writes considerably more expensive than reads.
var DefaultSchedule = Schedule{
	ReadBase:     30,
	ReadPerByte:  5,
	WriteBase:    2500,
	WritePerByte: 30,
}

// Stats summarizes the accesses observed by a Metered world state.
type Stats struct {
	Reads        int
	Writes       int
	Deletes      int
	BytesRead    int
	BytesWritten int
	GasUsed      uint64
}

// Metered is a WorldState charging gas for each access to an underlying
// world state. A limit of zero disables the limit.
type Metered struct {
	ws       WorldState
	schedule Schedule
	limit    uint64
	stats    Stats
}

func NewMetered(ws WorldState, schedule Schedule, limit uint64) *Metered {
	return &Metered{ws: ws, schedule: schedule, limit: limit}
}

func (m *Metered) charge(base, perByte uint64, size int) error {
	cost := base + perByte*uint64(size)
	m.stats.GasUsed += cost
	if m.limit > 0 && m.stats.GasUsed > m.limit {
		return fmt.Errorf("%w: used %d of %d", ErrOutOfGas, m.stats.GasUsed, m.limit)
	}
	return nil
}

func (m *Metered) Get(key []byte) ([]byte, bool, error) {
	if err := m.charge(m.schedule.ReadBase, m.schedule.ReadPerByte, len(key)); err != nil {
		return nil, false, err
	}
	value, found, err := m.ws.Get(key)
	if err != nil {
		return nil, false, err
	}
	m.stats.Reads++
	m.stats.BytesRead += len(value)
	if err := m.charge(0, m.schedule.ReadPerByte, len(value)); err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (m *Metered) Set(key []byte, value []byte) error {
	if err := m.charge(m.schedule.WriteBase, m.schedule.WritePerByte, len(key)+len(value)); err != nil {
		return err
	}
	m.stats.Writes++
	m.stats.BytesWritten += len(key) + len(value)
	return m.ws.Set(key, value)
}

func (m *Metered) Delete(key []byte) error {
	if err := m.charge(m.schedule.WriteBase, m.schedule.WritePerByte, len(key)); err != nil {
		return err
	}
	m.stats.Deletes++
	return m.ws.Delete(key)
}

// Stats returns the accesses recorded so far.
func (m *Metered) Stats() Stats {
	return m.stats
}
