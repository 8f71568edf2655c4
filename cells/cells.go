// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cells defines the records persisted in the world state on behalf of
// the storage collections, and their binary encoding.
//
// Every cell type has a fixed layout:
//
//	Cell          u32 edition | option<bytes> data
//	MapInfoCell   u32 level   | u32 sequence
//	KeyIndexCell  u32 index
//	ValueCell     bool is_map | option<bytes> data
//
// where integers are little endian, bool is a 0/1 byte and option<bytes> is
// either a single 0 byte or a 1 byte followed by a u32 length and the data.
// A cell whose data is absent is a tombstone.
package cells

import (
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// ErrCorruptCell is reported if bytes stored in the world state do not
// decode into the cell expected at their location. This indicates a layout
// mismatch or storage corruption and must abort the current invocation.
const ErrCorruptCell = common.ConstError("corrupt storage cell")

// Cell is the record stored for vector elements and fast map slots. A nil
// Data marks a tombstone.
type Cell struct {
	Edition uint32
	Data    []byte
}

// IsTombstone reports whether the cell marks a removed value.
func (c Cell) IsTombstone() bool {
	return c.Data == nil
}

// MapInfoCell is the header of an iterable map.
type MapInfoCell struct {
	Level    uint32
	Sequence uint32
}

// KeyIndexCell maps a key of an iterable map to its index.
type KeyIndexCell struct {
	Index uint32
}

// ValueCell holds a key or a value of an iterable map. A nil Data marks a
// tombstone.
type ValueCell struct {
	IsMap bool
	Data  []byte
}

// IsTombstone reports whether the cell marks a removed entry.
func (c ValueCell) IsTombstone() bool {
	return c.Data == nil
}

var optionalBytes = codec.OptionOf[[]byte](codec.Bytes{})

func appendData(dst []byte, data []byte) []byte {
	if data == nil {
		return optionalBytes.Append(dst, nil)
	}
	return optionalBytes.Append(dst, &data)
}

func readData(src []byte) ([]byte, []byte, error) {
	data, rest, err := optionalBytes.Read(src)
	if err != nil || data == nil {
		return nil, rest, err
	}
	return *data, rest, nil
}

// EncodeCell serializes a cell as u32 edition | option<bytes> data.
func EncodeCell(cell Cell) []byte {
	res := codec.Uint32.Append(make([]byte, 0, 9+len(cell.Data)), cell.Edition)
	return appendData(res, cell.Data)
}

// DecodeCell parses a cell produced by EncodeCell. Short, trailing or
// otherwise malformed input fails with ErrCorruptCell.
func DecodeCell(data []byte) (Cell, error) {
	edition, rest, err := codec.Uint32.Read(data)
	if err != nil {
		return Cell{}, corrupt("cell", err)
	}
	payload, rest, err := readData(rest)
	if err != nil {
		return Cell{}, corrupt("cell", err)
	}
	if len(rest) != 0 {
		return Cell{}, trailing("cell", rest)
	}
	return Cell{Edition: edition, Data: payload}, nil
}

// EncodeMapInfo serializes the header of an iterable map as u32 level |
// u32 sequence.
func EncodeMapInfo(info MapInfoCell) []byte {
	res := codec.Uint32.Append(make([]byte, 0, 8), info.Level)
	return codec.Uint32.Append(res, info.Sequence)
}

// DecodeMapInfo parses a map header; anything but 8 bytes is corrupt.
func DecodeMapInfo(data []byte) (MapInfoCell, error) {
	if len(data) != 8 {
		return MapInfoCell{}, fmt.Errorf("%w: map info of %d bytes", ErrCorruptCell, len(data))
	}
	level, rest, _ := codec.Uint32.Read(data)
	sequence, _, _ := codec.Uint32.Read(rest)
	return MapInfoCell{Level: level, Sequence: sequence}, nil
}

// EncodeKeyIndex serializes the index of an iterable map key as a u32.
func EncodeKeyIndex(cell KeyIndexCell) []byte {
	return codec.Uint32.Append(make([]byte, 0, 4), cell.Index)
}

// DecodeKeyIndex parses a key index; anything but 4 bytes is corrupt.
func DecodeKeyIndex(data []byte) (KeyIndexCell, error) {
	if len(data) != 4 {
		return KeyIndexCell{}, fmt.Errorf("%w: key index of %d bytes", ErrCorruptCell, len(data))
	}
	index, _, _ := codec.Uint32.Read(data)
	return KeyIndexCell{Index: index}, nil
}

// EncodeValueCell serializes a value cell as bool is_map | option<bytes>
// data.
func EncodeValueCell(cell ValueCell) []byte {
	res := codec.Bool{}.Append(make([]byte, 0, 6+len(cell.Data)), cell.IsMap)
	return appendData(res, cell.Data)
}

// DecodeValueCell parses a value cell produced by EncodeValueCell. Malformed
// input, including an is_map byte other than 0 or 1, fails with
// ErrCorruptCell.
func DecodeValueCell(data []byte) (ValueCell, error) {
	isMap, rest, err := codec.Bool{}.Read(data)
	if err != nil {
		return ValueCell{}, corrupt("value cell", err)
	}
	payload, rest, err := readData(rest)
	if err != nil {
		return ValueCell{}, corrupt("value cell", err)
	}
	if len(rest) != 0 {
		return ValueCell{}, trailing("value cell", rest)
	}
	return ValueCell{IsMap: isMap, Data: payload}, nil
}

// Read fetches and decodes the cell stored under the given key. The boolean
// result is false if the key was never written, in which case no decoding
// takes place. Tombstones are returned as present cells.
func Read[C any](ws worldstate.WorldState, key []byte, decode func([]byte) (C, error)) (C, bool, error) {
	var cell C
	data, found, err := ws.Get(key)
	if err != nil || !found {
		return cell, false, err
	}
	cell, err = decode(data)
	if err != nil {
		return cell, false, fmt.Errorf("%w at key %x", err, key)
	}
	return cell, true, nil
}

func corrupt(what string, err error) error {
	return fmt.Errorf("%w: invalid %s: %v", ErrCorruptCell, what, err)
}

func trailing(what string, rest []byte) error {
	return fmt.Errorf("%w: %d trailing bytes in %s", ErrCorruptCell, len(rest), what)
}
