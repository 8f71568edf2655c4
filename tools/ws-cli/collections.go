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
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/parallelchain-io/pchain-sdk/cells"
	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/collections"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/urfave/cli/v2"
)

var vectorCommand = cli.Command{
	Action: printVector,
	Name:   "vector",
	Usage:  "prints the length and elements of a vector",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&variantFlag,
		&parentFlag,
	},
}

var mapCommand = cli.Command{
	Action: printMap,
	Name:   "map",
	Usage:  "prints the info and entries of an iterable map",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&variantFlag,
		&parentFlag,
	},
}

func parseHex(s string) ([]byte, error) {
	res, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return res, nil
}

func printVector(ctx *cli.Context) error {
	parent, err := parseParent(ctx)
	if err != nil {
		return err
	}
	return withStore(ctx, func(store worldstate.Store) error {
		return writeVector(os.Stdout, store, parent)
	})
}

func printMap(ctx *cli.Context) error {
	parent, err := parseParent(ctx)
	if err != nil {
		return err
	}
	return withStore(ctx, func(store worldstate.Store) error {
		return writeIterableMap(os.Stdout, store, parent)
	})
}

// writeVector prints the raw cells of the vector stored under the given
// parent. Element data is printed in its encoded form since the element
// type is not known to the tool.
func writeVector(out io.Writer, ws worldstate.WorldState, parent []byte) error {
	data, found, err := ws.Get(collections.VectorLengthKey(parent))
	if err != nil {
		return err
	}
	length := uint32(0)
	if found {
		if length, err = codec.Decode[uint32](codec.Uint32, data); err != nil {
			return fmt.Errorf("%w: vector length: %v", cells.ErrCorruptCell, err)
		}
	}
	fmt.Fprintf(out, "length: %d\n", length)
	for i := uint32(0); i < length; i++ {
		cell, present, err := cells.Read(ws, collections.VectorElementKey(parent, i), cells.DecodeCell)
		if err != nil {
			return err
		}
		if !present {
			fmt.Fprintf(out, "%d: missing\n", i)
			continue
		}
		fmt.Fprintf(out, "%d: edition %d, data %x\n", i, cell.Edition, cell.Data)
	}
	return nil
}

// writeIterableMap prints the info and the live entries of the iterable map
// stored under the given parent, in index order.
func writeIterableMap(out io.Writer, ws worldstate.WorldState, parent []byte) error {
	info, _, err := cells.Read(ws, collections.MapInfoKey(parent), cells.DecodeMapInfo)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "level: %d, sequence: %d\n", info.Level, info.Sequence)
	for i := uint32(1); i <= info.Sequence; i++ {
		key, _, err := cells.Read(ws, collections.MapIndexKeyKey(parent, info.Level, i), cells.DecodeValueCell)
		if err != nil {
			return err
		}
		value, _, err := cells.Read(ws, collections.MapIndexValueKey(parent, info.Level, i), cells.DecodeValueCell)
		if err != nil {
			return err
		}
		if value.IsTombstone() {
			continue
		}
		kind := "value"
		if value.IsMap {
			kind = "map"
		}
		fmt.Fprintf(out, "%d: key %x, %s %x\n", i, key.Data, kind, value.Data)
	}
	return nil
}
