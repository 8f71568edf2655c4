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
	"fmt"
	"io"
	"os"

	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/urfave/cli/v2"
)

var prefixFlag = cli.StringFlag{
	Name:  "prefix",
	Usage: "only print entries with the given hex encoded key prefix",
}

var dumpCommand = cli.Command{
	Action: dump,
	Name:   "dump",
	Usage:  "prints the raw entries of a world state in key order",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&variantFlag,
		&prefixFlag,
	},
}

func dump(ctx *cli.Context) error {
	prefix, err := parseHex(ctx.String(prefixFlag.Name))
	if err != nil {
		return err
	}
	return withStore(ctx, func(store worldstate.Store) error {
		return dumpEntries(os.Stdout, store, prefix)
	})
}

func dumpEntries(out io.Writer, store worldstate.Store, prefix []byte) error {
	return store.ForEach(func(key, value []byte) bool {
		if bytes.HasPrefix(key, prefix) {
			fmt.Fprintf(out, "%x: %x\n", key, value)
		}
		return true
	})
}
