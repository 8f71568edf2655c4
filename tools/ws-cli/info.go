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
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/logging"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/urfave/cli/v2"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a world state directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&variantFlag,
	},
}

func getInfo(ctx *cli.Context) error {
	return withStore(ctx, func(store worldstate.Store) error {
		log := newLogger(ctx)
		log.Info("computing state hash")
		entries := 0
		if err := store.ForEach(func(_, _ []byte) bool {
			entries++
			return true
		}); err != nil {
			return err
		}
		hash, err := store.GetStateHash()
		if err != nil {
			return err
		}
		log.Debug("state hash computed", logging.Count(entries), logging.Hash(hash[:]))
		fmt.Printf("Entries:    %d\n", entries)
		fmt.Printf("State hash: %v\n", hash)
		return nil
	})
}
