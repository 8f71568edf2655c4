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
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/parallelchain-io/pchain-sdk/logging"
	"github.com/parallelchain-io/pchain-sdk/pchain"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/urfave/cli/v2"
)

var (
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted directory",
		Required: true,
	}
	variantFlag = cli.StringFlag{
		Name:  "variant",
		Usage: "the world state implementation (go-ldb, go-sqlite)",
		Value: string(pchain.VariantGoLevelDb),
	}
	parentFlag = cli.StringFlag{
		Name:  "parent",
		Usage: "the hex encoded key of the field holding the collection",
	}
)

func newLogger(ctx *cli.Context) *logging.Logger {
	return logging.NewStderrLogger(ctx.Bool(verboseFlag.Name)).WithComponent("ws-cli")
}

// open opens the world state in the given directory. Tools access the
// backend directly, without a read cache.
func open(dir string, variant string) (worldstate.Store, error) {
	properties := pchain.Properties{}
	properties.SetUint32(pchain.ReadCacheSize, 0)
	return pchain.OpenWorldState(dir, pchain.Configuration{Variant: pchain.Variant(variant)}, properties)
}

// withStore runs the given operation on the world state selected by the
// command line flags and closes it afterwards.
func withStore(ctx *cli.Context, run func(worldstate.Store) error) (err error) {
	log := newLogger(ctx)
	dir := ctx.String(dbDirectoryFlag.Name)
	store, err := open(dir, ctx.String(variantFlag.Name))
	if err != nil {
		return err
	}
	defer closeStore(log, dir, store, &err)
	return run(store)
}

// closeStore closes the given world state, adding a close failure to the
// error returned by the calling command.
func closeStore(log *logging.Logger, dir string, store worldstate.Store, err *error) {
	log.Info("closing world state", "directory", dir)
	if closeErr := store.Close(); closeErr != nil {
		*err = errors.Join(*err, closeErr)
	}
}

func parseParent(ctx *cli.Context) ([]byte, error) {
	return parseHex(ctx.String(parentFlag.Name))
}

func StartCPUProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func StopCPUProfile() {
	pprof.StopCPUProfile()
}
