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
	"context"
	"fmt"
	"time"

	"github.com/parallelchain-io/pchain-sdk/common/interrupt"
	"github.com/parallelchain-io/pchain-sdk/logging"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/urfave/cli/v2"
)

var (
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
	srcDirFlag = cli.StringFlag{
		Name:     "src-dir",
		Usage:    "the directory of the world state to copy",
		Required: true,
	}
	srcVariantFlag = cli.StringFlag{
		Name:  "src-variant",
		Usage: "the world state implementation of the source",
		Value: variantFlag.Value,
	}
	trgDirFlag = cli.StringFlag{
		Name:     "trg-dir",
		Usage:    "the directory receiving the copy",
		Required: true,
	}
	trgVariantFlag = cli.StringFlag{
		Name:  "trg-variant",
		Usage: "the world state implementation of the target",
		Value: variantFlag.Value,
	}
)

var syncCommand = cli.Command{
	Action: sync,
	Name:   "sync",
	Usage:  "copies the content of one world state into another, possibly of a different variant",
	Flags: []cli.Flag{
		&srcDirFlag,
		&srcVariantFlag,
		&trgDirFlag,
		&trgVariantFlag,
		&cpuProfilingFlag,
	},
}

// progressInterval is the number of copied entries between progress reports.
const progressInterval = 100_000

func sync(ctx *cli.Context) (err error) {
	log := newLogger(ctx)

	if target := ctx.String(cpuProfilingFlag.Name); target != "" {
		if err := StartCPUProfile(target); err != nil {
			return err
		}
		defer StopCPUProfile()
	}

	srcDir, trgDir := ctx.String(srcDirFlag.Name), ctx.String(trgDirFlag.Name)
	if srcDir == trgDir {
		return fmt.Errorf("source and target directory must differ")
	}
	source, err := open(srcDir, ctx.String(srcVariantFlag.Name))
	if err != nil {
		return err
	}
	defer closeStore(log, srcDir, source, &err)
	target, err := open(trgDir, ctx.String(trgVariantFlag.Name))
	if err != nil {
		return err
	}
	defer closeStore(log, trgDir, target, &err)

	start := time.Now()
	copied, err := copyEntries(interrupt.Register(ctx.Context, log), log, source, target)
	if err != nil {
		return err
	}
	log.Info("synchronization complete", logging.Count(copied), "seconds", time.Since(start).Seconds())

	return compareHashes(log, source, target)
}

// copyEntries writes every entry of the source into the target and flushes
// the target. The copy stops with interrupt.ErrCanceled once ctx is done.
func copyEntries(ctx context.Context, log *logging.Logger, source, target worldstate.Store) (int, error) {
	copied := 0
	var setErr error
	err := source.ForEach(func(key, value []byte) bool {
		if interrupt.IsCancelled(ctx) {
			setErr = interrupt.ErrCanceled
			return false
		}
		if setErr = target.Set(key, value); setErr != nil {
			log.Error("failed to copy entry", logging.Key(key), logging.Error(setErr))
			return false
		}
		copied++
		if copied%progressInterval == 0 {
			log.Info("copying entries", logging.Count(copied))
		}
		return true
	})
	if err != nil {
		return copied, err
	}
	if setErr != nil {
		return copied, setErr
	}
	return copied, target.Flush()
}

// compareHashes fails if the two world states do not hold the same content.
func compareHashes(log *logging.Logger, source, target worldstate.Store) error {
	sourceHash, err := source.GetStateHash()
	if err != nil {
		return err
	}
	targetHash, err := target.GetStateHash()
	if err != nil {
		return err
	}
	log.Debug("source state hash", logging.Hash(sourceHash[:]))
	log.Debug("target state hash", logging.Hash(targetHash[:]))
	fmt.Printf("Source state hash: %v\nTarget state hash: %v\n", sourceHash, targetHash)
	if sourceHash != targetHash {
		return fmt.Errorf("sync failed, hashes are not equivalent; the target may hold additional entries")
	}
	return nil
}
