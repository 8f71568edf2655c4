// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/logging"
)

const ErrCanceled = common.ConstError("interrupted")

// IsCancelled reports whether the given context has been cancelled.
func IsCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Register derives a context which is cancelled on SIGINT or SIGTERM, giving
// long running tools a chance to close their world states cleanly.
func Register(parent context.Context, log *logging.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			log.Warn("interrupted, closing world states before shutdown")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
