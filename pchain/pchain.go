// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package pchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/logging"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/parallelchain-io/pchain-sdk/worldstate/cache"
)

// UnsupportedConfiguration is the error returned if unsupported
// configurations or properties are identified. The text may contain further
// details.
const UnsupportedConfiguration = common.ConstError("unsupported configuration")

const lockFileName = "~lock"

var log = logging.NewNopLogger()

// SetLogger replaces the logger reporting opened world states.
func SetLogger(logger *logging.Logger) {
	log = logger.WithComponent("pchain")
}

// OpenWorldState opens the world state located in the given directory. If
// the directory does not exist, it is created. Reads are served through a
// cache unless disabled by the ReadCacheSize property.
//
// Any world state successfully opened by this function must be closed.
func OpenWorldState(directory string, configuration Configuration, properties Properties) (worldstate.Store, error) {
	factory, found := storeFactoryRegistry[configuration]
	if !found {
		return nil, fmt.Errorf("%w: no registered implementation for %v", UnsupportedConfiguration, configuration)
	}
	if err := properties.Check(); err != nil {
		return nil, err
	}
	capacity, err := properties.GetUint32(ReadCacheSize, cache.DefaultCapacity())
	if err != nil {
		return nil, err
	}
	var lock common.LockFile
	if configuration.Variant != VariantGoMemory {
		if err := os.MkdirAll(directory, 0700); err != nil {
			return nil, err
		}
		if lock, err = common.CreateLockFile(filepath.Join(directory, lockFileName)); err != nil {
			return nil, fmt.Errorf("world state in %s is in use: %w", directory, err)
		}
	}

	store, err := factory(directory)
	if err != nil {
		err = fmt.Errorf("failed to open %v world state in %s: %w", configuration, directory, err)
		if lock != nil {
			err = errors.Join(err, lock.Release())
		}
		return nil, err
	}
	if lock != nil {
		store = &lockedStore{Store: store, lock: lock}
	}
	log.Info("opened world state", "variant", configuration.Variant, "directory", directory, "cache", capacity, "properties", properties.Names())
	if capacity == 0 {
		return store, nil
	}
	res, err := cache.NewStore(store, capacity)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return res, nil
}

// lockedStore holds the lock of the directory of a store until closed.
type lockedStore struct {
	worldstate.Store
	lock common.LockFile
}

func (s *lockedStore) Close() error {
	return errors.Join(s.Store.Close(), s.lock.Release())
}
