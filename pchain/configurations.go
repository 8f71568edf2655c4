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
	"fmt"
	"path/filepath"

	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/parallelchain-io/pchain-sdk/worldstate/ldb"
	"github.com/parallelchain-io/pchain-sdk/worldstate/memory"
	"github.com/parallelchain-io/pchain-sdk/worldstate/sqlite"
	"golang.org/x/exp/slices"
)

// Configuration identifies a world state implementation. The Variant names
// the storage technology; all variants share the same key/value content and
// hence produce the same state hashes.
type Configuration struct {
	Variant Variant
}

func (c Configuration) String() string {
	return string(c.Variant)
}

// Variant describes the technology underlying a world state implementation.
type Variant string

const (
	VariantGoMemory  = Variant("go-memory")
	VariantGoLevelDb = Variant("go-ldb")
	VariantGoSqlite  = Variant("go-sqlite")
)

// StoreFactory opens the store of a variant in the given directory.
type StoreFactory func(directory string) (worldstate.Store, error)

var storeFactoryRegistry = map[Configuration]StoreFactory{}

// RegisterStoreFactory makes an additional configuration available to
// OpenWorldState.
func RegisterStoreFactory(config Configuration, factory StoreFactory) {
	if _, found := storeFactoryRegistry[config]; found {
		panic(fmt.Sprintf("attempted to register multiple factories for %v", config))
	}
	storeFactoryRegistry[config] = factory
}

// GetAllConfigurations returns all registered configurations ordered by
// variant name.
func GetAllConfigurations() []Configuration {
	variants := make([]Variant, 0, len(storeFactoryRegistry))
	for config := range storeFactoryRegistry {
		variants = append(variants, config.Variant)
	}
	slices.Sort(variants)
	res := make([]Configuration, 0, len(variants))
	for _, variant := range variants {
		res = append(res, Configuration{Variant: variant})
	}
	return res
}

func init() {
	RegisterStoreFactory(Configuration{Variant: VariantGoMemory}, func(string) (worldstate.Store, error) {
		return memory.NewStore(), nil
	})
	RegisterStoreFactory(Configuration{Variant: VariantGoLevelDb}, func(directory string) (worldstate.Store, error) {
		store, err := ldb.OpenStore(directory)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
	RegisterStoreFactory(Configuration{Variant: VariantGoSqlite}, func(directory string) (worldstate.Store, error) {
		store, err := sqlite.OpenStore(filepath.Join(directory, "state.sqlite"))
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}
