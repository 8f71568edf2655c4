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
	"testing"

	"github.com/parallelchain-io/pchain-sdk/codec"
	"github.com/parallelchain-io/pchain-sdk/collections"
	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"github.com/parallelchain-io/pchain-sdk/worldstate/cache"
)

func TestConfigurations_AllVariantsAreRegistered(t *testing.T) {
	if got := fmt.Sprint(GetAllConfigurations()); got != "[go-ldb go-memory go-sqlite]" {
		t.Errorf("unexpected configurations: %s", got)
	}
}

func TestOpenWorldState_UnknownVariantIsRejected(t *testing.T) {
	_, err := OpenWorldState(t.TempDir(), Configuration{Variant: "cpp-file"}, nil)
	if !errors.Is(err, UnsupportedConfiguration) {
		t.Errorf("expected unsupported configuration, got %v", err)
	}
}

func TestOpenWorldState_InvalidCacheSizeIsRejected(t *testing.T) {
	tests := map[string]string{
		"negative":   "-1",
		"no integer": "big",
		"too large":  "4294967296",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			properties := Properties{ReadCacheSize: value}
			if _, err := OpenWorldState(t.TempDir(), Configuration{Variant: VariantGoMemory}, properties); err == nil {
				t.Errorf("invalid cache size %q was accepted", value)
			}
		})
	}
}

func TestOpenWorldState_CacheCanBeDisabled(t *testing.T) {
	config := Configuration{Variant: VariantGoMemory}
	for size, cached := range map[uint32]bool{0: false, 16: true} {
		var properties Properties
		properties.SetUint32(ReadCacheSize, size)
		store, err := OpenWorldState(t.TempDir(), config, properties)
		if err != nil {
			t.Fatalf("failed to open world state: %v", err)
		}
		if _, isCache := store.(*cache.Store); isCache != cached {
			t.Errorf("unexpected store type %T for cache size %d", store, size)
		}
		store.Close()
	}
}

// populate runs a mix of collection operations over several invocations.
func populate(ws worldstate.WorldState) error {
	for round := uint32(0); round < 5; round++ {
		vector := collections.OpenVector[uint32](ws, []byte{0}, codec.Uint32)
		fast := collections.OpenFastMap[string, uint32](ws, []byte{1}, codec.String{}, codec.Uint32)
		iterable := collections.OpenIterableMap[uint32, string](ws, []byte{2}, codec.Uint32, codec.String{})
		for i := uint32(0); i < 10; i++ {
			if err := errors.Join(
				vector.Push(round*i),
				fast.Insert(fmt.Sprint(i), round),
				iterable.Insert(i*round, fmt.Sprint(round)),
			); err != nil {
				return err
			}
		}
		if round%2 == 1 {
			if err := errors.Join(vector.Pop(), iterable.Clear()); err != nil {
				return err
			}
			if _, err := fast.Remove("3"); err != nil {
				return err
			}
		}
		for _, collection := range []common.Flusher{vector, fast, iterable} {
			if err := collection.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestOpenWorldState_AllVariantsProduceTheSameStateHash(t *testing.T) {
	hashes := map[Configuration]common.Hash{}
	for _, config := range GetAllConfigurations() {
		t.Run(config.String(), func(t *testing.T) {
			store, err := OpenWorldState(t.TempDir(), config, nil)
			if err != nil {
				t.Fatalf("failed to open world state: %v", err)
			}
			defer store.Close()
			if err := populate(store); err != nil {
				t.Fatalf("failed to populate world state: %v", err)
			}
			if err := store.Flush(); err != nil {
				t.Fatalf("failed to flush: %v", err)
			}
			if hashes[config], err = store.GetStateHash(); err != nil {
				t.Fatalf("failed to get state hash: %v", err)
			}
		})
	}
	reference := hashes[Configuration{Variant: VariantGoMemory}]
	for config, hash := range hashes {
		if hash != reference {
			t.Errorf("state hash of %v differs: %v vs %v", config, hash, reference)
		}
	}
}

func TestOpenWorldState_ContentSurvivesReopening(t *testing.T) {
	for _, variant := range []Variant{VariantGoLevelDb, VariantGoSqlite} {
		t.Run(string(variant), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "dir")
			config := Configuration{Variant: variant}
			store, err := OpenWorldState(dir, config, nil)
			if err != nil {
				t.Fatalf("failed to open world state: %v", err)
			}
			vector := collections.OpenVector[uint32](store, nil, codec.Uint32)
			vector.Push(42)
			if err := errors.Join(vector.Flush(), store.Close()); err != nil {
				t.Fatalf("failed to close world state: %v", err)
			}

			store, err = OpenWorldState(dir, config, nil)
			if err != nil {
				t.Fatalf("failed to reopen world state: %v", err)
			}
			defer store.Close()
			if got, err := collections.OpenVector[uint32](store, nil, codec.Uint32).Get(0); err != nil || got != 42 {
				t.Errorf("unexpected element: %d, %v", got, err)
			}
		})
	}
}

func TestLoadConfigFile_ReadsSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("directory = %q\nvariant = \"go-sqlite\"\n\n[properties]\nReadCacheSize = \"0\"\n", dir)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.Configuration() != (Configuration{Variant: VariantGoSqlite}) || config.Directory != dir {
		t.Errorf("unexpected config: %+v", config)
	}
	properties := config.GetProperties()
	if size, _ := properties.GetUint32(ReadCacheSize, 10); size != 0 {
		t.Errorf("unexpected cache size: %d", size)
	}
	store, err := config.Open()
	if err != nil {
		t.Fatalf("failed to open configured world state: %v", err)
	}
	store.Close()
}

func TestLoadConfigFile_DetectsInvalidFiles(t *testing.T) {
	tests := map[string]string{
		"syntax":   "variant = ",
		"variant":  "variant = \"cpp-memory\"",
		"property": "[properties]\nReadCacheSzie = \"1\"",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(content), 0600)
			if _, err := LoadConfigFile(path); err == nil {
				t.Errorf("invalid config was accepted")
			}
		})
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("missing config was accepted")
	}
}

func TestOpenWorldState_DirectoryCanOnlyBeOpenedOnce(t *testing.T) {
	dir := t.TempDir()
	config := Configuration{Variant: VariantGoSqlite}
	store, err := OpenWorldState(dir, config, nil)
	if err != nil {
		t.Fatalf("failed to open world state: %v", err)
	}
	if _, err := OpenWorldState(dir, config, nil); err == nil {
		t.Errorf("world state was opened twice")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close world state: %v", err)
	}
	store, err = OpenWorldState(dir, config, nil)
	if err != nil {
		t.Fatalf("failed to reopen world state: %v", err)
	}
	store.Close()
}
