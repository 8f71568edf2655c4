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
	"os"

	"github.com/BurntSushi/toml"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
)

// ConfigFile is the content of a world state configuration file:
//
//	directory = "/var/lib/contract"
//	variant = "go-ldb"
//
//	[properties]
//	ReadCacheSize = "65536"
type ConfigFile struct {
	Directory  string            `toml:"directory"`
	Variant    string            `toml:"variant"`
	Properties map[string]string `toml:"properties"`
}

// DefaultConfigFile returns the settings used for absent entries.
func DefaultConfigFile() *ConfigFile {
	return &ConfigFile{
		Directory: "state",
		Variant:   string(VariantGoLevelDb),
	}
}

// LoadConfigFile reads and validates the configuration file at the given path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	res := DefaultConfigFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if _, found := storeFactoryRegistry[res.Configuration()]; !found {
		return nil, fmt.Errorf("%w: variant %q", UnsupportedConfiguration, res.Variant)
	}
	if err := res.GetProperties().Check(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *ConfigFile) Configuration() Configuration {
	return Configuration{Variant: Variant(c.Variant)}
}

func (c *ConfigFile) GetProperties() Properties {
	res := Properties{}
	for name, value := range c.Properties {
		res[Property(name)] = value
	}
	return res
}

// Open opens the world state described by the configuration file.
func (c *ConfigFile) Open() (worldstate.Store, error) {
	return OpenWorldState(c.Directory, c.Configuration(), c.GetProperties())
}
