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
	"math"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Property is an optional parameter for configuring a world state.
type Property string

const (
	// ReadCacheSize is the number of world state entries kept in the read
	// cache in front of the backend. A value of zero disables the cache. If
	// not set, the size is derived from the available memory.
	ReadCacheSize = Property("ReadCacheSize")
)

var knownProperties = map[Property]bool{
	ReadCacheSize: true,
}

// Properties are optional settings which may influence the behavior of a
// world state, but not its content.
type Properties map[Property]string

// Check fails if the properties name a setting no world state understands.
// Such entries usually originate from typos in configuration files.
func (p Properties) Check() error {
	var unknown []string
	for name := range p {
		if !knownProperties[name] {
			unknown = append(unknown, string(name))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("%w: unknown properties %v", UnsupportedConfiguration, unknown)
}

// GetUint32 retrieves a numeric property which must fit into a world state
// counter. The fallback is returned if the property is not set.
func (p Properties) GetUint32(name Property, fallback uint32) (uint32, error) {
	value, found := p[name]
	if !found {
		return fallback, nil
	}
	res, err := strconv.ParseInt(value, 10, 64)
	if err != nil || res < 0 || res > math.MaxUint32 {
		return 0, fmt.Errorf("%w: invalid value for '%s' property: %v", UnsupportedConfiguration, name, value)
	}
	return uint32(res), nil
}

// SetUint32 sets a numeric property, creating the map if needed.
func (p *Properties) SetUint32(name Property, value uint32) {
	if *p == nil {
		*p = Properties{}
	}
	(*p)[name] = strconv.FormatUint(uint64(value), 10)
}

// Names lists the names of all set properties in lexical order.
func (p Properties) Names() []Property {
	res := maps.Keys(p)
	slices.Sort(res)
	return res
}
