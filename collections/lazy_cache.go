// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package collections

// lazyCache keeps the cells of one collection instance read or written
// during an invocation. Locations L are collection-local coordinates (an
// index, an encoded key); the owning collection derives world state keys
// from them only when loading or storing.
//
// A location is loaded from the world state at most once. Locations found
// absent are cached as well. Writes are only recorded; they reach the world
// state when flush is called, in the order in which the locations were
// first touched.
type lazyCache[L comparable, C any] struct {
	load    func(L) (C, bool, error)
	store   func(L, C) (C, error)
	entries map[L]*cacheEntry[C]
	order   []L
}

type cacheEntry[C any] struct {
	cell    C
	present bool
	dirty   bool
}

// newLazyCache creates a cache using the given functions to access the
// world state. The store function returns the cell to be retained in the
// cache after the write, which allows it to settle lazily resolved fields.
func newLazyCache[L comparable, C any](
	load func(L) (C, bool, error),
	store func(L, C) (C, error),
) *lazyCache[L, C] {
	return &lazyCache[L, C]{
		load:    load,
		store:   store,
		entries: map[L]*cacheEntry[C]{},
	}
}

// get returns the cell at the given location, loading it on a miss. The
// boolean result is false if the location holds no cell.
func (c *lazyCache[L, C]) get(location L) (C, bool, error) {
	if entry, found := c.entries[location]; found {
		return entry.cell, entry.present, nil
	}
	cell, present, err := c.load(location)
	if err != nil {
		var zero C
		return zero, false, err
	}
	c.add(location, &cacheEntry[C]{cell: cell, present: present})
	return cell, present, nil
}

// peek returns the cached cell at the given location without loading it.
// The last result reports whether the location is cached at all.
func (c *lazyCache[L, C]) peek(location L) (cell C, present bool, cached bool) {
	if entry, found := c.entries[location]; found {
		return entry.cell, entry.present, true
	}
	return cell, false, false
}

// put records a new cell for the given location. No I/O is performed.
func (c *lazyCache[L, C]) put(location L, cell C) {
	if entry, found := c.entries[location]; found {
		entry.cell = cell
		entry.present = true
		entry.dirty = true
		return
	}
	c.add(location, &cacheEntry[C]{cell: cell, present: true, dirty: true})
}

func (c *lazyCache[L, C]) add(location L, entry *cacheEntry[C]) {
	c.entries[location] = entry
	c.order = append(c.order, location)
}

// flush writes all dirty cells. Cells written successfully are clean
// afterwards, so a repeated flush without intermediate puts writes nothing.
func (c *lazyCache[L, C]) flush() error {
	for _, location := range c.order {
		entry := c.entries[location]
		if !entry.dirty {
			continue
		}
		cell, err := c.store(location, entry.cell)
		if err != nil {
			return err
		}
		entry.cell = cell
		entry.dirty = false
	}
	return nil
}

// reset drops all cached cells, including unflushed ones.
func (c *lazyCache[L, C]) reset() {
	c.entries = map[L]*cacheEntry[C]{}
	c.order = nil
}

// forEach visits the present cells in first-touch order.
func (c *lazyCache[L, C]) forEach(visit func(L, C) error) error {
	for _, location := range c.order {
		entry := c.entries[location]
		if !entry.present {
			continue
		}
		if err := visit(location, entry.cell); err != nil {
			return err
		}
	}
	return nil
}

func (c *lazyCache[L, C]) numDirty() int {
	res := 0
	for _, entry := range c.entries {
		if entry.dirty {
			res++
		}
	}
	return res
}
