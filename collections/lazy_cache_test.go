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

import (
	"errors"
	"fmt"
	"testing"
)

type countingBackend struct {
	data   map[int]string
	loads  int
	stores []int
	fail   error
}

func (b *countingBackend) load(location int) (string, bool, error) {
	b.loads++
	value, found := b.data[location]
	return value, found, nil
}

func (b *countingBackend) store(location int, value string) (string, error) {
	if b.fail != nil {
		return value, b.fail
	}
	b.stores = append(b.stores, location)
	b.data[location] = value
	return value, nil
}

func newCountingCache() (*countingBackend, *lazyCache[int, string]) {
	backend := &countingBackend{data: map[int]string{1: "one"}}
	return backend, newLazyCache[int, string](backend.load, backend.store)
}

func TestLazyCache_LocationsAreLoadedOnce(t *testing.T) {
	backend, cache := newCountingCache()
	for i := 0; i < 3; i++ {
		if value, present, err := cache.get(1); err != nil || !present || value != "one" {
			t.Errorf("unexpected result: %q, %t, %v", value, present, err)
		}
		if _, present, err := cache.get(2); err != nil || present {
			t.Errorf("absent location reported present: %t, %v", present, err)
		}
	}
	if backend.loads != 2 {
		t.Errorf("unexpected number of loads, wanted 2, got %d", backend.loads)
	}
}

func TestLazyCache_PutDoesNotAccessBackend(t *testing.T) {
	backend, cache := newCountingCache()
	cache.put(5, "five")
	if value, present, err := cache.get(5); err != nil || !present || value != "five" {
		t.Errorf("unexpected result: %q, %t, %v", value, present, err)
	}
	if backend.loads != 0 || len(backend.stores) != 0 {
		t.Errorf("unexpected backend accesses: %d loads, %d stores", backend.loads, len(backend.stores))
	}
	if got := cache.numDirty(); got != 1 {
		t.Errorf("unexpected number of dirty entries: %d", got)
	}
}

func TestLazyCache_FlushWritesDirtyEntriesInFirstTouchOrder(t *testing.T) {
	backend, cache := newCountingCache()
	cache.put(3, "three")
	cache.get(1)
	cache.put(2, "two")
	cache.put(3, "drei")

	if err := cache.flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}
	if want, got := fmt.Sprint([]int{3, 2}), fmt.Sprint(backend.stores); want != got {
		t.Errorf("unexpected store order, wanted %s, got %s", want, got)
	}
	if backend.data[3] != "drei" {
		t.Errorf("last write did not win: %q", backend.data[3])
	}
}

func TestLazyCache_RepeatedFlushWritesNothing(t *testing.T) {
	backend, cache := newCountingCache()
	cache.put(1, "uno")
	cache.flush()
	cache.flush()
	if len(backend.stores) != 1 {
		t.Errorf("unexpected number of stores: %d", len(backend.stores))
	}
	if got := cache.numDirty(); got != 0 {
		t.Errorf("entries still dirty after flush: %d", got)
	}
}

func TestLazyCache_FailedFlushKeepsEntriesDirty(t *testing.T) {
	backend, cache := newCountingCache()
	injected := fmt.Errorf("injected")
	backend.fail = injected
	cache.put(1, "uno")
	if err := cache.flush(); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
	backend.fail = nil
	if err := cache.flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}
	if backend.data[1] != "uno" {
		t.Errorf("entry was not written after retry")
	}
}

func TestLazyCache_ResetDropsEntries(t *testing.T) {
	backend, cache := newCountingCache()
	cache.get(1)
	cache.put(2, "two")
	cache.reset()
	if _, _, cached := cache.peek(1); cached {
		t.Errorf("entry still cached after reset")
	}
	cache.flush()
	if len(backend.stores) != 0 {
		t.Errorf("dropped entries were written")
	}
	cache.get(1)
	if backend.loads != 2 {
		t.Errorf("entry was not reloaded after reset")
	}
}
