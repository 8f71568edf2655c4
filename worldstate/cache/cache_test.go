// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"go.uber.org/mock/gomock"
)

func TestStore_RepeatedReadsAreServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := worldstate.NewMockStore(ctrl)
	backend.EXPECT().Get([]byte{1}).Return([]byte{2}, true, nil)
	backend.EXPECT().Get([]byte{3}).Return(nil, false, nil)

	store, err := NewStore(backend, 16)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	for i := 0; i < 3; i++ {
		if value, found, err := store.Get([]byte{1}); err != nil || !found || !bytes.Equal(value, []byte{2}) {
			t.Errorf("unexpected result: %x, %t, %v", value, found, err)
		}
		if _, found, err := store.Get([]byte{3}); err != nil || found {
			t.Errorf("unexpected result for absent key: %t, %v", found, err)
		}
	}
	if hits, misses := store.Stats(); hits != 4 || misses != 2 {
		t.Errorf("unexpected stats, hits %d, misses %d", hits, misses)
	}
}

func TestStore_WritesUpdateCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := worldstate.NewMockStore(ctrl)
	backend.EXPECT().Set([]byte{1}, []byte{5})
	backend.EXPECT().Delete([]byte{2})

	store, _ := NewStore(backend, 16)
	store.Set([]byte{1}, []byte{5})
	store.Delete([]byte{2})

	if value, found, _ := store.Get([]byte{1}); !found || !bytes.Equal(value, []byte{5}) {
		t.Errorf("written value not cached: %x, %t", value, found)
	}
	if _, found, _ := store.Get([]byte{2}); found {
		t.Errorf("deleted key reported as present")
	}
}

func TestStore_FailedWritesInvalidateCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := worldstate.NewMockStore(ctrl)
	injected := fmt.Errorf("injected")
	gomock.InOrder(
		backend.EXPECT().Get([]byte{1}).Return([]byte{1}, true, nil),
		backend.EXPECT().Set([]byte{1}, []byte{2}).Return(injected),
		backend.EXPECT().Get([]byte{1}).Return([]byte{1}, true, nil),
	)

	store, _ := NewStore(backend, 16)
	store.Get([]byte{1})
	if err := store.Set([]byte{1}, []byte{2}); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
	if value, _, _ := store.Get([]byte{1}); !bytes.Equal(value, []byte{1}) {
		t.Errorf("unexpected value after failed write: %x", value)
	}
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := worldstate.NewMockStore(ctrl)
	backend.EXPECT().Get(gomock.Any()).Return([]byte{0}, true, nil).Times(3)

	store, _ := NewStore(backend, 1)
	store.Get([]byte{1})
	store.Get([]byte{2})
	store.Get([]byte{1})
}

func TestDefaultCapacity_IsWithinBounds(t *testing.T) {
	if got := DefaultCapacity(); got < minCapacity || got > maxCapacity {
		t.Errorf("default capacity out of bounds: %d", got)
	}
}
