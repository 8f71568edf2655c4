// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package worldstate

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestMetered_ChargesAccordingToSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := NewMockWorldState(ctrl)
	ws.EXPECT().Get([]byte{1, 2}).Return([]byte{1, 2, 3}, true, nil)
	ws.EXPECT().Set([]byte{1}, []byte{4, 5})
	ws.EXPECT().Delete([]byte{1})

	schedule := Schedule{ReadBase: 10, ReadPerByte: 1, WriteBase: 100, WritePerByte: 2}
	metered := NewMetered(ws, schedule, 0)

	if _, _, err := metered.Get([]byte{1, 2}); err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if err := metered.Set([]byte{1}, []byte{4, 5}); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := metered.Delete([]byte{1}); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	want := Stats{
		Reads:        1,
		Writes:       1,
		Deletes:      1,
		BytesRead:    3,
		BytesWritten: 3,
		GasUsed:      (10 + 2 + 3) + (100 + 2*3) + (100 + 2*1),
	}
	if got := metered.Stats(); got != want {
		t.Errorf("unexpected stats, wanted %+v, got %+v", want, got)
	}
}

func TestMetered_ExceedingTheLimitFailsAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := NewMockWorldState(ctrl)
	ws.EXPECT().Get(gomock.Any()).Return(nil, false, nil)

	metered := NewMetered(ws, Schedule{ReadBase: 10, WriteBase: 100}, 50)
	if _, _, err := metered.Get([]byte{1}); err != nil {
		t.Fatalf("first read should be within limit: %v", err)
	}
	if err := metered.Set([]byte{1}, []byte{2}); !errors.Is(err, ErrOutOfGas) {
		t.Errorf("expected out of gas error, got %v", err)
	}
	if _, _, err := metered.Get([]byte{1}); !errors.Is(err, ErrOutOfGas) {
		t.Errorf("expected out of gas error after exhaustion, got %v", err)
	}
}

func TestMetered_ErrorsOfTheUnderlyingStateArePropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	ws := NewMockWorldState(ctrl)
	injected := fmt.Errorf("injected")
	ws.EXPECT().Get(gomock.Any()).Return(nil, false, injected)

	metered := NewMetered(ws, DefaultSchedule, 0)
	if _, _, err := metered.Get([]byte{1}); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
	if got := metered.Stats().Reads; got != 0 {
		t.Errorf("failed reads should not be counted, got %d", got)
	}
}
