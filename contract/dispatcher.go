// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package contract

import (
	"fmt"

	"github.com/parallelchain-io/pchain-sdk/common"
	"github.com/parallelchain-io/pchain-sdk/logging"
	"github.com/parallelchain-io/pchain-sdk/worldstate"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ErrUnknownMethod   = common.ConstError("unknown method")
	ErrDuplicateMethod = common.ConstError("duplicate method")
)

// MethodKind tells apart methods that only read the contract storage from
// methods that may modify it.
type MethodKind byte

const (
	View MethodKind = iota
	Action
)

func (k MethodKind) String() string {
	switch k {
	case View:
		return "view"
	case Action:
		return "action"
	}
	return fmt.Sprintf("MethodKind(%d)", byte(k))
}

// Method is an entry point of a contract. Run receives the storage context
// of the invocation and the raw call arguments and produces the raw return
// value.
type Method struct {
	Name string
	Kind MethodKind
	Run  func(storage *Storage, args []byte) ([]byte, error)
}

// Dispatcher routes calls to the methods of a contract.
type Dispatcher struct {
	methods map[string]Method
	log     *logging.Logger
}

func NewDispatcher(log *logging.Logger, methods ...Method) (*Dispatcher, error) {
	res := &Dispatcher{
		methods: make(map[string]Method, len(methods)),
		log:     log.WithComponent("dispatcher"),
	}
	for _, method := range methods {
		if _, found := res.methods[method.Name]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMethod, method.Name)
		}
		res.methods[method.Name] = method
	}
	return res, nil
}

// Methods lists the names of all methods in lexical order.
func (d *Dispatcher) Methods() []string {
	res := maps.Keys(d.methods)
	slices.Sort(res)
	return res
}

// Invoke runs the named method against a fresh storage context on the given
// world state. The modifications of an Action are flushed if the method
// succeeds; a failed invocation and a View leave the world state untouched.
func (d *Dispatcher) Invoke(ws worldstate.WorldState, name string, args []byte) ([]byte, error) {
	method, found := d.methods[name]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
	}
	storage := NewStorage(ws)
	res, err := method.Run(storage, args)
	if err != nil {
		d.log.Debug("invocation failed", logging.Method(name), logging.Error(err))
		return nil, err
	}
	if method.Kind == Action {
		if err := storage.Flush(); err != nil {
			d.log.Debug("flush failed", logging.Method(name), logging.Error(err))
			return nil, err
		}
	}
	d.log.Debug("invoked", logging.Method(name), "kind", method.Kind)
	return res, nil
}
