// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/livethelifetv/props-protocol/props"
)

// Address is a wrapper for storage and retrieval of an address, similar to
// storing an address in a smart contract.
type Address struct {
	context *Context
	pos     props.Bytes32
}

// NewAddress creates an address binding at the named slot.
func NewAddress(context *Context, name string) *Address {
	return &Address{context: context, pos: context.Slot(name)}
}

// Get returns the stored address.
func (a *Address) Get() (props.Address, error) {
	storage, err := a.context.state.GetStorage(a.pos)
	if err != nil {
		return props.Address{}, err
	}
	return props.BytesToAddress(storage.Bytes()), nil
}

// Set stores the address.
func (a *Address) Set(addr props.Address) {
	var storage props.Bytes32
	if !addr.IsZero() {
		storage = props.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.pos, storage)
}
