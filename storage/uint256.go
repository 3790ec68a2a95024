// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
)

// ErrUint256Underflow is returned when a Sub would drive a slot negative.
// Ledger slots never go negative; callers map this into their own taxonomy.
var ErrUint256Underflow = errors.New("storage: uint256 underflow")

// Uint256 is a wrapper for storage and retrieval of an uint256, similar to
// storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     props.Bytes32
}

// NewUint256 creates an uint256 binding at the named slot.
func NewUint256(context *Context, name string) *Uint256 {
	return &Uint256{context: context, pos: context.Slot(name)}
}

// Get returns the stored value.
func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores the value.
func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.pos, props.BytesToBytes32(value.Bytes()))
}

// Add increments the stored value.
func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

// Sub decrements the stored value. It fails instead of wrapping below zero.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return ErrUint256Underflow
	}
	storage.Sub(storage, value)
	u.Set(storage)
	return nil
}
