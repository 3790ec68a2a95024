// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/livethelifetv/props-protocol/props"
)

// Value is a single named slot holding one RLP-encoded value, similar to a
// state variable in Solidity.
type Value[V any] struct {
	context *Context
	pos     props.Bytes32
}

// NewValue creates a value binding at the named slot.
func NewValue[V any](context *Context, name string) *Value[V] {
	return &Value[V]{context: context, pos: context.Slot(name)}
}

// Get returns the stored value, or the zero value when unset.
func (v *Value[V]) Get() (value V, err error) {
	err = v.context.state.DecodeStorage(v.pos, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value.
func (v *Value[V]) Set(value V) error {
	return v.context.state.EncodeStorage(v.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Clear removes the stored value.
func (v *Value[V]) Clear() error {
	return v.context.state.EncodeStorage(v.pos, func() ([]byte, error) {
		return nil, nil
	})
}
