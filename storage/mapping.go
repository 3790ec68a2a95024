// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/livethelifetv/props-protocol/props"
)

// Mapping is a key/value storage abstraction for protocol engines, similar
// to a mapping in Solidity. Values are RLP encoded; a missing entry decodes
// to the zero value.
type Mapping[K Key, V any] struct {
	context *Context
	basePos props.Bytes32
}

// NewMapping creates a mapping rooted at the named slot.
func NewMapping[K Key, V any](context *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: context.Slot(name)}
}

// Get returns the value stored under key.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := props.Blake2b(key.Bytes(), m.basePos.Bytes())
	err = m.context.state.DecodeStorage(position, func(raw []byte) error {
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

// Set stores the value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	position := props.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(position, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Clear removes the entry stored under key.
func (m *Mapping[K, V]) Clear(key K) error {
	position := props.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(position, func() ([]byte, error) {
		return nil, nil
	})
}
