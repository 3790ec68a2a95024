// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides Solidity-layout storage bindings over the
// protocol state: named slots, mappings with hashed positions and
// RLP-encoded record values.
package storage

import (
	"encoding/binary"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/state"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Uint64Key adapts an uint64 (e.g. a reward day) into a mapping key.
type Uint64Key uint64

// Bytes returns the big-endian form of the key.
func (k Uint64Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// Context scopes the slots of one engine within the shared state, the way a
// contract address scopes contract storage.
type Context struct {
	ns    props.Bytes32
	state *state.State
}

// NewContext creates a storage context under the given namespace.
func NewContext(namespace string, state *state.State) *Context {
	return &Context{
		ns:    props.BytesToBytes32([]byte(namespace)),
		state: state,
	}
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// Slot derives the storage position of a named root slot.
func (c *Context) Slot(name string) props.Bytes32 {
	return props.Blake2b(c.ns.Bytes(), []byte(name))
}
