// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the journaled protocol state.
//
// Every public protocol operation takes a checkpoint before mutating state
// and reverts to it on failure, which gives the all-or-nothing semantics the
// ledgers rely on. Changes become durable only via Commit.
package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/props"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the protocol state.
//
// Reads fall through pending writes to the committed backing store; writes
// are journaled so that any range of them can be rolled back.
type State struct {
	src     kv.Getter
	cache   map[props.Bytes32]rlp.RawValue // committed values loaded from src
	writes  map[props.Bytes32]rlp.RawValue // pending writes
	journal []journalEntry
}

type journalEntry struct {
	key     props.Bytes32
	prev    rlp.RawValue
	existed bool // whether the key had a pending write before this one
}

// New creates a state instance over the given committed store.
func New(src kv.Getter) *State {
	return &State{
		src:    src,
		cache:  make(map[props.Bytes32]rlp.RawValue),
		writes: make(map[props.Bytes32]rlp.RawValue),
	}
}

// GetRawStorage returns storage value in rlp raw for the given key.
func (s *State) GetRawStorage(key props.Bytes32) (rlp.RawValue, error) {
	if raw, ok := s.writes[key]; ok {
		return raw, nil
	}
	if raw, ok := s.cache[key]; ok {
		return raw, nil
	}
	data, err := s.src.Get(key.Bytes())
	if err != nil {
		if s.src.IsNotFound(err) {
			s.cache[key] = nil
			return nil, nil
		}
		return nil, &Error{err}
	}
	raw := rlp.RawValue(data)
	s.cache[key] = raw
	return raw, nil
}

// SetRawStorage sets storage value in rlp raw.
func (s *State) SetRawStorage(key props.Bytes32, raw rlp.RawValue) {
	prev, existed := s.writes[key]
	s.journal = append(s.journal, journalEntry{key: key, prev: prev, existed: existed})
	s.writes[key] = raw
}

// GetStorage returns word-sized storage value for the given key.
func (s *State) GetStorage(key props.Bytes32) (props.Bytes32, error) {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return props.Bytes32{}, err
	}
	if len(raw) == 0 {
		return props.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return props.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be a customized storage value
		// return hash of raw data
		return props.Blake2b(raw), nil
	}
	return props.BytesToBytes32(content), nil
}

// SetStorage sets word-sized storage value for the given key.
func (s *State) SetStorage(key, value props.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(key, v)
}

// EncodeStorage sets storage value encoded by the given enc method.
func (s *State) EncodeStorage(key props.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(key, raw)
	return nil
}

// DecodeStorage gets and decodes storage value.
func (s *State) DecodeStorage(key props.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	for len(s.journal) > revision {
		e := s.journal[len(s.journal)-1]
		s.journal = s.journal[:len(s.journal)-1]
		if e.existed {
			s.writes[e.key] = e.prev
		} else {
			delete(s.writes, e.key)
		}
	}
}

// Commit persists pending writes into the given store and resets the journal.
func (s *State) Commit(store kv.Putter) error {
	batch := store.NewBatch()
	for key, raw := range s.writes {
		if len(raw) == 0 {
			if err := batch.Delete(key.Bytes()); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(key.Bytes(), raw); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	for key, raw := range s.writes {
		s.cache[key] = raw
	}
	s.writes = make(map[props.Bytes32]rlp.RawValue)
	s.journal = s.journal[:0]
	return nil
}
