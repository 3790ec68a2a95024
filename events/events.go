// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the typed side effects emitted by the protocol
// engines and the sink they are delivered to.
package events

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/props"
)

// Event is a protocol side effect observable by external consumers.
type Event interface {
	Name() string
}

// Sink receives events as operations commit them.
type Sink interface {
	Emit(Event)
}

// StakeChanged reports the signed stake delta applied to one app.
type StakeChanged struct {
	App           props.Address
	Account       props.Address
	Delta         *big.Int // positive = staked, negative = unstaked
	RewardCapital bool
}

func (StakeChanged) Name() string { return "StakeChanged" }

// EscrowUpdated reports the new escrow balance and unlock time of an account.
type EscrowUpdated struct {
	Account    props.Address
	Balance    *big.Int
	UnlockTime uint64
}

func (EscrowUpdated) Name() string { return "EscrowUpdated" }

// DelegateChanged reports a delegation assignment. A zero delegate clears it.
type DelegateChanged struct {
	Account  props.Address
	Delegate props.Address
}

func (DelegateChanged) Name() string { return "DelegateChanged" }

// AppRegistered reports a new app registration.
type AppRegistered struct {
	App   props.Address
	Owner props.Address
	Pool  props.Address
}

func (AppRegistered) Name() string { return "AppRegistered" }

// AppWhitelistUpdated reports a whitelist toggle.
type AppWhitelistUpdated struct {
	App         props.Address
	Whitelisted bool
}

func (AppWhitelistUpdated) Name() string { return "AppWhitelistUpdated" }

// RewardsHashSubmitted reports one validator confirmation of a day's
// allocation commitment.
type RewardsHashSubmitted struct {
	Day           uint64
	Hash          props.Bytes32
	Validator     props.Address
	Confirmations uint64
}

func (RewardsHashSubmitted) Name() string { return "RewardsHashSubmitted" }

// RewardsDayFinalized reports the canonical allocation of a reward day.
type RewardsDayFinalized struct {
	Day  uint64
	Hash props.Bytes32
}

func (RewardsDayFinalized) Name() string { return "RewardsDayFinalized" }

// Recorder is an in-memory sink, mainly for tests and the API layer.
type Recorder struct {
	Events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Named returns the recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// Discard returns a sink dropping all events.
func Discard() Sink {
	return nopSink{}
}
