// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package protocol assembles the protocol engines over one shared state.
package protocol

import (
	"github.com/livethelifetv/props-protocol/escrow"
	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/oracle"
	"github.com/livethelifetv/props-protocol/params"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/roster"
	"github.com/livethelifetv/props-protocol/staking"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

// Collaborators groups the external contracts the protocol calls into.
type Collaborators struct {
	Token           staking.Token
	Derived         staking.DerivedToken
	Pools           staking.Pools
	ProtocolAppPool staking.Pool
	UserPool        staking.Pool
	Distributor     staking.RewardsDistributor
	Supply          oracle.SupplyTracker
	Minter          oracle.RewardsMinter
}

// Protocol bundles the engines sharing one state.
type Protocol struct {
	State      *state.State
	Params     *params.Params
	Clock      *params.Clock
	Escrow     *escrow.Escrow
	Validators *roster.Roster
	Apps       *roster.Roster
	Staking    *staking.Engine
	Oracle     *oracle.Engine
}

// New wires up the protocol engines over the given state.
func New(st *state.State, c Collaborators, vault props.Address, sink events.Sink) *Protocol {
	paramsCtx := storage.NewContext("params", st)
	prm := params.New(paramsCtx)
	clock := params.NewClock(paramsCtx)
	esc := escrow.New(storage.NewContext("escrow", st), sink)
	rosterCtx := storage.NewContext("roster", st)
	validators := roster.New(rosterCtx, "validators")
	apps := roster.New(rosterCtx, "apps")

	orc := oracle.New(st, prm, clock, validators, c.Supply, c.Minter, sink)
	stk := staking.New(st, prm, clock, esc, staking.Collaborators{
		Token:           c.Token,
		Derived:         c.Derived,
		Pools:           c.Pools,
		ProtocolAppPool: c.ProtocolAppPool,
		UserPool:        c.UserPool,
		Distributor:     c.Distributor,
		Allocations:     orc,
		Validators:      validators,
		RewardedApps:    apps,
	}, vault, sink)

	return &Protocol{
		State:      st,
		Params:     prm,
		Clock:      clock,
		Escrow:     esc,
		Validators: validators,
		Apps:       apps,
		Staking:    stk,
		Oracle:     orc,
	}
}
