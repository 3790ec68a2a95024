// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import (
	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/pool"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/rewards"
	"github.com/livethelifetv/props-protocol/staking"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/token"
)

// Well-known addresses of the persisted protocol-level pools.
var (
	ProtocolAppPoolAddress = props.BytesToAddress([]byte("app-protocol-pool"))
	UserPoolAddress        = props.BytesToAddress([]byte("user-protocol-pool"))
)

// Builtin is a protocol wired over persisted in-state collaborators: the
// token ledgers, the pool registry and the reward distributor all live in
// the same state as the engines.
type Builtin struct {
	*Protocol

	Token       *token.Ledger
	Derived     *token.Ledger
	Pools       *pool.Registry
	Distributor *rewards.Distributor
}

// NewBuiltin wires a protocol with persisted collaborators.
func NewBuiltin(st *state.State, vault props.Address, sink events.Sink) *Builtin {
	base := token.New("props", st)
	derived := token.New("sprops", st)
	pools := pool.NewRegistry(st)
	distributor := rewards.New(st, base, pools)

	p := New(st, Collaborators{
		Token:           base,
		Derived:         derived,
		Pools:           poolResolver{pools},
		ProtocolAppPool: pools.Lookup(ProtocolAppPoolAddress),
		UserPool:        pools.Lookup(UserPoolAddress),
		Distributor:     distributor,
		Supply:          base,
		Minter:          base,
	}, vault, sink)

	return &Builtin{
		Protocol:    p,
		Token:       base,
		Derived:     derived,
		Pools:       pools,
		Distributor: distributor,
	}
}

// poolResolver adapts the persisted pool registry to the staking engine.
type poolResolver struct {
	registry *pool.Registry
}

func (r poolResolver) Get(addr props.Address) (staking.Pool, error) {
	return r.registry.Lookup(addr), nil
}
