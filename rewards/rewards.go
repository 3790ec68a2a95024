// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the daily reward emission source.
//
// Distribution credits the target pools' accrual accumulators with their
// percentage of the remaining supply below the cap; the matching base
// tokens are minted in one batch by the subsequent swap, so pool accrual
// and token issuance always move together within one operation.
package rewards

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/pool"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
	"github.com/livethelifetv/props-protocol/token"
)

var pphm = new(big.Int).SetUint64(props.PphmUnit)

// Distributor is the persisted reward emission source.
type Distributor struct {
	token *token.Ledger
	pools *pool.Registry

	// pending accumulates distributed-but-unminted reward amounts
	// between DistributeRewards and Swap.
	pending *storage.Uint256
}

// New creates the distributor over the given state.
func New(st *state.State, tok *token.Ledger, pools *pool.Registry) *Distributor {
	ctx := storage.NewContext("rewards", st)
	return &Distributor{
		token:   tok,
		pools:   pools,
		pending: storage.NewUint256(ctx, "pending"),
	}
}

// Pending returns the distributed-but-unminted reward amount.
func (d *Distributor) Pending() (*big.Int, error) {
	return d.pending.Get()
}

// DistributeRewards credits each pool's accrual with its percentage of the
// remaining supply below the cap.
func (d *Distributor) DistributeRewards(poolA props.Address, percentA *big.Int, poolB props.Address, percentB *big.Int) error {
	remaining, err := d.remainingSupply()
	if err != nil {
		return err
	}
	targets := []struct {
		addr    props.Address
		percent *big.Int
	}{
		{poolA, percentA},
		{poolB, percentB},
	}
	for _, t := range targets {
		amount := new(big.Int).Mul(remaining, t.percent)
		amount.Div(amount, pphm)
		if amount.Sign() == 0 {
			continue
		}
		if err := d.pools.Lookup(t.addr).Distribute(amount); err != nil {
			return err
		}
		if err := d.pending.Add(amount); err != nil {
			return err
		}
	}
	return nil
}

// Swap mints the pending reward amount to the recipient and clears it.
func (d *Distributor) Swap(recipient props.Address) error {
	pending, err := d.pending.Get()
	if err != nil {
		return err
	}
	if pending.Sign() == 0 {
		return nil
	}
	if err := d.token.Mint(recipient, pending); err != nil {
		return err
	}
	d.pending.Set(big.NewInt(0))
	return nil
}

func (d *Distributor) remainingSupply() (*big.Int, error) {
	supply, err := d.token.TotalSupply()
	if err != nil {
		return nil, err
	}
	remaining := new(big.Int).Sub(props.MaxTokenSupply, supply)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	return remaining, nil
}
