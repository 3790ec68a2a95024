// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package escrow holds claimed-but-locked reward capital per account.
//
// Deposits from reward claims reset the rolling unlock timer; draw-downs
// that immediately restake escrowed rewards leave the timer untouched, so
// compounding carries no penalty while anything reaching idle, withdrawable
// status stays behind the full lock.
package escrow

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/storage"
)

// Record is the escrow entry of one account.
type Record struct {
	Amount     *big.Int
	UnlockTime uint64
}

// IsEmpty returns whether the entry can be treated as empty.
func (r *Record) IsEmpty() bool {
	return (r.Amount == nil || r.Amount.Sign() == 0) && r.UnlockTime == 0
}

// Escrow is the rewards escrow ledger.
type Escrow struct {
	records *storage.Mapping[props.Address, *Record]
	sink    events.Sink
}

// New creates an escrow ledger in the given storage context.
func New(ctx *storage.Context, sink events.Sink) *Escrow {
	return &Escrow{
		records: storage.NewMapping[props.Address, *Record](ctx, "records"),
		sink:    sink,
	}
}

// Get returns the escrow record of the account.
func (e *Escrow) Get(account props.Address) (*Record, error) {
	rec, err := e.records.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get escrow record")
	}
	if rec.Amount == nil {
		rec.Amount = big.NewInt(0)
	}
	return rec, nil
}

// Deposit adds amount to the account's escrow balance. When reset is true
// the unlock timer is set to the supplied unlock time.
func (e *Escrow) Deposit(account props.Address, amount *big.Int, unlockTime uint64, reset bool) error {
	rec, err := e.Get(account)
	if err != nil {
		return err
	}
	rec.Amount = new(big.Int).Add(rec.Amount, amount)
	if reset {
		rec.UnlockTime = unlockTime
	}
	if err := e.records.Set(account, rec); err != nil {
		return errors.Wrap(err, "failed to set escrow record")
	}
	e.sink.Emit(events.EscrowUpdated{Account: account, Balance: rec.Amount, UnlockTime: rec.UnlockTime})
	return nil
}

// DrawDown removes amount from the account's escrow balance without
// touching the unlock timer. Used when escrowed rewards are immediately
// restaked.
func (e *Escrow) DrawDown(account props.Address, amount *big.Int) error {
	rec, err := e.Get(account)
	if err != nil {
		return err
	}
	if rec.Amount.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient escrowed rewards")
	}
	rec.Amount = new(big.Int).Sub(rec.Amount, amount)
	if err := e.records.Set(account, rec); err != nil {
		return errors.Wrap(err, "failed to set escrow record")
	}
	e.sink.Emit(events.EscrowUpdated{Account: account, Balance: rec.Amount, UnlockTime: rec.UnlockTime})
	return nil
}

// Withdraw zeroes the account's escrow balance once the unlock time has
// passed and returns the released amount. It rejects before the unlock
// time regardless of balance; a zero balance afterwards is a no-op.
func (e *Escrow) Withdraw(account props.Address, now uint64) (*big.Int, error) {
	rec, err := e.Get(account)
	if err != nil {
		return nil, err
	}
	if now < rec.UnlockTime {
		return nil, reverts.InvalidState("rewards escrow is locked")
	}
	amount := rec.Amount
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	rec.Amount = big.NewInt(0)
	if err := e.records.Set(account, rec); err != nil {
		return nil, errors.Wrap(err, "failed to set escrow record")
	}
	e.sink.Emit(events.EscrowUpdated{Account: account, Balance: rec.Amount, UnlockTime: rec.UnlockTime})
	return amount, nil
}
