// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible token ledger persisted in protocol
// state. Both the base token and the derived token are instances of it,
// under their own storage namespaces.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

// Ledger is a persisted fungible token ledger.
type Ledger struct {
	name     string
	balances *storage.Mapping[props.Address, *big.Int]
	supply   *storage.Uint256
}

// New creates a token ledger under its own namespace.
func New(name string, st *state.State) *Ledger {
	ctx := storage.NewContext("token:"+name, st)
	return &Ledger{
		name:     name,
		balances: storage.NewMapping[props.Address, *big.Int](ctx, "balances"),
		supply:   storage.NewUint256(ctx, "supply"),
	}
}

// Name returns the ledger's name.
func (l *Ledger) Name() string {
	return l.name
}

// BalanceOf returns the balance of an account.
func (l *Ledger) BalanceOf(account props.Address) (*big.Int, error) {
	b, err := l.balances.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if b == nil {
		b = big.NewInt(0)
	}
	return b, nil
}

// TotalSupply returns the minted supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.supply.Get()
}

// Mint credits an account, growing total supply. The supply must stay
// below the protocol cap.
func (l *Ledger) Mint(to props.Address, amount *big.Int) error {
	supply, err := l.supply.Get()
	if err != nil {
		return err
	}
	next := new(big.Int).Add(supply, amount)
	if next.Cmp(props.MaxTokenSupply) > 0 {
		return reverts.Policy("%s supply would exceed the cap", l.name)
	}
	l.supply.Set(next)
	balance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, new(big.Int).Add(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// MintReward credits a validator reward.
func (l *Ledger) MintReward(to props.Address, amount *big.Int) error {
	return l.Mint(to, amount)
}

// Burn debits an account, shrinking total supply.
func (l *Ledger) Burn(from props.Address, amount *big.Int) error {
	balance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient %s balance of %s", l.name, from)
	}
	if err := l.balances.Set(from, new(big.Int).Sub(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	if err := l.supply.Sub(amount); err != nil {
		return errors.Wrap(err, "failed to update supply")
	}
	return nil
}

// Transfer moves amount between accounts.
func (l *Ledger) Transfer(from, to props.Address, amount *big.Int) error {
	fromBalance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient %s balance of %s", l.name, from)
	}
	if err := l.balances.Set(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	toBalance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, new(big.Int).Add(toBalance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}
