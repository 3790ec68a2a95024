// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fortest provides in-memory fakes of the protocol's external
// collaborators: the base token, the derived token, staking pools and the
// rewards distributor.
package fortest

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/staking"
)

// Token is an in-memory fungible base token.
type Token struct {
	balances map[props.Address]*big.Int
	supply   *big.Int
}

// NewToken creates an empty token ledger.
func NewToken() *Token {
	return &Token{balances: make(map[props.Address]*big.Int), supply: big.NewInt(0)}
}

// Mint credits an account out of thin air, growing total supply.
func (t *Token) Mint(to props.Address, amount *big.Int) {
	t.balances[to] = new(big.Int).Add(t.BalanceOf(to), amount)
	t.supply = new(big.Int).Add(t.supply, amount)
}

// MintReward credits a validator reward, growing total supply.
func (t *Token) MintReward(to props.Address, amount *big.Int) error {
	t.Mint(to, amount)
	return nil
}

// Transfer moves amount between accounts.
func (t *Token) Transfer(from, to props.Address, amount *big.Int) error {
	balance := t.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient token balance of %s", from)
	}
	t.balances[from] = new(big.Int).Sub(balance, amount)
	t.balances[to] = new(big.Int).Add(t.BalanceOf(to), amount)
	return nil
}

// BalanceOf returns the balance of an account.
func (t *Token) BalanceOf(account props.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return big.NewInt(0)
}

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() (*big.Int, error) {
	return new(big.Int).Set(t.supply), nil
}

// DerivedToken is an in-memory derived token with engine-controlled
// mint and burn.
type DerivedToken struct {
	balances map[props.Address]*big.Int
	supply   *big.Int
}

// NewDerivedToken creates an empty derived token ledger.
func NewDerivedToken() *DerivedToken {
	return &DerivedToken{balances: make(map[props.Address]*big.Int), supply: big.NewInt(0)}
}

// Mint credits an account, growing total supply.
func (t *DerivedToken) Mint(to props.Address, amount *big.Int) error {
	t.balances[to] = new(big.Int).Add(t.BalanceOf(to), amount)
	t.supply = new(big.Int).Add(t.supply, amount)
	return nil
}

// Burn debits an account, shrinking total supply.
func (t *DerivedToken) Burn(from props.Address, amount *big.Int) error {
	balance := t.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient derived balance of %s", from)
	}
	t.balances[from] = new(big.Int).Sub(balance, amount)
	t.supply = new(big.Int).Sub(t.supply, amount)
	return nil
}

// BalanceOf returns the balance of an account.
func (t *DerivedToken) BalanceOf(account props.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return big.NewInt(0)
}

// TotalSupply returns the minted supply.
func (t *DerivedToken) TotalSupply() (*big.Int, error) {
	return new(big.Int).Set(t.supply), nil
}

// Pool is an in-memory staking pool tracking staked balances and
// test-seeded accrued rewards.
type Pool struct {
	staked map[props.Address]*big.Int
	earned map[props.Address]*big.Int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{staked: make(map[props.Address]*big.Int), earned: make(map[props.Address]*big.Int)}
}

// Stake adds to the account's staked balance.
func (p *Pool) Stake(account props.Address, amount *big.Int) error {
	p.staked[account] = new(big.Int).Add(p.StakedOf(account), amount)
	return nil
}

// Withdraw removes from the account's staked balance.
func (p *Pool) Withdraw(account props.Address, amount *big.Int) error {
	staked := p.StakedOf(account)
	if staked.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient pool stake of %s", account)
	}
	p.staked[account] = new(big.Int).Sub(staked, amount)
	return nil
}

// Earned returns the account's accrued rewards.
func (p *Pool) Earned(account props.Address) (*big.Int, error) {
	if e, ok := p.earned[account]; ok {
		return new(big.Int).Set(e), nil
	}
	return big.NewInt(0), nil
}

// ClaimReward zeroes and returns the account's accrued rewards.
func (p *Pool) ClaimReward(account props.Address) (*big.Int, error) {
	claimed, _ := p.Earned(account)
	p.earned[account] = big.NewInt(0)
	return claimed, nil
}

// StakedOf returns the account's staked balance.
func (p *Pool) StakedOf(account props.Address) *big.Int {
	if s, ok := p.staked[account]; ok {
		return s
	}
	return big.NewInt(0)
}

// SetEarned seeds the account's accrued rewards.
func (p *Pool) SetEarned(account props.Address, amount *big.Int) {
	p.earned[account] = new(big.Int).Set(amount)
}

// Pools is an in-memory pool registry keyed by pool address.
type Pools struct {
	pools map[props.Address]*Pool
}

// NewPools creates an empty registry.
func NewPools() *Pools {
	return &Pools{pools: make(map[props.Address]*Pool)}
}

// Add registers a new pool at the given address and returns it.
func (r *Pools) Add(addr props.Address) *Pool {
	pool := NewPool()
	r.pools[addr] = pool
	return pool
}

// Get resolves a pool address.
func (r *Pools) Get(addr props.Address) (staking.Pool, error) {
	pool, ok := r.pools[addr]
	if !ok {
		return nil, reverts.InvalidState("no pool at %s", addr)
	}
	return pool, nil
}

// Distribution records one DistributeRewards call.
type Distribution struct {
	PoolA    props.Address
	PercentA *big.Int
	PoolB    props.Address
	PercentB *big.Int
}

// Distributor records reward distribution calls.
type Distributor struct {
	Distributions []Distribution
	Swaps         []props.Address
}

// NewDistributor creates an empty recorder.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// DistributeRewards records the call.
func (d *Distributor) DistributeRewards(poolA props.Address, percentA *big.Int, poolB props.Address, percentB *big.Int) error {
	d.Distributions = append(d.Distributions, Distribution{poolA, percentA, poolB, percentB})
	return nil
}

// Swap records the recipient.
func (d *Distributor) Swap(recipient props.Address) error {
	d.Swaps = append(d.Swaps, recipient)
	return nil
}
