// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements persisted staking pools with accumulator-based
// reward accrual.
//
// Rewards distributed while an account is staked accrue in proportion to
// its share of the pool. The pool keeps a global reward-per-token
// accumulator and a per-account snapshot of it; an account's unrealized
// reward is its stake times the accumulator delta since its snapshot,
// settled into a realized balance whenever its stake changes.
package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

// accrualScale keeps accumulator precision through integer division.
var accrualScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Pool is one persisted staking pool.
type Pool struct {
	addr props.Address

	staked         *storage.Mapping[props.Address, *big.Int]
	snapshots      *storage.Mapping[props.Address, *big.Int]
	realized       *storage.Mapping[props.Address, *big.Int]
	totalStaked    *storage.Uint256
	rewardPerToken *storage.Uint256
	// carry holds rewards distributed while the pool was empty, folded
	// into the next distribution that has stakers.
	carry *storage.Uint256
}

// New binds the pool persisted under the given address.
func New(addr props.Address, st *state.State) *Pool {
	ctx := storage.NewContext("pool:"+addr.String(), st)
	return &Pool{
		addr:           addr,
		staked:         storage.NewMapping[props.Address, *big.Int](ctx, "staked"),
		snapshots:      storage.NewMapping[props.Address, *big.Int](ctx, "snapshots"),
		realized:       storage.NewMapping[props.Address, *big.Int](ctx, "realized"),
		totalStaked:    storage.NewUint256(ctx, "total-staked"),
		rewardPerToken: storage.NewUint256(ctx, "reward-per-token"),
		carry:          storage.NewUint256(ctx, "carry"),
	}
}

// Address returns the pool's address.
func (p *Pool) Address() props.Address {
	return p.addr
}

// StakedOf returns the account's staked balance.
func (p *Pool) StakedOf(account props.Address) (*big.Int, error) {
	s, err := p.staked.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staked balance")
	}
	if s == nil {
		s = big.NewInt(0)
	}
	return s, nil
}

// TotalStaked returns the pool-wide staked balance.
func (p *Pool) TotalStaked() (*big.Int, error) {
	return p.totalStaked.Get()
}

// Stake adds to the account's staked balance.
func (p *Pool) Stake(account props.Address, amount *big.Int) error {
	staked, err := p.settle(account)
	if err != nil {
		return err
	}
	if err := p.staked.Set(account, new(big.Int).Add(staked, amount)); err != nil {
		return errors.Wrap(err, "failed to set staked balance")
	}
	if err := p.totalStaked.Add(amount); err != nil {
		return err
	}
	return nil
}

// Withdraw removes from the account's staked balance.
func (p *Pool) Withdraw(account props.Address, amount *big.Int) error {
	staked, err := p.settle(account)
	if err != nil {
		return err
	}
	if staked.Cmp(amount) < 0 {
		return reverts.Insufficient("insufficient pool stake of %s", account)
	}
	if err := p.staked.Set(account, new(big.Int).Sub(staked, amount)); err != nil {
		return errors.Wrap(err, "failed to set staked balance")
	}
	if err := p.totalStaked.Sub(amount); err != nil {
		return errors.Wrap(err, "failed to update total staked")
	}
	return nil
}

// Earned returns the account's accrued rewards.
func (p *Pool) Earned(account props.Address) (*big.Int, error) {
	realized, err := p.realizedOf(account)
	if err != nil {
		return nil, err
	}
	unrealized, err := p.unrealizedOf(account)
	if err != nil {
		return nil, err
	}
	return realized.Add(realized, unrealized), nil
}

// ClaimReward zeroes and returns the account's accrued rewards.
func (p *Pool) ClaimReward(account props.Address) (*big.Int, error) {
	if _, err := p.settle(account); err != nil {
		return nil, err
	}
	realized, err := p.realizedOf(account)
	if err != nil {
		return nil, err
	}
	if realized.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if err := p.realized.Set(account, big.NewInt(0)); err != nil {
		return nil, errors.Wrap(err, "failed to reset realized reward")
	}
	return realized, nil
}

// Distribute spreads a reward amount over the current stakers. While the
// pool is empty the amount carries over to the next distribution.
func (p *Pool) Distribute(amount *big.Int) error {
	total, err := p.totalStaked.Get()
	if err != nil {
		return err
	}
	carry, err := p.carry.Get()
	if err != nil {
		return err
	}
	budget := new(big.Int).Add(carry, amount)
	if total.Sign() == 0 {
		p.carry.Set(budget)
		return nil
	}
	delta := new(big.Int).Mul(budget, accrualScale)
	delta.Div(delta, total)
	if err := p.rewardPerToken.Add(delta); err != nil {
		return err
	}
	// the sub-unit division remainder carries over
	spent := new(big.Int).Mul(delta, total)
	spent.Div(spent, accrualScale)
	p.carry.Set(budget.Sub(budget, spent))
	return nil
}

// settle realizes the account's unrealized rewards and refreshes its
// accumulator snapshot, returning the staked balance.
func (p *Pool) settle(account props.Address) (*big.Int, error) {
	unrealized, err := p.unrealizedOf(account)
	if err != nil {
		return nil, err
	}
	if unrealized.Sign() > 0 {
		realized, err := p.realizedOf(account)
		if err != nil {
			return nil, err
		}
		if err := p.realized.Set(account, realized.Add(realized, unrealized)); err != nil {
			return nil, errors.Wrap(err, "failed to set realized reward")
		}
	}
	accumulator, err := p.rewardPerToken.Get()
	if err != nil {
		return nil, err
	}
	if err := p.snapshots.Set(account, accumulator); err != nil {
		return nil, errors.Wrap(err, "failed to set accrual snapshot")
	}
	return p.StakedOf(account)
}

func (p *Pool) realizedOf(account props.Address) (*big.Int, error) {
	r, err := p.realized.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get realized reward")
	}
	if r == nil {
		r = big.NewInt(0)
	}
	return r, nil
}

func (p *Pool) unrealizedOf(account props.Address) (*big.Int, error) {
	staked, err := p.StakedOf(account)
	if err != nil {
		return nil, err
	}
	if staked.Sign() == 0 {
		return big.NewInt(0), nil
	}
	accumulator, err := p.rewardPerToken.Get()
	if err != nil {
		return nil, err
	}
	snapshot, err := p.snapshots.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get accrual snapshot")
	}
	if snapshot == nil {
		snapshot = big.NewInt(0)
	}
	accrued := new(big.Int).Sub(accumulator, snapshot)
	accrued.Mul(accrued, staked)
	return accrued.Div(accrued, accrualScale), nil
}

// Registry resolves pool addresses to persisted pools over one state.
type Registry struct {
	state *state.State
}

// NewRegistry creates a pool registry over the given state.
func NewRegistry(st *state.State) *Registry {
	return &Registry{state: st}
}

// Lookup binds the pool persisted under the given address.
func (r *Registry) Lookup(addr props.Address) *Pool {
	return New(addr, r.state)
}
