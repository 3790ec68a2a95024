// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/props"
)

// App is the registration record of one rewarded app. It is immutable once
// set; only the whitelist flag (kept separately) is revocable.
type App struct {
	Owner props.Address
	Pool  props.Address
}

// IsEmpty returns whether the entry can be treated as empty.
func (a *App) IsEmpty() bool {
	return a.Owner.IsZero() && a.Pool.IsZero()
}

// AdjustKind tags one entry of a stake adjustment batch.
type AdjustKind uint8

const (
	// AdjustStake commits new capital to an app.
	AdjustStake AdjustKind = iota + 1
	// AdjustUnstake withdraws previously committed capital from an app.
	AdjustUnstake
)

// Adjustment is one signed stake delta, expressed as an explicit
// stake/unstake tag and a non-negative magnitude so the two-pass netting
// branches stay type-safe.
type Adjustment struct {
	App    props.Address
	Kind   AdjustKind
	Amount *big.Int
}

// Stake builds a staking adjustment.
func Stake(app props.Address, amount *big.Int) Adjustment {
	return Adjustment{App: app, Kind: AdjustStake, Amount: amount}
}

// Unstake builds an unstaking adjustment.
func Unstake(app props.Address, amount *big.Int) Adjustment {
	return Adjustment{App: app, Kind: AdjustUnstake, Amount: amount}
}

// Token is the fungible base token, an external collaborator. Off-chain
// approval plumbing is out of scope; transfers either fully apply or fail.
type Token interface {
	Transfer(from, to props.Address, amount *big.Int) error
}

// DerivedToken is the protocol-wide voting/accounting token (sProps),
// minted 1:1 against capital committed to user-level staking. Mint and
// burn are callable only by the staking engine.
type DerivedToken interface {
	Mint(to props.Address, amount *big.Int) error
	Burn(from props.Address, amount *big.Int) error
	TotalSupply() (*big.Int, error)
}

// Pool is a staking pool with its own reward-accrual formula, an external
// collaborator.
type Pool interface {
	Stake(account props.Address, amount *big.Int) error
	Withdraw(account props.Address, amount *big.Int) error
	Earned(account props.Address) (*big.Int, error)
	ClaimReward(account props.Address) (*big.Int, error)
}

// Pools resolves a registered app's pool address to its pool.
type Pools interface {
	Get(addr props.Address) (Pool, error)
}

// RewardsDistributor is the reward-emission source, an external
// collaborator converting the escrowed reward unit into the base token.
type RewardsDistributor interface {
	DistributeRewards(poolA props.Address, percentA *big.Int, poolB props.Address, percentB *big.Int) error
	Swap(recipient props.Address) error
}

// Allocations exposes the consensus engine's finalized daily results.
type Allocations interface {
	CanonicalHash(day uint64) (props.Bytes32, error)
}

// Roster is a day-effective selected entity list. The engine gates who may
// rewrite it and pins the present day; the roll semantics live with the
// list itself.
type Roster interface {
	Set(day uint64, members []props.Address, currentDay uint64) error
}
