// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
)

// adjustStakes applies a batch of signed stake deltas across the three
// coupled ledgers: per-app stake, per-app protocol stake and the
// user-level protocol pool backing the derived token supply.
//
// The algorithm is two-pass on purpose: all unstakes run first and feed an
// in-call pool that the stake pass draws from before touching the funding
// source, so a call that both stakes and unstakes moves only the net
// difference of funds. Changing pass order changes observable behavior.
//
//   - account: the owner of the ledger entries being adjusted
//   - funder:  the wallet debited for principal shortfalls
//   - rewardCapital: use the reward-stake ledger and the account's escrow
//     instead of the principal ledger and the funder's wallet
func (e *Engine) adjustStakes(
	caller, account, funder props.Address,
	adjustments []Adjustment,
	rewardCapital bool,
	now uint64,
) error {
	if err := e.validateAdjustments(adjustments); err != nil {
		return err
	}

	unstakedPool := big.NewInt(0)

	// Unstake pass. Withdraws from the app pools immediately but leaves
	// the user-level protocol pool untouched: part of the freed capital
	// may be re-staked by the second pass.
	for _, adj := range adjustments {
		if adj.Kind != AdjustUnstake || adj.Amount.Sign() == 0 {
			continue
		}
		staked, err := e.getStake(rewardCapital, account, adj.App)
		if err != nil {
			return err
		}
		if staked.Cmp(adj.Amount) < 0 {
			return reverts.Insufficient("insufficient staked balance for app %s", adj.App)
		}
		if err := e.setStake(rewardCapital, account, adj.App, new(big.Int).Sub(staked, adj.Amount)); err != nil {
			return err
		}

		pool, err := e.appPoolOf(adj.App)
		if err != nil {
			return err
		}
		if err := pool.Withdraw(account, adj.Amount); err != nil {
			return err
		}
		if err := e.protocolAppPool.Withdraw(adj.App, adj.Amount); err != nil {
			return err
		}

		unstakedPool.Add(unstakedPool, adj.Amount)
		e.sink.Emit(events.StakeChanged{
			App:           adj.App,
			Account:       account,
			Delta:         new(big.Int).Neg(adj.Amount),
			RewardCapital: rewardCapital,
		})
	}

	// Stake pass. Satisfies each amount from the unstaked pool first; any
	// shortfall is fresh capital entering user-level protocol staking and
	// mints derived supply 1:1.
	for _, adj := range adjustments {
		if adj.Kind != AdjustStake || adj.Amount.Sign() == 0 {
			continue
		}
		whitelisted, err := e.IsWhitelisted(adj.App)
		if err != nil {
			return err
		}
		if !whitelisted {
			return reverts.Policy("app %s is not whitelisted", adj.App)
		}

		staked, err := e.getStake(rewardCapital, account, adj.App)
		if err != nil {
			return err
		}
		if err := e.setStake(rewardCapital, account, adj.App, new(big.Int).Add(staked, adj.Amount)); err != nil {
			return err
		}

		shortfall := new(big.Int).Set(adj.Amount)
		if unstakedPool.Sign() > 0 {
			avail := unstakedPool
			if avail.Cmp(shortfall) > 0 {
				avail = shortfall
			}
			drawn := new(big.Int).Set(avail)
			unstakedPool.Sub(unstakedPool, drawn)
			shortfall.Sub(shortfall, drawn)
		}
		if shortfall.Sign() > 0 {
			if rewardCapital {
				// drawing down escrow to fund a stake keeps the timer
				if err := e.escrow.DrawDown(account, shortfall); err != nil {
					return err
				}
			} else {
				// only the funds owner's own signature can move wallet funds
				if caller != funder {
					return reverts.Auth("delegate cannot stake new principal from the wallet")
				}
				if err := e.token.Transfer(funder, e.vault, shortfall); err != nil {
					return err
				}
			}
			if err := e.derived.Mint(account, shortfall); err != nil {
				return err
			}
			if err := e.userPool.Stake(account, shortfall); err != nil {
				return err
			}
		}

		pool, err := e.appPoolOf(adj.App)
		if err != nil {
			return err
		}
		if err := pool.Stake(account, adj.Amount); err != nil {
			return err
		}
		if err := e.protocolAppPool.Stake(adj.App, adj.Amount); err != nil {
			return err
		}

		e.sink.Emit(events.StakeChanged{
			App:           adj.App,
			Account:       account,
			Delta:         adj.Amount,
			RewardCapital: rewardCapital,
		})
	}

	// Reconciliation. A net unstake leaves user-level protocol staking and
	// burns the matching derived supply. Principal goes back to the wallet;
	// reward capital re-enters escrow with a fresh lock, so churning stakes
	// cannot dodge the cooldown.
	if unstakedPool.Sign() > 0 {
		if err := e.userPool.Withdraw(account, unstakedPool); err != nil {
			return err
		}
		if err := e.derived.Burn(account, unstakedPool); err != nil {
			return err
		}
		if rewardCapital {
			unlock, err := e.escrowUnlockTime(now)
			if err != nil {
				return err
			}
			if err := e.escrow.Deposit(account, unstakedPool, unlock, true); err != nil {
				return err
			}
		} else {
			if caller != account {
				return reverts.Auth("delegate cannot withdraw principal to the wallet")
			}
			if err := e.token.Transfer(e.vault, account, unstakedPool); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) validateAdjustments(adjustments []Adjustment) error {
	for _, adj := range adjustments {
		if adj.Kind != AdjustStake && adj.Kind != AdjustUnstake {
			return reverts.Integrity("adjustment has no stake/unstake tag")
		}
		if adj.Amount == nil || adj.Amount.Sign() < 0 || adj.Amount.Cmp(props.MaxStakeAmount) > 0 {
			return reverts.Integrity("adjustment amount out of representable range")
		}
		app, err := e.AppOf(adj.App)
		if err != nil {
			return err
		}
		if app.IsEmpty() {
			return reverts.InvalidState("app %s is not registered", adj.App)
		}
	}
	return nil
}

func (e *Engine) appPoolOf(app props.Address) (Pool, error) {
	rec, err := e.AppOf(app)
	if err != nil {
		return nil, err
	}
	return e.pools.Get(rec.Pool)
}

// escrowUnlockTime computes now + cooldown for escrow deposits that reset
// the rolling lock.
func (e *Engine) escrowUnlockTime(now uint64) (uint64, error) {
	day, err := e.clock.CurrentDay(now)
	if err != nil {
		return 0, err
	}
	cooldownDays, err := e.params.Get(props.KeyEscrowCooldownDays, day)
	if err != nil {
		return 0, err
	}
	daySeconds, err := e.clock.DaySeconds()
	if err != nil {
		return 0, err
	}
	return now + cooldownDays.Uint64()*daySeconds, nil
}
