// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
)

//
// Claim operations
//

// ClaimAppRewards collects the account's accrued rewards from an app's
// staking pool into the account's escrow, resetting the escrow lock.
// Callable by the account or its delegate; either way the rewards land in
// the account's own escrow.
func (e *Engine) ClaimAppRewards(caller, account, app props.Address, now uint64) error {
	return e.run("claim_app_rewards", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		if err := e.requireDelegate(caller, account); err != nil {
			return err
		}
		pool, err := e.appPoolOf(app)
		if err != nil {
			return err
		}
		amount, err := pool.ClaimReward(account)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		unlock, err := e.escrowUnlockTime(now)
		if err != nil {
			return err
		}
		return e.escrow.Deposit(account, amount, unlock, true)
	})
}

// ClaimAppProtocolRewards collects the rewards earned by an app's
// aggregate stake in the per-app protocol pool, paying them to the app
// owner's wallet directly. App owner only; protocol rewards are the app's
// operating revenue and never pass through escrow.
func (e *Engine) ClaimAppProtocolRewards(caller, app props.Address) error {
	return e.run("claim_app_protocol_rewards", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		rec, err := e.AppOf(app)
		if err != nil {
			return err
		}
		if rec.IsEmpty() {
			return reverts.InvalidState("app %s is not registered", app)
		}
		if caller != rec.Owner {
			return reverts.Auth("caller is not the app owner")
		}
		amount, err := e.protocolAppPool.ClaimReward(app)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		return e.token.Transfer(e.vault, rec.Owner, amount)
	})
}

// ClaimUserRewards collects the account's accrued rewards from the
// user-level protocol pool into the account's escrow, resetting the lock.
func (e *Engine) ClaimUserRewards(caller props.Address, now uint64) error {
	return e.run("claim_user_rewards", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		amount, err := e.userPool.ClaimReward(caller)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		unlock, err := e.escrowUnlockTime(now)
		if err != nil {
			return err
		}
		return e.escrow.Deposit(caller, amount, unlock, true)
	})
}

// ClaimUserRewardsAndStake collects the account's user-level rewards and
// immediately restakes them across apps by percentage. The percentages are
// in parts per million and must sum to exactly PpmUnit; the last app
// absorbs the division remainder so the claimed amount restakes in full.
// The claim passes through escrow without resetting the lock: compounding
// carries no cooldown penalty, only rewards left sitting in escrow do.
// Callable by the account or its delegate, since restaking claimed rewards
// moves no principal.
func (e *Engine) ClaimUserRewardsAndStake(
	caller, account props.Address,
	apps []props.Address,
	percentages []uint64,
	now uint64,
) error {
	return e.run("claim_user_rewards_and_stake", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		if err := e.requireDelegate(caller, account); err != nil {
			return err
		}
		if len(apps) == 0 || len(apps) != len(percentages) {
			return reverts.Integrity("app and percentage lists must be non-empty and of equal length")
		}
		var sum uint64
		for _, pct := range percentages {
			sum += pct
		}
		if sum != props.PpmUnit {
			return reverts.Integrity("percentages must sum to %d ppm, got %d", props.PpmUnit, sum)
		}

		claimed, err := e.userPool.ClaimReward(account)
		if err != nil {
			return err
		}
		if claimed.Sign() == 0 {
			return nil
		}
		if err := e.escrow.Deposit(account, claimed, 0, false); err != nil {
			return err
		}

		ppm := new(big.Int).SetUint64(props.PpmUnit)
		remainder := new(big.Int).Set(claimed)
		adjustments := make([]Adjustment, 0, len(apps))
		for i, app := range apps {
			var amount *big.Int
			if i == len(apps)-1 {
				amount = remainder
			} else {
				amount = new(big.Int).Mul(claimed, new(big.Int).SetUint64(percentages[i]))
				amount.Div(amount, ppm)
				remainder = new(big.Int).Sub(remainder, amount)
			}
			adjustments = append(adjustments, Stake(app, amount))
		}
		return e.adjustStakes(caller, account, account, adjustments, true, now)
	})
}
