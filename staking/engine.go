// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the stake accounting engine, the central
// entry point translating user-facing stake, claim and escrow
// instructions into consistent updates across the per-app stake ledger,
// the per-app protocol pool and the user-level protocol pool backing the
// derived token supply.
//
// Every public mutating operation runs under a state checkpoint and
// reverts wholly on failure. Collaborators are in-process interfaces with
// propagate-on-failure semantics; deployments where the pools and tokens
// live in independent services would need an explicit staging or
// compensation protocol on top, which is out of scope here.
package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/livethelifetv/props-protocol/escrow"
	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/metrics"
	"github.com/livethelifetv/props-protocol/params"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
)

var (
	logger = log.New("pkg", "staking")

	operationCounter = metrics.CounterVec("staking_operation_count", []string{"op", "outcome"})
)

// Collaborators groups the external contracts the engine calls into.
type Collaborators struct {
	Token           Token
	Derived         DerivedToken
	Pools           Pools
	ProtocolAppPool Pool
	UserPool        Pool
	Distributor     RewardsDistributor
	Allocations     Allocations
	Validators      Roster
	RewardedApps    Roster
}

// Engine is the stake accounting engine.
type Engine struct {
	*Ledger

	state  *state.State
	params *params.Params
	clock  *params.Clock
	escrow *escrow.Escrow

	token           Token
	derived         DerivedToken
	pools           Pools
	protocolAppPool Pool
	userPool        Pool
	distributor     RewardsDistributor
	allocations     Allocations
	validators      Roster
	rewardedApps    Roster

	// vault holds staked principal; wallet transfers run between it and
	// the staker's account.
	vault props.Address
	sink  events.Sink
}

// New creates the stake accounting engine.
func New(
	st *state.State,
	prm *params.Params,
	clock *params.Clock,
	esc *escrow.Escrow,
	collaborators Collaborators,
	vault props.Address,
	sink events.Sink,
) *Engine {
	return &Engine{
		Ledger:          NewLedger(st),
		state:           st,
		params:          prm,
		clock:           clock,
		escrow:          esc,
		token:           collaborators.Token,
		derived:         collaborators.Derived,
		pools:           collaborators.Pools,
		protocolAppPool: collaborators.ProtocolAppPool,
		userPool:        collaborators.UserPool,
		distributor:     collaborators.Distributor,
		allocations:     collaborators.Allocations,
		validators:      collaborators.Validators,
		rewardedApps:    collaborators.RewardedApps,
		vault:           vault,
		sink:            sink,
	}
}

// EscrowOf returns the escrow record of the account.
func (e *Engine) EscrowOf(account props.Address) (*escrow.Record, error) {
	return e.escrow.Get(account)
}

//
// Stake operations
//

// Stake adjusts the caller's own principal stakes, funding any net new
// stake from the caller's wallet.
func (e *Engine) Stake(caller props.Address, adjustments []Adjustment, now uint64) error {
	return e.run("stake", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		return e.adjustStakes(caller, caller, caller, adjustments, false, now)
	})
}

// StakeOnBehalf stakes the caller's principal into apps for the benefit of
// another account. Only staking entries are allowed: the caller funds the
// position but must not be able to unwind the beneficiary's stakes.
func (e *Engine) StakeOnBehalf(caller, account props.Address, adjustments []Adjustment, now uint64) error {
	return e.run("stake_on_behalf", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		for _, adj := range adjustments {
			if adj.Kind != AdjustStake {
				return reverts.Auth("on-behalf staking cannot unstake")
			}
		}
		return e.adjustStakes(caller, account, caller, adjustments, false, now)
	})
}

// StakeAsDelegate rebalances the delegator's principal stakes. Any entry
// that would pull new principal from the delegator's wallet, or push funds
// back to it, is rejected inside the adjustment.
func (e *Engine) StakeAsDelegate(caller, account props.Address, adjustments []Adjustment, now uint64) error {
	return e.run("stake_as_delegate", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		if err := e.requireDelegate(caller, account); err != nil {
			return err
		}
		return e.adjustStakes(caller, account, account, adjustments, false, now)
	})
}

// StakeRewards adjusts the caller's reward-capital stakes, funding any net
// new stake from the caller's escrowed rewards without resetting the
// escrow timer.
func (e *Engine) StakeRewards(caller props.Address, adjustments []Adjustment, now uint64) error {
	return e.run("stake_rewards", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		return e.adjustStakes(caller, caller, caller, adjustments, true, now)
	})
}

// StakeRewardsAsDelegate rebalances the delegator's reward-capital stakes,
// drawing from and returning to the delegator's escrow.
func (e *Engine) StakeRewardsAsDelegate(caller, account props.Address, adjustments []Adjustment, now uint64) error {
	return e.run("stake_rewards_as_delegate", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		if err := e.requireDelegate(caller, account); err != nil {
			return err
		}
		return e.adjustStakes(caller, account, account, adjustments, true, now)
	})
}

//
// Escrow and delegation
//

// WithdrawEscrow releases the caller's escrowed rewards to the wallet once
// the unlock time has passed. Only the funds owner may withdraw.
func (e *Engine) WithdrawEscrow(caller props.Address, now uint64) error {
	return e.run("withdraw_escrow", func() error {
		if err := e.requireActive(); err != nil {
			return err
		}
		amount, err := e.escrow.Withdraw(caller, now)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return nil
		}
		return e.token.Transfer(e.vault, caller, amount)
	})
}

// SetDelegate assigns the caller's delegate, replacing any previous one.
func (e *Engine) SetDelegate(caller, delegate props.Address) error {
	return e.run("set_delegate", func() error {
		if delegate.IsZero() || delegate == caller {
			return reverts.InvalidState("invalid delegate address")
		}
		if err := e.delegates.Set(caller, delegate); err != nil {
			return err
		}
		e.sink.Emit(events.DelegateChanged{Account: caller, Delegate: delegate})
		return nil
	})
}

// ClearDelegate removes the caller's delegate.
func (e *Engine) ClearDelegate(caller props.Address) error {
	return e.run("clear_delegate", func() error {
		if err := e.delegates.Clear(caller); err != nil {
			return err
		}
		e.sink.Emit(events.DelegateChanged{Account: caller})
		return nil
	})
}

//
// Privileged operations
//

// RegisterApp registers a new app with its staking pool. Controller only;
// the registration is immutable once set.
func (e *Engine) RegisterApp(caller, app, owner, pool props.Address) error {
	return e.run("register_app", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		existing, err := e.AppOf(app)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return reverts.InvalidState("app %s already registered", app)
		}
		if owner.IsZero() || pool.IsZero() {
			return reverts.InvalidState("app owner and pool must not be zero")
		}
		if err := e.apps.Set(app, &App{Owner: owner, Pool: pool}); err != nil {
			return err
		}
		e.sink.Emit(events.AppRegistered{App: app, Owner: owner, Pool: pool})
		return nil
	})
}

// SetWhitelisted toggles whether new principal may be staked to the app.
// Blacklisting never blocks withdrawals of existing stakes.
func (e *Engine) SetWhitelisted(caller, app props.Address, whitelisted bool) error {
	return e.run("set_whitelisted", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		rec, err := e.AppOf(app)
		if err != nil {
			return err
		}
		if rec.IsEmpty() {
			return reverts.InvalidState("app %s is not registered", app)
		}
		if err := e.whitelist.Set(app, whitelisted); err != nil {
			return err
		}
		e.sink.Emit(events.AppWhitelistUpdated{App: app, Whitelisted: whitelisted})
		return nil
	})
}

// SetParameter schedules a protocol parameter change. Controller only.
func (e *Engine) SetParameter(caller props.Address, key props.Bytes32, value *big.Int, effectiveDay uint64) error {
	return e.run("set_parameter", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		if value == nil || value.Sign() < 0 {
			return reverts.Integrity("parameter value out of representable range")
		}
		return e.params.Set(key, value, effectiveDay)
	})
}

// Pause suspends staking operations. Guardian only.
func (e *Engine) Pause(caller props.Address) error {
	return e.run("pause", func() error {
		if err := e.requireGuardian(caller); err != nil {
			return err
		}
		return e.paused.Set(true)
	})
}

// Unpause resumes staking operations. Guardian only.
func (e *Engine) Unpause(caller props.Address) error {
	return e.run("unpause", func() error {
		if err := e.requireGuardian(caller); err != nil {
			return err
		}
		return e.paused.Set(false)
	})
}

// SetController hands the controller role to a new address.
func (e *Engine) SetController(caller, controller props.Address) error {
	return e.run("set_controller", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		if controller.IsZero() {
			return reverts.InvalidState("controller must not be zero")
		}
		e.controller.Set(controller)
		return nil
	})
}

// SetGuardian hands the guardian role to a new address. Controller only.
func (e *Engine) SetGuardian(caller, guardian props.Address) error {
	return e.run("set_guardian", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		e.guardian.Set(guardian)
		return nil
	})
}

// SetValidators installs the validator list effective on the given day.
// Controller only; the day must not precede the present one.
func (e *Engine) SetValidators(caller props.Address, day uint64, members []props.Address, now uint64) error {
	return e.run("set_validators", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		if err := validateMembers(members); err != nil {
			return err
		}
		return e.setRoster(e.validators, day, members, now)
	})
}

// SetRewardedApps installs the list of apps eligible for daily reward
// allocations effective on the given day. Controller only; every member
// must be a registered app.
func (e *Engine) SetRewardedApps(caller props.Address, day uint64, members []props.Address, now uint64) error {
	return e.run("set_rewarded_apps", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		if err := validateMembers(members); err != nil {
			return err
		}
		for _, app := range members {
			rec, err := e.AppOf(app)
			if err != nil {
				return err
			}
			if rec.IsEmpty() {
				return reverts.InvalidState("app %s is not registered", app)
			}
		}
		return e.setRoster(e.rewardedApps, day, members, now)
	})
}

func (e *Engine) setRoster(r Roster, day uint64, members []props.Address, now uint64) error {
	currentDay, err := e.clock.CurrentDay(now)
	if err != nil {
		return err
	}
	return r.Set(day, members, currentDay)
}

func validateMembers(members []props.Address) error {
	if len(members) == 0 {
		return reverts.Integrity("entity list must not be empty")
	}
	for _, m := range members {
		if m.IsZero() {
			return reverts.Integrity("entity list must not contain the zero address")
		}
	}
	return nil
}

// DistributeDailyRewards pushes a finalized day's reward emission into the
// protocol pools and swaps the intermediate reward unit into the base
// token. Controller only; the day must have a canonical allocation.
func (e *Engine) DistributeDailyRewards(caller props.Address, day uint64, appPoolAddr, userPoolAddr props.Address) error {
	return e.run("distribute_daily_rewards", func() error {
		if err := e.requireController(caller); err != nil {
			return err
		}
		canonical, err := e.allocations.CanonicalHash(day)
		if err != nil {
			return err
		}
		if canonical.IsZero() {
			return reverts.InvalidState("rewards day %d is not finalized", day)
		}
		appPct, err := e.params.Get(props.KeyAppRewardsPercent, day)
		if err != nil {
			return err
		}
		userPct, err := e.params.Get(props.KeyUserRewardsPercent, day)
		if err != nil {
			return err
		}
		if err := e.distributor.DistributeRewards(appPoolAddr, appPct, userPoolAddr, userPct); err != nil {
			return err
		}
		return e.distributor.Swap(e.vault)
	})
}

//
// Guards
//

func (e *Engine) requireActive() error {
	paused, err := e.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.InvalidState("staking is paused")
	}
	return nil
}

func (e *Engine) requireDelegate(caller, account props.Address) error {
	ok, err := e.isDelegateOf(caller, account)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Auth("caller is not the delegate of %s", account)
	}
	return nil
}

func (e *Engine) requireController(caller props.Address) error {
	controller, err := e.Controller()
	if err != nil {
		return err
	}
	if controller.IsZero() || caller != controller {
		return reverts.Auth("caller is not the controller")
	}
	return nil
}

func (e *Engine) requireGuardian(caller props.Address) error {
	guardian, err := e.Guardian()
	if err != nil {
		return err
	}
	if guardian.IsZero() || caller != guardian {
		return reverts.Auth("caller is not the guardian")
	}
	return nil
}

// run executes one public operation under a checkpoint, reverting all
// partial writes on failure.
func (e *Engine) run(op string, fn func() error) error {
	checkpoint := e.state.NewCheckpoint()
	if err := fn(); err != nil {
		e.state.RevertTo(checkpoint)
		logger.Info("operation rejected", "op", op, "error", err)
		operationCounter.AddWithLabel(1, map[string]string{"op": op, "outcome": "rejected"})
		return err
	}
	logger.Debug("operation applied", "op", op)
	operationCounter.AddWithLabel(1, map[string]string{"op": op, "outcome": "ok"})
	return nil
}
