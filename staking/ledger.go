// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

// accountApp keys the per-user per-app stake ledgers.
type accountApp struct {
	account props.Address
	app     props.Address
}

func (k accountApp) Bytes() []byte {
	b := make([]byte, 0, props.AddressLength*2)
	b = append(b, k.account.Bytes()...)
	return append(b, k.app.Bytes()...)
}

// Ledger is the root storage of the stake accounting engine. It carries no
// collaborator dependencies, so genesis can populate it before the engine
// is wired up.
type Ledger struct {
	context *storage.Context

	stakes       *storage.Mapping[accountApp, *big.Int]
	rewardStakes *storage.Mapping[accountApp, *big.Int]
	apps         *storage.Mapping[props.Address, *App]
	whitelist    *storage.Mapping[props.Address, bool]
	delegates    *storage.Mapping[props.Address, props.Address]

	controller *storage.Address
	guardian   *storage.Address
	paused     *storage.Value[bool]
}

// NewLedger creates the stake ledger bindings over the given state.
func NewLedger(st *state.State) *Ledger {
	context := storage.NewContext("staking", st)
	return &Ledger{
		context:      context,
		stakes:       storage.NewMapping[accountApp, *big.Int](context, "stakes"),
		rewardStakes: storage.NewMapping[accountApp, *big.Int](context, "reward-stakes"),
		apps:         storage.NewMapping[props.Address, *App](context, "apps"),
		whitelist:    storage.NewMapping[props.Address, bool](context, "whitelist"),
		delegates:    storage.NewMapping[props.Address, props.Address](context, "delegates"),
		controller:   storage.NewAddress(context, "controller"),
		guardian:     storage.NewAddress(context, "guardian"),
		paused:       storage.NewValue[bool](context, "paused"),
	}
}

// InitRoles sets the controller and guardian. It fails when already set.
func (l *Ledger) InitRoles(controller, guardian props.Address) error {
	existing, err := l.controller.Get()
	if err != nil {
		return err
	}
	if !existing.IsZero() {
		return reverts.InvalidState("roles already initialised")
	}
	if controller.IsZero() {
		return reverts.InvalidState("controller must not be zero")
	}
	l.controller.Set(controller)
	l.guardian.Set(guardian)
	return nil
}

// StakeOf returns the principal staked by account into app.
func (l *Ledger) StakeOf(account, app props.Address) (*big.Int, error) {
	v, err := l.stakes.Get(accountApp{account, app})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if v == nil {
		v = big.NewInt(0)
	}
	return v, nil
}

// RewardStakeOf returns the reward capital staked by account into app.
func (l *Ledger) RewardStakeOf(account, app props.Address) (*big.Int, error) {
	v, err := l.rewardStakes.Get(accountApp{account, app})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward stake")
	}
	if v == nil {
		v = big.NewInt(0)
	}
	return v, nil
}

func (l *Ledger) setStake(reward bool, account, app props.Address, value *big.Int) error {
	m := l.stakes
	if reward {
		m = l.rewardStakes
	}
	if err := m.Set(accountApp{account, app}, value); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}

func (l *Ledger) getStake(reward bool, account, app props.Address) (*big.Int, error) {
	if reward {
		return l.RewardStakeOf(account, app)
	}
	return l.StakeOf(account, app)
}

// AppOf returns the registration record of an app.
func (l *Ledger) AppOf(app props.Address) (*App, error) {
	a, err := l.apps.Get(app)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get app")
	}
	return a, nil
}

// IsWhitelisted returns whether new principal may be staked to the app.
func (l *Ledger) IsWhitelisted(app props.Address) (bool, error) {
	w, err := l.whitelist.Get(app)
	if err != nil {
		return false, errors.Wrap(err, "failed to get whitelist flag")
	}
	return w, nil
}

// DelegateOf returns the account's active delegate, zero when unset.
func (l *Ledger) DelegateOf(account props.Address) (props.Address, error) {
	d, err := l.delegates.Get(account)
	if err != nil {
		return props.Address{}, errors.Wrap(err, "failed to get delegate")
	}
	return d, nil
}

// Controller returns the controller role address.
func (l *Ledger) Controller() (props.Address, error) {
	return l.controller.Get()
}

// Guardian returns the guardian role address.
func (l *Ledger) Guardian() (props.Address, error) {
	return l.guardian.Get()
}

// IsPaused returns whether staking operations are suspended.
func (l *Ledger) IsPaused() (bool, error) {
	return l.paused.Get()
}

// isDelegateOf returns whether caller may act for account: the account
// itself always may, otherwise only its active delegate.
func (l *Ledger) isDelegateOf(caller, account props.Address) (bool, error) {
	if caller == account {
		return true, nil
	}
	delegate, err := l.DelegateOf(account)
	if err != nil {
		return false, err
	}
	return !delegate.IsZero() && delegate == caller, nil
}
