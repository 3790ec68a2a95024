// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/protocol"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/staking"
	"github.com/livethelifetv/props-protocol/state"
)

var (
	vault      = props.BytesToAddress([]byte("vault"))
	controller = props.BytesToAddress([]byte("controller"))
	guardian   = props.BytesToAddress([]byte("guardian"))
	alice      = props.BytesToAddress([]byte("alice"))
	bob        = props.BytesToAddress([]byte("bob"))
	owner1     = props.BytesToAddress([]byte("owner-1"))
	owner2     = props.BytesToAddress([]byte("owner-2"))
	app1       = props.BytesToAddress([]byte("app-1"))
	app2       = props.BytesToAddress([]byte("app-2"))
	appPool1   = props.BytesToAddress([]byte("app-pool-1"))
	appPool2   = props.BytesToAddress([]byte("app-pool-2"))
)

// clock: start 1000, 100 seconds per day; now=1250 is day 3. The escrow
// cooldown of 90 days puts deposits made now behind unlock time 10250.
const (
	now    = uint64(1250)
	unlock = uint64(10250)
)

type env struct {
	*protocol.Builtin
	recorder *events.Recorder
}

func newEnv(t *testing.T) *env {
	db, err := kv.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	recorder := &events.Recorder{}
	b := protocol.NewBuiltin(st, vault, recorder)

	require.NoError(t, b.Clock.Init(1000, 100))
	require.NoError(t, b.Params.Set(props.KeyEscrowCooldownDays, props.InitialEscrowCooldownDays, 1))
	require.NoError(t, b.Staking.InitRoles(controller, guardian))
	require.NoError(t, b.Staking.RegisterApp(controller, app1, owner1, appPool1))
	require.NoError(t, b.Staking.RegisterApp(controller, app2, owner2, appPool2))
	require.NoError(t, b.Staking.SetWhitelisted(controller, app1, true))
	require.NoError(t, b.Staking.SetWhitelisted(controller, app2, true))

	require.NoError(t, b.Token.Mint(alice, big.NewInt(1_000_000)))
	return &env{Builtin: b, recorder: recorder}
}

func (e *env) balance(t *testing.T, account props.Address) int64 {
	b, err := e.Token.BalanceOf(account)
	require.NoError(t, err)
	return b.Int64()
}

func (e *env) derivedBalance(t *testing.T, account props.Address) int64 {
	b, err := e.Derived.BalanceOf(account)
	require.NoError(t, err)
	return b.Int64()
}

func (e *env) stakeOf(t *testing.T, account, app props.Address) int64 {
	s, err := e.Staking.StakeOf(account, app)
	require.NoError(t, err)
	return s.Int64()
}

func (e *env) rewardStakeOf(t *testing.T, account, app props.Address) int64 {
	s, err := e.Staking.RewardStakeOf(account, app)
	require.NoError(t, err)
	return s.Int64()
}

func TestStakeFromWallet(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	assert.Equal(t, int64(999_900), e.balance(t, alice))
	assert.Equal(t, int64(100), e.balance(t, vault))
	assert.Equal(t, int64(100), e.derivedBalance(t, alice))
	assert.Equal(t, int64(100), e.stakeOf(t, alice, app1))

	staked, err := e.Pools.Lookup(appPool1).StakedOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), staked.Int64())

	staked, err = e.Pools.Lookup(protocol.ProtocolAppPoolAddress).StakedOf(app1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), staked.Int64())

	staked, err = e.Pools.Lookup(protocol.UserPoolAddress).StakedOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), staked.Int64())

	assert.Len(t, e.recorder.Named("StakeChanged"), 1)
}

func TestNettingMovesOnlyTheDifference(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	walletBefore := e.balance(t, alice)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{
		staking.Stake(app2, big.NewInt(100)),
		staking.Unstake(app1, big.NewInt(40)),
	}, now))

	assert.Equal(t, walletBefore-60, e.balance(t, alice), "only the net difference leaves the wallet")
	assert.Equal(t, int64(60), e.stakeOf(t, alice, app1))
	assert.Equal(t, int64(100), e.stakeOf(t, alice, app2))
	assert.Equal(t, int64(160), e.derivedBalance(t, alice))

	supply, err := e.Derived.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(160), supply.Int64(), "derived supply mirrors user-level staking")
}

func TestNetUnstakeReturnsToWallet(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	walletBefore := e.balance(t, alice)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Unstake(app1, big.NewInt(30))}, now))

	assert.Equal(t, walletBefore+30, e.balance(t, alice))
	assert.Equal(t, int64(70), e.stakeOf(t, alice, app1))
	assert.Equal(t, int64(70), e.derivedBalance(t, alice))
}

func TestFailedBatchRevertsWholly(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	// the unstake pass succeeds, then funding the oversized stake fails
	err := e.Staking.Stake(alice, []staking.Adjustment{
		staking.Unstake(app1, big.NewInt(40)),
		staking.Stake(app2, big.NewInt(10_000_000)),
	}, now)
	assert.True(t, reverts.IsInsufficient(err))

	assert.Equal(t, int64(100), e.stakeOf(t, alice, app1), "the partial unstake must not stick")
	assert.Equal(t, int64(0), e.stakeOf(t, alice, app2))
	assert.Equal(t, int64(999_900), e.balance(t, alice))
	assert.Equal(t, int64(100), e.derivedBalance(t, alice))
}

func TestUnstakeBeyondBalance(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	err := e.Staking.Stake(alice, []staking.Adjustment{staking.Unstake(app1, big.NewInt(101))}, now)
	assert.True(t, reverts.IsInsufficient(err))
}

func TestAdjustmentValidation(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.Stake(alice, []staking.Adjustment{{App: app1, Amount: big.NewInt(1)}}, now)
	assert.True(t, reverts.IsIntegrity(err), "missing stake/unstake tag")

	err = e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(-1))}, now)
	assert.True(t, reverts.IsIntegrity(err), "negative amount")

	err = e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, nil)}, now)
	assert.True(t, reverts.IsIntegrity(err), "nil amount")

	unknown := props.BytesToAddress([]byte("unknown-app"))
	err = e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(unknown, big.NewInt(1))}, now)
	assert.True(t, reverts.IsInvalidState(err), "unregistered app")
}

func TestBlacklistBlocksNewStakeOnly(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	require.NoError(t, e.Staking.SetWhitelisted(controller, app1, false))

	err := e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(1))}, now)
	assert.True(t, reverts.IsPolicy(err))

	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Unstake(app1, big.NewInt(100))}, now))
	assert.Equal(t, int64(0), e.stakeOf(t, alice, app1))
}

func TestStakeOnBehalf(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.Staking.StakeOnBehalf(alice, bob, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	assert.Equal(t, int64(999_900), e.balance(t, alice), "the caller funds the position")
	assert.Equal(t, int64(100), e.stakeOf(t, bob, app1), "the beneficiary owns it")
	assert.Equal(t, int64(100), e.derivedBalance(t, bob))

	err := e.Staking.StakeOnBehalf(alice, bob, []staking.Adjustment{staking.Unstake(app1, big.NewInt(1))}, now)
	assert.True(t, reverts.IsAuth(err), "on-behalf unstaking is never allowed")
}

func TestDelegateRebalance(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))
	require.NoError(t, e.Staking.SetDelegate(alice, bob))

	// pure rebalance moves no wallet funds
	require.NoError(t, e.Staking.StakeAsDelegate(bob, alice, []staking.Adjustment{
		staking.Unstake(app1, big.NewInt(50)),
		staking.Stake(app2, big.NewInt(50)),
	}, now))
	assert.Equal(t, int64(50), e.stakeOf(t, alice, app1))
	assert.Equal(t, int64(50), e.stakeOf(t, alice, app2))
	assert.Equal(t, int64(999_900), e.balance(t, alice))

	// net new principal would debit the delegator's wallet
	err := e.Staking.StakeAsDelegate(bob, alice, []staking.Adjustment{staking.Stake(app2, big.NewInt(10))}, now)
	assert.True(t, reverts.IsAuth(err))

	// net withdrawal would credit the wallet
	err = e.Staking.StakeAsDelegate(bob, alice, []staking.Adjustment{staking.Unstake(app1, big.NewInt(10))}, now)
	assert.True(t, reverts.IsAuth(err))

	// strangers cannot act at all
	err = e.Staking.StakeAsDelegate(owner1, alice, nil, now)
	assert.True(t, reverts.IsAuth(err))

	require.NoError(t, e.Staking.ClearDelegate(alice))
	err = e.Staking.StakeAsDelegate(bob, alice, nil, now)
	assert.True(t, reverts.IsAuth(err))
}

func TestRewardsClaimAndRestake(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	// accrue 500 in app1's pool
	require.NoError(t, e.Pools.Lookup(appPool1).Distribute(big.NewInt(500)))
	require.NoError(t, e.Staking.ClaimAppRewards(alice, alice, app1, now))

	rec, err := e.Staking.EscrowOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(500), rec.Amount.Int64())
	assert.Equal(t, unlock, rec.UnlockTime)

	// restake part of the escrow; the timer stays put
	require.NoError(t, e.Staking.StakeRewards(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(200))}, now+10))

	rec, err = e.Staking.EscrowOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(300), rec.Amount.Int64())
	assert.Equal(t, unlock, rec.UnlockTime, "drawing down keeps the timer")
	assert.Equal(t, int64(200), e.rewardStakeOf(t, alice, app1))
	assert.Equal(t, int64(300), e.derivedBalance(t, alice), "100 principal + 200 reward capital")

	// unstaking reward capital re-enters escrow with a fresh lock
	later := now + 100 // one day later
	require.NoError(t, e.Staking.StakeRewards(alice, []staking.Adjustment{staking.Unstake(app1, big.NewInt(200))}, later))

	rec, err = e.Staking.EscrowOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(500), rec.Amount.Int64())
	assert.Equal(t, later+9000, rec.UnlockTime, "returning to escrow resets the lock")
}

func TestStakeRewardsBeyondEscrow(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.StakeRewards(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(1))}, now)
	assert.True(t, reverts.IsInsufficient(err))
}

func TestWithdrawEscrow(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))
	require.NoError(t, e.Pools.Lookup(appPool1).Distribute(big.NewInt(500)))
	require.NoError(t, e.Staking.ClaimAppRewards(alice, alice, app1, now))

	// back the escrow entitlement with vault funds
	require.NoError(t, e.Token.Mint(vault, big.NewInt(500)))

	err := e.Staking.WithdrawEscrow(alice, unlock-1)
	assert.True(t, reverts.IsInvalidState(err))

	walletBefore := e.balance(t, alice)
	require.NoError(t, e.Staking.WithdrawEscrow(alice, unlock))
	assert.Equal(t, walletBefore+500, e.balance(t, alice))
}

func TestClaimUserRewardsAndStake(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	require.NoError(t, e.Pools.Lookup(protocol.UserPoolAddress).Distribute(big.NewInt(1000)))

	err := e.Staking.ClaimUserRewardsAndStake(alice, alice, []props.Address{app1, app2}, []uint64{600_000, 300_000}, now)
	assert.True(t, reverts.IsIntegrity(err), "percentages must sum to 1e6 ppm")

	require.NoError(t, e.Staking.ClaimUserRewardsAndStake(alice, alice, []props.Address{app1, app2}, []uint64{600_000, 400_000}, now))

	assert.Equal(t, int64(600), e.rewardStakeOf(t, alice, app1))
	assert.Equal(t, int64(400), e.rewardStakeOf(t, alice, app2))

	rec, err := e.Staking.EscrowOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Amount.Int64(), "the whole claim restakes")
	assert.Equal(t, uint64(0), rec.UnlockTime, "a fully restaked claim starts no lock")
}

func TestRestakedClaimKeepsEscrowTimer(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	// an earlier claim locks 500 until the cooldown elapses
	require.NoError(t, e.Pools.Lookup(appPool1).Distribute(big.NewInt(500)))
	require.NoError(t, e.Staking.ClaimAppRewards(alice, alice, app1, now))

	// much later, claim user rewards and restake them in full
	require.NoError(t, e.Pools.Lookup(protocol.UserPoolAddress).Distribute(big.NewInt(1000)))
	require.NoError(t, e.Staking.ClaimUserRewardsAndStake(alice, alice, []props.Address{app1}, []uint64{1_000_000}, now+5000))

	rec, err := e.Staking.EscrowOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(500), rec.Amount.Int64(), "the restaked claim leaves the prior balance alone")
	assert.Equal(t, unlock, rec.UnlockTime, "compounding must not extend the lock on untouched capital")
	assert.Equal(t, int64(1000), e.rewardStakeOf(t, alice, app1))
}

func TestClaimAppProtocolRewards(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, now))

	require.NoError(t, e.Pools.Lookup(protocol.ProtocolAppPoolAddress).Distribute(big.NewInt(300)))
	require.NoError(t, e.Token.Mint(vault, big.NewInt(300)))

	err := e.Staking.ClaimAppProtocolRewards(alice, app1)
	assert.True(t, reverts.IsAuth(err), "only the app owner claims protocol rewards")

	require.NoError(t, e.Staking.ClaimAppProtocolRewards(owner1, app1))
	assert.Equal(t, int64(300), e.balance(t, owner1), "protocol rewards bypass escrow")
}

func TestPause(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.Pause(controller)
	assert.True(t, reverts.IsAuth(err), "only the guardian pauses")

	require.NoError(t, e.Staking.Pause(guardian))

	err = e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(1))}, now)
	assert.True(t, reverts.IsInvalidState(err))

	require.NoError(t, e.Staking.Unpause(guardian))
	require.NoError(t, e.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(1))}, now))
}

func TestAppRegistration(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.RegisterApp(alice, props.BytesToAddress([]byte("app-3")), owner1, appPool1)
	assert.True(t, reverts.IsAuth(err))

	err = e.Staking.RegisterApp(controller, app1, owner2, appPool2)
	assert.True(t, reverts.IsInvalidState(err), "registrations are immutable")

	app, err := e.Staking.AppOf(app1)
	require.NoError(t, err)
	assert.Equal(t, owner1, app.Owner)
	assert.Equal(t, appPool1, app.Pool)
}

func TestRoleHandover(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.SetController(alice, alice)
	assert.True(t, reverts.IsAuth(err))

	require.NoError(t, e.Staking.SetController(controller, alice))

	got, err := e.Staking.Controller()
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	// the old controller is out
	err = e.Staking.SetGuardian(controller, bob)
	assert.True(t, reverts.IsAuth(err))
	require.NoError(t, e.Staking.SetGuardian(alice, bob))
}

func TestDistributeDailyRewardsRequiresFinalizedDay(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.DistributeDailyRewards(controller, 2, protocol.ProtocolAppPoolAddress, protocol.UserPoolAddress)
	assert.True(t, reverts.IsInvalidState(err))

	err = e.Staking.DistributeDailyRewards(alice, 2, protocol.ProtocolAppPoolAddress, protocol.UserPoolAddress)
	assert.True(t, reverts.IsAuth(err))
}

func TestSetValidators(t *testing.T) {
	e := newEnv(t)
	members := []props.Address{props.BytesToAddress([]byte("validator-a"))}

	err := e.Staking.SetValidators(alice, 5, members, now)
	assert.True(t, reverts.IsAuth(err))

	// now is day 3; a list cannot take effect in the past
	err = e.Staking.SetValidators(controller, 2, members, now)
	assert.True(t, reverts.IsInvalidState(err))

	err = e.Staking.SetValidators(controller, 5, nil, now)
	assert.True(t, reverts.IsIntegrity(err))
	err = e.Staking.SetValidators(controller, 5, []props.Address{{}}, now)
	assert.True(t, reverts.IsIntegrity(err))

	require.NoError(t, e.Staking.SetValidators(controller, 5, members, now))

	got, err := e.Validators.Get(5)
	require.NoError(t, err)
	assert.Equal(t, members, got)

	// a later replacement rolls the old list, which still governs prior days
	replacement := []props.Address{props.BytesToAddress([]byte("validator-b"))}
	require.NoError(t, e.Staking.SetValidators(controller, 7, replacement, now))

	got, err = e.Validators.Get(6)
	require.NoError(t, err)
	assert.Equal(t, members, got)
	got, err = e.Validators.Get(7)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestSetRewardedApps(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.SetRewardedApps(alice, 5, []props.Address{app1}, now)
	assert.True(t, reverts.IsAuth(err))

	unknown := props.BytesToAddress([]byte("unknown-app"))
	err = e.Staking.SetRewardedApps(controller, 5, []props.Address{app1, unknown}, now)
	assert.True(t, reverts.IsInvalidState(err), "only registered apps can be rewarded")

	require.NoError(t, e.Staking.SetRewardedApps(controller, 5, []props.Address{app1, app2}, now))

	got, err := e.Apps.Get(5)
	require.NoError(t, err)
	assert.Equal(t, []props.Address{app1, app2}, got)
}

func TestSetParameter(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.SetParameter(alice, props.KeyEscrowCooldownDays, big.NewInt(30), 5)
	assert.True(t, reverts.IsAuth(err))

	err = e.Staking.SetParameter(controller, props.KeyEscrowCooldownDays, nil, 5)
	assert.True(t, reverts.IsIntegrity(err))

	require.NoError(t, e.Staking.SetParameter(controller, props.KeyEscrowCooldownDays, big.NewInt(30), 5))

	value, err := e.Params.Get(props.KeyEscrowCooldownDays, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(90), value.Int64(), "the old value holds before the effective day")
	value, err = e.Params.Get(props.KeyEscrowCooldownDays, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(30), value.Int64())
}

func TestSetDelegateValidation(t *testing.T) {
	e := newEnv(t)

	err := e.Staking.SetDelegate(alice, props.Address{})
	assert.True(t, reverts.IsInvalidState(err))

	err = e.Staking.SetDelegate(alice, alice)
	assert.True(t, reverts.IsInvalidState(err))
}
