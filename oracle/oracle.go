// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle implements the validator consensus engine for daily
// reward allocations.
//
// Selected validators independently compute a day's per-app allocation and
// submit a commitment to it. The first confirmation opens a submission;
// when confirmations reach the majority quorum of the day-effective
// validator list, the allocation is bounded against the variation cap and
// finalized, validator rewards for the day are paid out and the round's
// per-validator state is cleared.
package oracle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/metrics"
	"github.com/livethelifetv/props-protocol/params"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/roster"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

var (
	logger = log.New("pkg", "oracle")

	submissionCounter = metrics.CounterVec("oracle_submission_count", []string{"outcome"})

	pphm        = new(big.Int).SetUint64(props.PphmUnit)
	pphmSquared = new(big.Int).Mul(new(big.Int).SetUint64(props.PphmUnit), new(big.Int).SetUint64(props.PphmUnit))
)

// SupplyTracker reports the circulating supply of the base token; the
// daily reward budget is a percentage of what remains below the cap.
type SupplyTracker interface {
	TotalSupply() (*big.Int, error)
}

// RewardsMinter mints validator rewards on finalization.
type RewardsMinter interface {
	MintReward(to props.Address, amount *big.Int) error
}

// Engine is the validator consensus engine.
type Engine struct {
	state      *state.State
	params     *params.Params
	clock      *params.Clock
	validators *roster.Roster

	submissions *storage.Mapping[props.Bytes32, *Submission]
	roundHashes *storage.Value[[]props.Bytes32]
	canonical   *storage.Mapping[storage.Uint64Key, props.Bytes32]
	allocations *storage.Mapping[storage.Uint64Key, *Allocation]
	snapshots   *storage.Mapping[storage.Uint64Key, *big.Int]
	lastApps    *storage.Value[uint64]
	lastVals    *storage.Value[uint64]

	supply SupplyTracker
	minter RewardsMinter
	sink   events.Sink
}

// New creates the consensus engine.
func New(
	st *state.State,
	prm *params.Params,
	clock *params.Clock,
	validators *roster.Roster,
	supply SupplyTracker,
	minter RewardsMinter,
	sink events.Sink,
) *Engine {
	ctx := storage.NewContext("oracle", st)
	return &Engine{
		state:       st,
		params:      prm,
		clock:       clock,
		validators:  validators,
		submissions: storage.NewMapping[props.Bytes32, *Submission](ctx, "submissions"),
		roundHashes: storage.NewValue[[]props.Bytes32](ctx, "round-hashes"),
		canonical:   storage.NewMapping[storage.Uint64Key, props.Bytes32](ctx, "canonical"),
		allocations: storage.NewMapping[storage.Uint64Key, *Allocation](ctx, "allocations"),
		snapshots:   storage.NewMapping[storage.Uint64Key, *big.Int](ctx, "supply-snapshots"),
		lastApps:    storage.NewValue[uint64](ctx, "last-apps-rewards-day"),
		lastVals:    storage.NewValue[uint64](ctx, "last-validators-rewards-day"),
		supply:      supply,
		minter:      minter,
		sink:        sink,
	}
}

//
// Getters - no state change
//

// CurrentDay returns the reward day the given timestamp falls into.
func (e *Engine) CurrentDay(now uint64) (uint64, error) {
	return e.clock.CurrentDay(now)
}

// Submission returns the open-round submission for the given commitment.
func (e *Engine) Submission(hash props.Bytes32) (*Submission, error) {
	sub, err := e.submissions.Get(hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get submission")
	}
	return sub, nil
}

// CanonicalHash returns the finalized commitment of a reward day, or zero
// when the day is not finalized.
func (e *Engine) CanonicalHash(day uint64) (props.Bytes32, error) {
	return e.canonical.Get(storage.Uint64Key(day))
}

// DayAllocation returns the finalized per-app allocation of a reward day.
func (e *Engine) DayAllocation(day uint64) (*Allocation, error) {
	alloc, err := e.allocations.Get(storage.Uint64Key(day))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allocation")
	}
	return alloc, nil
}

// SupplySnapshot returns the remaining-supply snapshot recorded when the
// given day finalized.
func (e *Engine) SupplySnapshot(day uint64) (*big.Int, error) {
	return e.snapshots.Get(storage.Uint64Key(day))
}

// LastAppsRewardsDay returns the most recent finalized app-rewards day.
func (e *Engine) LastAppsRewardsDay() (uint64, error) {
	return e.lastApps.Get()
}

// LastValidatorsRewardsDay returns the most recent day validators were paid.
func (e *Engine) LastValidatorsRewardsDay() (uint64, error) {
	return e.lastVals.Get()
}

// OpenRound returns the commitments with at least one confirmation in the
// current round.
func (e *Engine) OpenRound() ([]props.Bytes32, error) {
	return e.roundHashes.Get()
}

// Quorum returns the confirmation count required to finalize on the given
// day: floor(selectedValidators × majorityPercent / 1e8) + 1.
func (e *Engine) Quorum(day uint64) (uint64, error) {
	count, err := e.validators.Count(day)
	if err != nil {
		return 0, err
	}
	majority, err := e.params.Get(props.KeyValidatorMajorityPercent, day)
	if err != nil {
		return 0, err
	}
	q := new(big.Int).Mul(new(big.Int).SetUint64(count), majority)
	q.Div(q, pphm)
	return q.Uint64() + 1, nil
}

//
// Setters - state change
//

// Submit records one validator's confirmation of a day's allocation
// commitment, finalizing the day once quorum is reached. The whole call
// reverts on any rejection.
func (e *Engine) Submit(
	validator props.Address,
	commitment props.Bytes32,
	day uint64,
	apps []props.Address,
	amounts []*big.Int,
	now uint64,
) error {
	logger.Debug("rewards submission", "validator", validator, "day", day, "commitment", commitment.AbbrevString())

	checkpoint := e.state.NewCheckpoint()
	finalized, err := e.submit(validator, commitment, day, apps, amounts, now)
	if err != nil {
		e.state.RevertTo(checkpoint)
		logger.Info("rewards submission rejected", "validator", validator, "day", day, "error", err)
		submissionCounter.AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return err
	}

	if finalized {
		logger.Info("rewards day finalized", "day", day, "commitment", commitment.AbbrevString())
		submissionCounter.AddWithLabel(1, map[string]string{"outcome": "finalized"})
	} else {
		submissionCounter.AddWithLabel(1, map[string]string{"outcome": "accepted"})
	}
	return nil
}

func (e *Engine) submit(
	validator props.Address,
	commitment props.Bytes32,
	day uint64,
	apps []props.Address,
	amounts []*big.Int,
	now uint64,
) (bool, error) {
	if len(apps) == 0 || len(apps) != len(amounts) {
		return false, reverts.Integrity("app and amount lists must be non-empty and of equal length")
	}
	for _, amount := range amounts {
		if amount == nil || amount.Sign() < 0 || amount.Cmp(props.MaxStakeAmount) > 0 {
			return false, reverts.Integrity("allocation amount out of representable range")
		}
	}

	// the day must have fully elapsed and must not be closed already
	currentDay, err := e.clock.CurrentDay(now)
	if err != nil {
		return false, err
	}
	lastVals, err := e.lastVals.Get()
	if err != nil {
		return false, err
	}
	if day >= currentDay || day <= lastVals {
		return false, reverts.InvalidState("rewards day %d outside the open window", day)
	}

	selected, err := e.validators.Contains(day, validator)
	if err != nil {
		return false, err
	}
	if !selected {
		return false, reverts.Auth("not a selected validator for day %d", day)
	}

	if computed := HashAllocations(day, apps, amounts); computed != commitment {
		return false, reverts.Integrity("submitted rewards data does not match commitment")
	}

	sub, err := e.submissions.Get(commitment)
	if err != nil {
		return false, errors.Wrap(err, "failed to get submission")
	}
	// replay guard, checked before any accumulation
	if sub.HasVoted(validator) {
		return false, reverts.InvalidState("validator already confirmed this commitment")
	}

	if sub.IsEmpty() {
		hashes, err := e.roundHashes.Get()
		if err != nil {
			return false, err
		}
		if err := e.roundHashes.Set(append(hashes, commitment)); err != nil {
			return false, err
		}
	}
	sub.Voters = append(sub.Voters, validator)
	sub.Confirmations++
	if err := e.submissions.Set(commitment, sub); err != nil {
		return false, errors.Wrap(err, "failed to set submission")
	}

	e.sink.Emit(events.RewardsHashSubmitted{
		Day:           day,
		Hash:          commitment,
		Validator:     validator,
		Confirmations: sub.Confirmations,
	})

	quorum, err := e.Quorum(day)
	if err != nil {
		return false, err
	}
	if sub.Confirmations != quorum {
		return false, nil
	}

	if err := e.finalize(commitment, day, apps, amounts); err != nil {
		return false, err
	}
	return true, nil
}

// finalize closes the day: bounds the allocation against the variation
// cap, records the canonical result and the supply snapshot, pays the
// day's validators and clears the round.
func (e *Engine) finalize(commitment props.Bytes32, day uint64, apps []props.Address, amounts []*big.Int) error {
	remaining, err := e.remainingSupply()
	if err != nil {
		return err
	}

	appPct, err := e.params.Get(props.KeyAppRewardsPercent, day)
	if err != nil {
		return err
	}
	maxVarPct, err := e.params.Get(props.KeyAppRewardsMaxVariationPercent, day)
	if err != nil {
		return err
	}

	// maxDailyVariation = remaining × appRewardsPct × maxVariationPct / 1e16
	variationCap := new(big.Int).Mul(remaining, appPct)
	variationCap.Mul(variationCap, maxVarPct)
	variationCap.Div(variationCap, pphmSquared)

	total := big.NewInt(0)
	for _, amount := range amounts {
		total.Add(total, amount)
	}
	if total.Cmp(variationCap) > 0 {
		return reverts.Policy("allocation total %s exceeds the daily variation cap %s", total, variationCap)
	}

	if err := e.snapshots.Set(storage.Uint64Key(day), remaining); err != nil {
		return errors.Wrap(err, "failed to record supply snapshot")
	}
	if err := e.canonical.Set(storage.Uint64Key(day), commitment); err != nil {
		return errors.Wrap(err, "failed to record canonical hash")
	}
	if err := e.allocations.Set(storage.Uint64Key(day), &Allocation{Apps: apps, Amounts: amounts}); err != nil {
		return errors.Wrap(err, "failed to record allocation")
	}
	if err := e.lastApps.Set(day); err != nil {
		return err
	}

	if err := e.payValidators(day, remaining); err != nil {
		return err
	}
	if err := e.lastVals.Set(day); err != nil {
		return err
	}

	if err := e.resetRound(); err != nil {
		return err
	}

	e.sink.Emit(events.RewardsDayFinalized{Day: day, Hash: commitment})
	return nil
}

func (e *Engine) payValidators(day uint64, remaining *big.Int) error {
	members, err := e.validators.Get(day)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	pct, err := e.params.Get(props.KeyValidatorRewardsPercent, day)
	if err != nil {
		return err
	}
	budget := new(big.Int).Mul(remaining, pct)
	budget.Div(budget, pphm)
	share := budget.Div(budget, new(big.Int).SetUint64(uint64(len(members))))
	if share.Sign() == 0 {
		return nil
	}
	for _, member := range members {
		if err := e.minter.MintReward(member, share); err != nil {
			return errors.Wrap(err, "failed to mint validator reward")
		}
	}
	return nil
}

// resetRound clears the per-validator confirmation state of the now-stale
// round, preventing unbounded growth of per-round storage.
func (e *Engine) resetRound() error {
	hashes, err := e.roundHashes.Get()
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		if err := e.submissions.Clear(hash); err != nil {
			return err
		}
	}
	return e.roundHashes.Clear()
}

func (e *Engine) remainingSupply() (*big.Int, error) {
	total, err := e.supply.TotalSupply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token supply")
	}
	remaining := new(big.Int).Sub(props.MaxTokenSupply, total)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	return remaining, nil
}
