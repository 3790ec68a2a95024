// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the day-indexed protocol parameter store.
//
// A parameter keeps its current and previous value together with the day
// the current value takes effect. Reading for a given day returns the
// current value only when that day has reached the effective day, so a
// change scheduled for a future day never retroactively affects reward
// calculations already in flight.
package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/storage"
)

// Record is the stored form of one parameter.
type Record struct {
	Current      *big.Int
	Previous     *big.Int
	EffectiveDay uint64
}

// IsEmpty returns whether the record can be treated as unset.
func (r *Record) IsEmpty() bool {
	return r.Current == nil
}

// ValueAt returns the value in effect on the given day.
func (r *Record) ValueAt(day uint64) *big.Int {
	if r.IsEmpty() {
		return big.NewInt(0)
	}
	if day >= r.EffectiveDay {
		return new(big.Int).Set(r.Current)
	}
	if r.Previous == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(r.Previous)
}

// Params is the parameter store.
type Params struct {
	records *storage.Mapping[props.Bytes32, *Record]
}

// New creates a parameter store in the given storage context.
func New(ctx *storage.Context) *Params {
	return &Params{
		records: storage.NewMapping[props.Bytes32, *Record](ctx, "records"),
	}
}

// Get returns the value of the parameter in effect on the given day.
func (p *Params) Get(key props.Bytes32, day uint64) (*big.Int, error) {
	rec, err := p.records.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get parameter")
	}
	return rec.ValueAt(day), nil
}

// Raw returns the full record of the parameter.
func (p *Params) Raw(key props.Bytes32) (*Record, error) {
	rec, err := p.records.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get parameter")
	}
	return rec, nil
}

// Set installs a new value effective on the given day.
//
// A write for the same or an earlier day than the recorded effective day
// overwrites the current value in place; corrections do not create history.
// A write for a later day shifts current to previous first.
func (p *Params) Set(key props.Bytes32, value *big.Int, effectiveDay uint64) error {
	rec, err := p.records.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get parameter")
	}
	if rec.IsEmpty() {
		rec = &Record{
			Current:      value,
			Previous:     value,
			EffectiveDay: effectiveDay,
		}
	} else if effectiveDay <= rec.EffectiveDay {
		rec.Current = value
	} else {
		rec.Previous = rec.Current
		rec.Current = value
		rec.EffectiveDay = effectiveDay
	}
	if err := p.records.Set(key, rec); err != nil {
		return errors.Wrap(err, "failed to set parameter")
	}
	return nil
}
