// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package roster maintains the selected entity lists (validators, apps).
//
// A roster keeps a current and a previous ordered list, each with its day
// of effect. Operations for a day preceding the current list's effective
// day consult the previous list, which lets a list change take effect
// prospectively while pending operations for prior days still reference
// the old membership.
package roster

import (
	"github.com/pkg/errors"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/storage"
)

type list struct {
	EffectiveDay uint64
	Members      []props.Address
}

func (l *list) isEmpty() bool {
	return l == nil || (l.EffectiveDay == 0 && len(l.Members) == 0)
}

// Roster is one named selected-entity list.
type Roster struct {
	name     string
	current  *storage.Value[*list]
	previous *storage.Value[*list]
}

// New creates a roster with the given name in the storage context.
func New(ctx *storage.Context, name string) *Roster {
	return &Roster{
		name:     name,
		current:  storage.NewValue[*list](ctx, name+"-current"),
		previous: storage.NewValue[*list](ctx, name+"-previous"),
	}
}

// Set installs a new list effective on the given day.
//
// The day must not precede the present day. When a current list exists and
// the new day is strictly later than its effective day, the current list is
// rolled to previous wholesale; the stored lists are replaced in full so
// membership and order always stay consistent regardless of length changes.
func (r *Roster) Set(day uint64, members []props.Address, currentDay uint64) error {
	if day < currentDay {
		return reverts.InvalidState("%s list must be set for the present or a future day", r.name)
	}
	cur, err := r.current.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get current list")
	}
	if !cur.isEmpty() && day > cur.EffectiveDay {
		if err := r.previous.Set(cur); err != nil {
			return errors.Wrap(err, "failed to roll current list")
		}
	}
	if err := r.current.Set(&list{EffectiveDay: day, Members: members}); err != nil {
		return errors.Wrap(err, "failed to set current list")
	}
	return nil
}

// Get returns the list in effect on the given day.
func (r *Roster) Get(day uint64) ([]props.Address, error) {
	l, err := r.effective(day)
	if err != nil {
		return nil, err
	}
	return l.Members, nil
}

// Count returns the size of the list in effect on the given day.
func (r *Roster) Count(day uint64) (uint64, error) {
	members, err := r.Get(day)
	if err != nil {
		return 0, err
	}
	return uint64(len(members)), nil
}

// Contains returns whether addr is a member of the list in effect on the
// given day.
func (r *Roster) Contains(day uint64, addr props.Address) (bool, error) {
	members, err := r.Get(day)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m == addr {
			return true, nil
		}
	}
	return false, nil
}

func (r *Roster) effective(day uint64) (*list, error) {
	cur, err := r.current.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current list")
	}
	if cur.isEmpty() || day >= cur.EffectiveDay {
		return cur, nil
	}
	prev, err := r.previous.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get previous list")
	}
	return prev, nil
}
