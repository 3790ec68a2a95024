// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
	"github.com/livethelifetv/props-protocol/storage"
)

func newTestRoster(t *testing.T) *Roster {
	db, err := kv.NewMem()
	require.NoError(t, err)
	return New(storage.NewContext("roster", state.New(db)), "validators")
}

func addr(s string) props.Address {
	return props.BytesToAddress([]byte(s))
}

func TestEmptyRoster(t *testing.T) {
	r := newTestRoster(t)

	members, err := r.Get(5)
	require.NoError(t, err)
	assert.Empty(t, members)

	count, err := r.Count(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSetRejectsPastDay(t *testing.T) {
	r := newTestRoster(t)

	err := r.Set(4, []props.Address{addr("v1")}, 5)
	assert.True(t, reverts.IsInvalidState(err))
}

func TestRollSemantics(t *testing.T) {
	r := newTestRoster(t)

	old := []props.Address{addr("v1"), addr("v2")}
	require.NoError(t, r.Set(1, old, 1))

	// a later list rolls the old one to previous
	next := []props.Address{addr("v2"), addr("v3"), addr("v4")}
	require.NoError(t, r.Set(10, next, 5))

	// days before the new effective day still see the old membership
	members, err := r.Get(9)
	require.NoError(t, err)
	assert.Equal(t, old, members)

	members, err = r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, next, members)

	ok, err := r.Contains(9, addr("v1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Contains(10, addr("v1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSameDayReplaceDoesNotRoll(t *testing.T) {
	r := newTestRoster(t)

	require.NoError(t, r.Set(1, []props.Address{addr("v1")}, 1))
	require.NoError(t, r.Set(10, []props.Address{addr("v2")}, 5))
	// correction of the pending list keeps the rolled one intact
	require.NoError(t, r.Set(10, []props.Address{addr("v3")}, 5))

	members, err := r.Get(9)
	require.NoError(t, err)
	assert.Equal(t, []props.Address{addr("v1")}, members)

	members, err = r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, []props.Address{addr("v3")}, members)
}
