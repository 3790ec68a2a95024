// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/reverts"
	"github.com/livethelifetv/props-protocol/state"
)

var (
	alice = props.BytesToAddress([]byte("alice"))
	bob   = props.BytesToAddress([]byte("bob"))
)

func newTestLedger(t *testing.T) *Ledger {
	db, err := kv.NewMem()
	require.NoError(t, err)
	return New("props", state.New(db))
}

func TestMintAndTransfer(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Mint(alice, big.NewInt(1000)))
	require.NoError(t, l.Transfer(alice, bob, big.NewInt(400)))

	aliceBalance, err := l.BalanceOf(alice)
	require.NoError(t, err)
	bobBalance, err := l.BalanceOf(bob)
	require.NoError(t, err)
	supply, err := l.TotalSupply()
	require.NoError(t, err)

	assert.Equal(t, int64(600), aliceBalance.Int64())
	assert.Equal(t, int64(400), bobBalance.Int64())
	assert.Equal(t, int64(1000), supply.Int64())

	err = l.Transfer(alice, bob, big.NewInt(601))
	assert.True(t, reverts.IsInsufficient(err))
}

func TestBurn(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Mint(alice, big.NewInt(1000)))
	require.NoError(t, l.Burn(alice, big.NewInt(300)))

	balance, err := l.BalanceOf(alice)
	require.NoError(t, err)
	supply, err := l.TotalSupply()
	require.NoError(t, err)

	assert.Equal(t, int64(700), balance.Int64())
	assert.Equal(t, int64(700), supply.Int64())

	err = l.Burn(alice, big.NewInt(701))
	assert.True(t, reverts.IsInsufficient(err))
}

func TestMintRespectsSupplyCap(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Mint(alice, props.MaxTokenSupply))

	err := l.Mint(alice, big.NewInt(1))
	assert.True(t, reverts.IsPolicy(err))
}

func TestLedgersAreIsolated(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	base := New("props", st)
	derived := New("sprops", st)

	require.NoError(t, base.Mint(alice, big.NewInt(100)))

	balance, err := derived.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}
