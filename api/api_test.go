// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livethelifetv/props-protocol/api"
	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/protocol"
	"github.com/livethelifetv/props-protocol/staking"
	"github.com/livethelifetv/props-protocol/state"
)

var (
	vault      = props.BytesToAddress([]byte("vault"))
	controller = props.BytesToAddress([]byte("controller"))
	guardian   = props.BytesToAddress([]byte("guardian"))
	alice      = props.BytesToAddress([]byte("alice"))
	bob        = props.BytesToAddress([]byte("bob"))
	app1       = props.BytesToAddress([]byte("app-1"))
	owner1     = props.BytesToAddress([]byte("owner-1"))
	appPool1   = props.BytesToAddress([]byte("app-pool-1"))
	val1       = props.BytesToAddress([]byte("validator-1"))
)

func newTestHandler(t *testing.T) http.Handler {
	db, err := kv.NewMem()
	require.NoError(t, err)
	b := protocol.NewBuiltin(state.New(db), vault, events.Discard())

	require.NoError(t, b.Clock.Init(1000, 100))
	require.NoError(t, b.Params.Set(props.KeyEscrowCooldownDays, props.InitialEscrowCooldownDays, 1))
	require.NoError(t, b.Validators.Set(1, []props.Address{val1}, 0))
	require.NoError(t, b.Staking.InitRoles(controller, guardian))
	require.NoError(t, b.Staking.RegisterApp(controller, app1, owner1, appPool1))
	require.NoError(t, b.Staking.SetWhitelisted(controller, app1, true))

	require.NoError(t, b.Token.Mint(alice, big.NewInt(1000)))
	require.NoError(t, b.Staking.Stake(alice, []staking.Adjustment{staking.Stake(app1, big.NewInt(100))}, 1250))
	require.NoError(t, b.Staking.SetDelegate(alice, bob))

	return api.New(b.Protocol)
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestGetStakes(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/staking/accounts/"+alice.String()+"/apps/"+app1.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100", body["stake"])
	assert.Equal(t, "0", body["rewardStake"])
}

func TestGetEscrow(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/staking/accounts/"+alice.String()+"/escrow")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0", body["amount"])
	assert.Equal(t, float64(0), body["unlockTime"])
}

func TestGetDelegate(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/staking/accounts/"+alice.String()+"/delegate")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, bob.String(), body["delegate"])
}

func TestGetApp(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/staking/apps/"+app1.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, owner1.String(), body["owner"])
	assert.Equal(t, appPool1.String(), body["pool"])
	assert.Equal(t, true, body["whitelisted"])

	code, _ = get(t, h, "/staking/apps/"+bob.String())
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, "/staking/apps/not-an-address")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetParam(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/params/escrow-cooldown-days?day=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "90", body["value"])

	code, _ = get(t, h, "/params/escrow-cooldown-days")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetDay(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/clock/day?now=1250")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["day"])

	code, _ = get(t, h, "/clock/day?now=abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetValidators(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/validators?day=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{val1.String()}, body["validators"])
}

func TestGetRewardsDayNotFinalized(t *testing.T) {
	h := newTestHandler(t)

	code, _ := get(t, h, "/oracle/days/2")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, "/oracle/days/abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetOpenRoundEmpty(t *testing.T) {
	h := newTestHandler(t)

	code, body := get(t, h, "/oracle/round")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["submissions"])
}
