// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the protocol state over a read-only JSON HTTP
// surface. Mutations go through the engines directly; the API never
// writes.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/livethelifetv/props-protocol/metrics"
	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/protocol"
)

// API serves the read-only protocol endpoints.
type API struct {
	protocol *protocol.Protocol
}

// New builds the HTTP handler over the given protocol.
func New(p *protocol.Protocol) http.Handler {
	api := &API{protocol: p}

	router := mux.NewRouter()
	sub := router.PathPrefix("/").Subrouter()
	sub.Path("/staking/accounts/{address}/apps/{app}").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetStakes)
	sub.Path("/staking/accounts/{address}/escrow").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetEscrow)
	sub.Path("/staking/accounts/{address}/delegate").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetDelegate)
	sub.Path("/staking/apps/{address}").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetApp)
	sub.Path("/params/{key}").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetParam)
	sub.Path("/clock/day").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetDay)
	sub.Path("/validators").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetValidators)
	sub.Path("/oracle/days/{day}").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetRewardsDay)
	sub.Path("/oracle/round").
		Methods(http.MethodGet).
		HandlerFunc(api.handleGetOpenRound)
	sub.Path("/metrics").
		Methods(http.MethodGet).
		Handler(metrics.HTTPHandler())

	return handlers.CompressHandler(handlers.RecoveryHandler()(router))
}

func (a *API) handleGetStakes(w http.ResponseWriter, req *http.Request) {
	account, ok := pathAddress(w, req, "address")
	if !ok {
		return
	}
	app, ok := pathAddress(w, req, "app")
	if !ok {
		return
	}
	stake, err := a.protocol.Staking.StakeOf(account, app)
	if err != nil {
		writeError(w, err)
		return
	}
	rewardStake, err := a.protocol.Staking.RewardStakeOf(account, app)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{
		"stake":       stake.String(),
		"rewardStake": rewardStake.String(),
	})
}

func (a *API) handleGetEscrow(w http.ResponseWriter, req *http.Request) {
	account, ok := pathAddress(w, req, "address")
	if !ok {
		return
	}
	rec, err := a.protocol.Escrow.Get(account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"amount":     rec.Amount.String(),
		"unlockTime": rec.UnlockTime,
	})
}

func (a *API) handleGetDelegate(w http.ResponseWriter, req *http.Request) {
	account, ok := pathAddress(w, req, "address")
	if !ok {
		return
	}
	delegate, err := a.protocol.Staking.DelegateOf(account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"delegate": delegate})
}

func (a *API) handleGetApp(w http.ResponseWriter, req *http.Request) {
	addr, ok := pathAddress(w, req, "address")
	if !ok {
		return
	}
	app, err := a.protocol.Staking.AppOf(addr)
	if err != nil {
		writeError(w, err)
		return
	}
	if app.IsEmpty() {
		http.Error(w, "app not registered", http.StatusNotFound)
		return
	}
	whitelisted, err := a.protocol.Staking.IsWhitelisted(addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"owner":       app.Owner,
		"pool":        app.Pool,
		"whitelisted": whitelisted,
	})
}

func (a *API) handleGetParam(w http.ResponseWriter, req *http.Request) {
	key := props.BytesToBytes32([]byte(mux.Vars(req)["key"]))
	day, ok := queryUint(w, req, "day")
	if !ok {
		return
	}
	value, err := a.protocol.Params.Get(key, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"value": value.String()})
}

func (a *API) handleGetDay(w http.ResponseWriter, req *http.Request) {
	now, ok := queryUint(w, req, "now")
	if !ok {
		return
	}
	day, err := a.protocol.Clock.CurrentDay(now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]uint64{"day": day})
}

func (a *API) handleGetValidators(w http.ResponseWriter, req *http.Request) {
	day, ok := queryUint(w, req, "day")
	if !ok {
		return
	}
	members, err := a.protocol.Validators.Get(day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"validators": members})
}

func (a *API) handleGetRewardsDay(w http.ResponseWriter, req *http.Request) {
	day, err := strconv.ParseUint(mux.Vars(req)["day"], 10, 64)
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}
	canonical, err := a.protocol.Oracle.CanonicalHash(day)
	if err != nil {
		writeError(w, err)
		return
	}
	if canonical.IsZero() {
		http.Error(w, "rewards day not finalized", http.StatusNotFound)
		return
	}
	alloc, err := a.protocol.Oracle.DayAllocation(day)
	if err != nil {
		writeError(w, err)
		return
	}
	snapshot, err := a.protocol.Oracle.SupplySnapshot(day)
	if err != nil {
		writeError(w, err)
		return
	}
	amounts := make([]string, 0, len(alloc.Amounts))
	for _, amount := range alloc.Amounts {
		amounts = append(amounts, amount.String())
	}
	writeJSON(w, map[string]any{
		"hash":           canonical,
		"apps":           alloc.Apps,
		"amounts":        amounts,
		"supplySnapshot": snapshot.String(),
	})
}

func (a *API) handleGetOpenRound(w http.ResponseWriter, req *http.Request) {
	hashes, err := a.protocol.Oracle.OpenRound()
	if err != nil {
		writeError(w, err)
		return
	}
	type submission struct {
		Hash          props.Bytes32 `json:"hash"`
		Confirmations uint64        `json:"confirmations"`
	}
	subs := make([]submission, 0, len(hashes))
	for _, hash := range hashes {
		sub, err := a.protocol.Oracle.Submission(hash)
		if err != nil {
			writeError(w, err)
			return
		}
		subs = append(subs, submission{Hash: hash, Confirmations: sub.Confirmations})
	}
	writeJSON(w, map[string]any{"submissions": subs})
}

func pathAddress(w http.ResponseWriter, req *http.Request, name string) (props.Address, bool) {
	addr, err := props.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return props.Address{}, false
	}
	return *addr, true
}

func queryUint(w http.ResponseWriter, req *http.Request, name string) (uint64, bool) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		http.Error(w, "missing query parameter "+name, http.StatusBadRequest)
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid query parameter "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
