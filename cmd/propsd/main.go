// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/handlers"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/livethelifetv/props-protocol/api"
	"github.com/livethelifetv/props-protocol/events"
	"github.com/livethelifetv/props-protocol/genesis"
	"github.com/livethelifetv/props-protocol/kv"
	"github.com/livethelifetv/props-protocol/metrics"
	"github.com/livethelifetv/props-protocol/protocol"
	"github.com/livethelifetv/props-protocol/state"
)

var (
	version   string
	gitCommit string

	logger = log.New("pkg", "propsd")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return version + "-" + gitCommit
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "propsd",
		Usage:     "Props Protocol node",
		Copyright: "2026 The Props Protocol developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			apiAddrFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cfg, err := loadGenesis(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	vault, err := cfg.VaultAddress()
	if err != nil {
		return err
	}

	db, err := openDB(ctx.String(dataDirFlag.Name))
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing state database..."); db.Close() }()

	st := state.New(db)
	proto := protocol.NewBuiltin(st, vault, eventLogger{})

	start, err := proto.Clock.Start()
	if err != nil {
		return err
	}
	if start == 0 {
		if err := genesis.Build(proto.Protocol, cfg); err != nil {
			return err
		}
		if err := st.Commit(db); err != nil {
			return err
		}
		logger.Info("genesis state built", "startTime", cfg.StartTime, "apps", len(cfg.Apps))
	}

	srv := &http.Server{
		Addr:    ctx.String(apiAddrFlag.Name),
		Handler: handlers.CombinedLoggingHandler(os.Stdout, api.New(proto.Protocol)),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server started", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-exitSignal():
		logger.Info("exit signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("stopping API server...")
	return srv.Shutdown(shutdownCtx)
}

func initLogger(verbosity int) {
	level := log.FromLegacyLevel(verbosity)
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	log.SetDefault(log.NewLogger(handler))
}

func loadGenesis(path string) (*genesis.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("missing --%s", genesisFlag.Name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return genesis.Load(f)
}

func openDB(dataDir string) (*kv.LevelDB, error) {
	if dataDir == "" {
		logger.Info("using in-memory state database")
		return kv.NewMem()
	}
	path := filepath.Join(dataDir, "state.db")
	logger.Info("opening state database", "path", path)
	return kv.NewLevelDB(path, kv.Options{CacheSize: 128, OpenFilesCacheCapacity: 512})
}

func exitSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}

// eventLogger forwards protocol events to the debug log.
type eventLogger struct{}

func (eventLogger) Emit(e events.Event) {
	logger.Debug("protocol event", "name", e.Name(), "event", fmt.Sprintf("%+v", e))
}
