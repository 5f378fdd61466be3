// Copyright 2025 The netfight Authors
// This file is part of the netfight library.
//
// The netfight library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The netfight library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the netfight library. If not, see <http://www.gnu.org/licenses/>.

// Command netfight is the reference peer binary: it dials or listens for the
// opposing peer's websocket connection, wires up an orchestrator, and drops
// the operator into an interactive console exposing the surface spec
// section 6 calls the "operator surface" (push assets, push a script, start
// the match).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"gopkg.in/urfave/cli.v1"

	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/config"
	"github.com/netfight/netfight/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	listenFlag = cli.StringFlag{
		Name:  "listen",
		Usage: "address to accept the peer's websocket connection on (role: host)",
	}
	dialFlag = cli.StringFlag{
		Name:  "dial",
		Usage: "websocket URL of the peer to connect to (role: guest)",
	}
	playerFlag = cli.IntFlag{
		Name:  "player",
		Usage: "local player number, 1 or 2",
		Value: 1,
	}
	diskCASFlag = cli.StringFlag{
		Name:  "cas-dir",
		Usage: "directory for the on-disk asset store; empty keeps assets in memory only",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "netfight"
	app.Usage = "peer-to-peer rollback-netcode reference client"
	app.Flags = []cli.Flag{configFlag, listenFlag, dialFlag, playerFlag, diskCASFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if p := ctx.Int(playerFlag.Name); p != 0 {
		cfg.LocalPlayer = p
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))
	if len(cfg.LogNamespaces) > 0 {
		log.SetNamespaceFilter(cfg.LogNamespaces...)
	}

	store, closeStore, err := openStore(ctx.String(diskCASFlag.Name))
	if err != nil {
		return err
	}
	defer closeStore()

	listen := ctx.String(listenFlag.Name)
	dial := ctx.String(dialFlag.Name)
	if (listen == "") == (dial == "") {
		return fmt.Errorf("exactly one of --listen or --dial must be set")
	}

	var conn *websocket.Conn
	if listen != "" {
		conn, err = acceptOne(listen)
	} else {
		conn, _, err = websocket.DefaultDialer.Dial(dial, nil)
	}
	if err != nil {
		return fmt.Errorf("establishing peer connection: %w", err)
	}

	sess := newSession(cfg, store, conn)
	return runConsole(sess)
}

func openStore(dir string) (cas.Store, func(), error) {
	if dir == "" {
		return cas.NewMemStore(), func() {}, nil
	}
	disk, err := cas.OpenDiskStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening disk CAS at %s: %w", dir, err)
	}
	return disk, func() { disk.Close() }, nil
}

// acceptOne upgrades exactly the first incoming connection on addr and
// returns it; the reference peer only ever talks to a single opponent.
func acceptOne(addr string) (*websocket.Conn, error) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	connCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{Addr: addr}
	srv.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errCh <- err
			return
		}
		connCh <- c
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case c := <-connCh:
		go srv.Close()
		return c, nil
	case err := <-errCh:
		return nil, err
	}
}
