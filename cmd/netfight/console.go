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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/livechan"
	"github.com/netfight/netfight/wire"
)

// runConsole drives the interactive operator surface of spec section 6:
// pushing a script and an asset bundle, issuing the local GameStart, and
// checking status. It runs until the operator types "quit" or sends EOF.
func runConsole(s *session) error {
	defer s.close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("netfight operator console. Commands: push-script, push-manifest, start, status, mismatches, verify <description>, quit")
	for {
		input, err := line.Prompt("netfight> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "status":
			fmt.Printf("session: %s  phase: %s\n", s.id, s.orch.Phase())
			if m, err := s.orch.Assembled(); err != nil {
				fmt.Println("assets:", err)
			} else {
				fmt.Println("assets: ready, manifest", m.ID)
			}
		case "verify":
			if len(fields) < 2 {
				fmt.Println("usage: verify <session description text>")
				continue
			}
			desc := strings.Join(fields[1:], " ")
			fmt.Println("verification code:", livechan.DeriveVerificationCode([]byte(desc)))
		case "mismatches":
			for _, m := range s.orch.RecentMismatches() {
				fmt.Printf("frame %d: local=%08x remote=%08x\n", m.Frame, m.Local, m.Remote)
			}
		case "start":
			if err := s.orch.StartLocal(); err != nil {
				fmt.Fprintln(os.Stderr, "start failed:", err)
			}
		case "push-script":
			if len(fields) != 3 {
				fmt.Println("usage: push-script <name> <path>")
				continue
			}
			if err := pushScript(s, fields[1], fields[2]); err != nil {
				fmt.Fprintln(os.Stderr, "push-script failed:", err)
			}
		case "push-manifest":
			if len(fields) != 3 {
				fmt.Println("usage: push-manifest <id> <path>")
				continue
			}
			if err := pushManifest(s, fields[1], fields[2]); err != nil {
				fmt.Fprintln(os.Stderr, "push-manifest failed:", err)
			}
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

// pushScript reads the script source at path and sends it as a ScriptPush
// frame. The orchestrator on both ends reacts identically whether the
// script arrived over the wire or was applied locally (spec 4.4/4.9), so
// the operator issuing this command also drives their own orchestrator.
func pushScript(s *session, name, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	frame, err := wire.EncodeScriptPush(wire.ScriptPush{Name: name, Body: body})
	if err != nil {
		return err
	}
	if err := s.ch.Send(frame); err != nil {
		return err
	}
	s.orch.HandleScriptPush(wire.ScriptPush{Name: name, Body: body})
	return nil
}

// pushManifest reads a whole asset bundle file as a single chunk, stores it
// in the local CAS, and sends the Manifest describing it (spec 4.4). The
// reference console only ever pushes one-chunk bundles; a real authoring
// pipeline would split a bundle into many chunks for incremental delivery.
func pushManifest(s *session, id, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	hash := cas.HashOf(data)

	store := s.orch.Store()
	if store == nil {
		return fmt.Errorf("no CAS store wired into orchestrator")
	}
	store.Put(hash, data)

	m := wire.Manifest{
		ID:    id,
		Entry: hash,
		Chunks: []wire.ChunkRef{
			{Hash: hash, Size: int64(len(data)), Mime: "application/octet-stream"},
		},
	}
	frame, err := wire.EncodeManifest(m)
	if err != nil {
		return err
	}
	if err := s.ch.Send(frame); err != nil {
		return err
	}

	chunkFrame, err := wire.EncodeChunk(wire.Chunk{Hash: hash, Offset: 0, Payload: data})
	if err != nil {
		return err
	}
	if err := s.ch.Send(chunkFrame); err != nil {
		return err
	}

	return s.orch.HandleManifest(m)
}
