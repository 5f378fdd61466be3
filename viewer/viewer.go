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

// Package viewer specifies, at the interface only, the rendering surface
// spec section 1 scopes out of the core: "a scene-graph viewer that is a
// pure consumer of state snapshots". The real viewer is a collaborator
// outside this module; Viewer and the Stub implementation here exist so
// the orchestrator has something concrete to drive and test against.
package viewer

import (
	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/sim"
	"github.com/netfight/netfight/wire"
)

// Viewer is the consumer surface the orchestrator drives once per tick and
// once per assembled asset bundle. It never feeds anything back into the
// simulation.
type Viewer interface {
	// OnState is called with the latest committed snapshot after every
	// simulation tick.
	OnState(s sim.State)

	// OnAssetsReady is called when an asset bundle finishes assembling;
	// the viewer extracts payloads from store by the manifest's chunk
	// hashes (spec 4.4 "Assembly semantics").
	OnAssetsReady(m wire.Manifest, store cas.Store)

	// OnStatus surfaces an opaque operator-facing status string (spec 7's
	// "opaque status channel"), e.g. desync warnings or script errors.
	OnStatus(msg string)
}

// Stub is a minimal Viewer that just remembers what it was told, useful
// for tests and for the CLI operator console's console log.
type Stub struct {
	States   []sim.State
	Statuses []string
}

// NewStub returns an empty Stub.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) OnState(st sim.State) { s.States = append(s.States, st) }

func (s *Stub) OnAssetsReady(m wire.Manifest, store cas.Store) {
	s.Statuses = append(s.Statuses, "assets ready: "+m.ID)
}

func (s *Stub) OnStatus(msg string) { s.Statuses = append(s.Statuses, msg) }
