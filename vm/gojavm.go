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

package vm

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/netfight/netfight/log"
)

var logger = log.New("vm")

// GojaVM runs fighter logic scripts written in ECMAScript 5.1 through goja,
// a pure-Go VM with no cgo dependency - required so the same script VM
// adapter can later target a WASM build of the core without swapping
// implementations (see SPEC_FULL.md's note on why duktape was dropped).
//
// Determinism is enforced by never exposing Date, Math.random, or any host
// I/O binding into the runtime's global object; the script's only inputs
// are the arguments passed to tick, and its only persistent state is
// whatever it assigns to its own global scope, which this adapter treats
// as part of the deterministic per-VM state the rollback engine must
// account for.
type GojaVM struct {
	rt        *goja.Runtime
	src       []byte
	tickFn    goja.Callable
	lastError error
}

// NewGojaVM returns an empty, unloaded VM.
func NewGojaVM() *GojaVM {
	return &GojaVM{}
}

// LoadSource implements VM.
func (g *GojaVM) LoadSource(src []byte) bool {
	rt := goja.New()
	rt.SetFieldNameMapper(goja.UncapFieldNameMapper())

	if _, err := rt.RunString(string(src)); err != nil {
		g.lastError = fmt.Errorf("vm: compile error: %w", err)
		return false
	}

	tickVal := rt.Get("tick")
	if tickVal == nil || goja.IsUndefined(tickVal) {
		g.lastError = fmt.Errorf("vm: script does not define tick(frame, inputMask)")
		return false
	}
	fn, ok := goja.AssertFunction(tickVal)
	if !ok {
		g.lastError = fmt.Errorf("vm: tick is not callable")
		return false
	}

	g.rt = rt
	g.src = append([]byte(nil), src...)
	g.tickFn = fn
	g.lastError = nil
	return true
}

// Tick implements VM. A script runtime error during tick is treated as "no
// commands produced", matching spec 4.6 step 4's fallback and spec 7's
// "Script runtime" disposition - the simulation step then falls back to
// direct input-to-velocity mapping for that frame.
func (g *GojaVM) Tick(frame uint32, inputMask uint32) []Command {
	if g.tickFn == nil {
		g.lastError = fmt.Errorf("vm: tick called before a source was loaded")
		return nil
	}

	result, err := g.tickFn(goja.Undefined(), g.rt.ToValue(frame), g.rt.ToValue(inputMask))
	if err != nil {
		g.lastError = fmt.Errorf("vm: runtime error in tick: %w", err)
		logger.Warn("script runtime error, falling back to input mapping", "frame", frame, "err", err)
		return nil
	}

	exported := result.Export()
	raw, ok := exported.([]interface{})
	if !ok {
		// A script that returns a non-array (including undefined/null) is
		// treated as "no commands", same disposition as a runtime error.
		return nil
	}

	cmds := make([]Command, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		kind, _ := m["t"].(string)
		switch CommandKind(kind) {
		case CmdMove:
			dx := 0
			switch v := m["dx"].(type) {
			case int64:
				dx = int(v)
			case float64:
				dx = int(v)
			}
			cmds = append(cmds, Command{Kind: CmdMove, Dx: dx})
		case CmdAnim:
			name, _ := m["name"].(string)
			cmds = append(cmds, Command{Kind: CmdAnim, Name: name})
		default:
			// unknown command kind: ignored, per spec 4.5.
		}
	}
	return cmds
}

// Clone implements VM: it returns a new GojaVM that has already loaded the
// same source into a fresh runtime, so it starts with no accumulated scope,
// identical to a freshly seeded VM. Cloning an unloaded VM returns an
// unloaded VM.
func (g *GojaVM) Clone() VM {
	clone := NewGojaVM()
	if g.src != nil {
		clone.LoadSource(g.src)
	}
	return clone
}

// TakeLastError implements VM.
func (g *GojaVM) TakeLastError() error {
	err := g.lastError
	g.lastError = nil
	return err
}
