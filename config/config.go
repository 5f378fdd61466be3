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

// Package config holds the runtime tunables spec section 6 "Runtime
// configuration" names, plus the implementation-defined constants spec
// sections 4.7/4.9 leave open (history size, tick rate, fingerprint
// interval). The backpressure water marks are not configurable here; they
// are constants in package transport. Loaded from TOML, matching the node's
// own config-file convention.
package config

import (
	"os"

	"github.com/naoina/toml"
)

// Config is the full set of orchestrator-level tunables.
type Config struct {
	// StunURL is used only by the out-of-scope signaling ceremony; carried
	// here so the operator console can surface it (spec 6).
	StunURL string `toml:"stun_url"`

	// LogLevel is one of error|warn|info|debug|trace.
	LogLevel string `toml:"log_level"`

	// LogNamespaces restricts log output to these namespaces; empty means
	// all namespaces.
	LogNamespaces []string `toml:"log_namespaces"`

	// DefaultMeshPath and DefaultSpritePath back the "no file selected"
	// fallback named in spec 6.
	DefaultMeshPath   string `toml:"default_mesh_path"`
	DefaultSpritePath string `toml:"default_sprite_path"`

	// HistorySize is H, the rollback history ring capacity (spec 3/4.7
	// requires H >= 64).
	HistorySize uint32 `toml:"history_size"`

	// TickRate is the simulation frequency in Hz (spec 4.9: nominally 60).
	TickRate float64 `toml:"tick_rate"`

	// FingerprintInterval is how many frames elapse between StateHash
	// emissions (spec 4.8: every 16 frames).
	FingerprintInterval uint32 `toml:"fingerprint_interval"`

	// LocalPlayer is 1 or 2, set once at session negotiation time.
	LocalPlayer int `toml:"local_player"`
}

// Default returns the spec-mandated defaults: 60Hz tick rate, H=128,
// fingerprint every 16 frames, the public default STUN server.
func Default() Config {
	return Config{
		StunURL:             "stun:stun.l.google.com:19302",
		LogLevel:            "info",
		HistorySize:         128,
		TickRate:            60,
		FingerprintInterval: 16,
		LocalPlayer:         1,
	}
}

// Load reads a TOML config file at path, overlaying it onto Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TickPeriodSeconds returns the fixed tick period (spec 4.9: 16.666ms at
// the default 60Hz rate).
func (c Config) TickPeriodSeconds() float64 {
	return 1.0 / c.TickRate
}
