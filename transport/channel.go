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

// Package transport provides Channel, a websocket-backed frame channel for
// a native Go-to-Go reference peer. A websocket is reliable and ordered, so
// a Channel never drops or reorders frames; the reference peer carries both
// the "assets" and "live" logical channels of spec section 6 over one
// Channel. The browser build this spec's rendering surface targets
// substitutes WebRTC data channels carrying the same opcodes.
package transport

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/netfight/netfight/log"
)

var logger = log.New("transport")

// HighWaterMark and LowWaterMark are the backpressure thresholds of spec
// 4.4: 1 MiB each.
const (
	HighWaterMark = 1 << 20
	LowWaterMark  = 1 << 20
)

// Channel is the minimal transport surface the assets and live engines
// need: send a binary frame, and be notified of incoming frames.
type Channel struct {
	conn *websocket.Conn

	mu            sync.Mutex
	bufferedBytes int64
	lowWaterCh    chan struct{}

	onMessage func(frame []byte)
	closed    bool
}

// NewChannel wraps an established websocket connection. onMessage is
// invoked from the channel's read loop for every binary frame received.
func NewChannel(conn *websocket.Conn, onMessage func(frame []byte)) *Channel {
	c := &Channel{conn: conn, onMessage: onMessage, lowWaterCh: make(chan struct{}, 1)}
	go c.readLoop()
	return c
}

func (c *Channel) readLoop() {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug("channel closed", "err", err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if c.onMessage != nil {
			c.onMessage(data)
		}
	}
}

// Send writes one binary frame. It is not itself backpressure-aware; a
// caller streaming many large frames (the asset engine's sending side)
// should use BufferedAmount/WaitForLowWater around repeated Send calls,
// per spec 4.4.
func (c *Channel) Send(frame []byte) error {
	c.mu.Lock()
	c.bufferedBytes += int64(len(frame))
	c.mu.Unlock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, frame)
	c.mu.Lock()
	c.bufferedBytes -= int64(len(frame))
	if c.bufferedBytes < 0 {
		c.bufferedBytes = 0
	}
	low := c.bufferedBytes <= LowWaterMark && !c.closed
	c.mu.Unlock()
	if low {
		select {
		case c.lowWaterCh <- struct{}{}:
		default:
		}
	}
	return err
}

// BufferedAmount returns the channel's current outstanding byte count, the
// same quantity WebRTC's RTCDataChannel.bufferedAmount exposes.
func (c *Channel) BufferedAmount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferedBytes
}

// WaitForLowWater blocks until BufferedAmount is at or below LowWaterMark,
// or the channel is closed. It is a no-op if already below the mark.
func (c *Channel) WaitForLowWater() {
	if c.BufferedAmount() <= LowWaterMark {
		return
	}
	<-c.lowWaterCh
}

// Close tears down the underlying connection, unblocking any pending
// WaitForLowWater call (spec 5 "Session teardown cancels any pending
// buffered-amount-low wait by disposing the transport").
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	close(c.lowWaterCh)
	return c.conn.Close()
}
