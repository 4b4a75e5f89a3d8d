/*
 * VC5 load balancer. Copyright (C) 2021-present David Coles
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package transport is the neighbor-socket contract consumed by the core
// (spec.md §6): a reliable, message-oriented, bidirectional channel that
// yields exactly one self-contained message per read. This package is an
// external collaborator by spec — the core only depends on the Channel
// interface — but ships one concrete realization (JSON over a Unix-domain
// socket) so the repo produces a runnable binary.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/message"
)

// ErrClosed is returned by Read once the channel's peer has gone away
// (EOF) — the spec's TransportError, and the event loop's clean shutdown
// trigger (spec.md §5, §7). Other read failures are returned unchanged.
var ErrClosed = errors.New("channel closed")

// Channel is a single neighbor's message-oriented, bidirectional link.
type Channel interface {
	// Neighbor is the stable handle used to reach this channel's peer.
	Neighbor() addr.Addr
	// Read blocks for exactly one self-contained message, or returns an
	// error (ErrClosed on EOF).
	Read() (message.Envelope, error)
	// Write sends one message; writes are synchronous (spec.md §5).
	Write(message.Envelope) error
	Close() error
}

// jsonChannel implements Channel over any io.ReadWriteCloser using
// encoding/json's streaming decoder, which already reads exactly one JSON
// value per Decode call — the framing spec.md §6 asks for, with no
// hand-rolled length-prefixing needed.
type jsonChannel struct {
	neighbor addr.Addr
	rwc      io.ReadWriteCloser
	dec      *json.Decoder
	mu       sync.Mutex
}

// NewJSONChannel wraps rwc as a Channel for the given neighbor handle.
func NewJSONChannel(neighbor addr.Addr, rwc io.ReadWriteCloser) Channel {
	return &jsonChannel{
		neighbor: neighbor,
		rwc:      rwc,
		dec:      json.NewDecoder(rwc),
	}
}

func (c *jsonChannel) Neighbor() addr.Addr { return c.neighbor }

func (c *jsonChannel) Read() (message.Envelope, error) {
	var env message.Envelope
	if err := c.dec.Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return message.Envelope{}, ErrClosed
		}
		return message.Envelope{}, err
	}
	return env, nil
}

func (c *jsonChannel) Write(env message.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	_, err = c.rwc.Write(b)
	return err
}

func (c *jsonChannel) Close() error {
	return c.rwc.Close()
}

// DialUnix connects a Unix-domain socket channel for the given neighbor,
// mirroring the teacher's per-peer net.Dialer (bgp/connection.go) and the
// named-socket-per-neighbor convention this spec was distilled from.
func DialUnix(neighbor addr.Addr, path string) (Channel, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return NewJSONChannel(neighbor, conn), nil
}
