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

// Package routed wires the neighbor channels to the dispatcher and drives
// the single-threaded event loop (spec.md §4.7). The multiplexing shape is
// the teacher's own: bgp.Pool (bgp/pool.go) runs one goroutine per session
// feeding channels a single select loop drains; here one reader goroutine
// per transport.Channel feeds a shared inbound channel that Run drains,
// which preserves per-neighbor arrival order and single-threaded dispatch
// without literal polling (spec.md §5, and SPEC_FULL.md §4.7).
package routed

import (
	"errors"
	"sync"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/dispatch"
	"github.com/ribwerks/routed/logging"
	"github.com/ribwerks/routed/message"
	"github.com/ribwerks/routed/neighbor"
	"github.com/ribwerks/routed/rib"
	"github.com/ribwerks/routed/transport"
)

// inbound pairs a received envelope with the neighbor handle of the
// channel it arrived on.
type inbound struct {
	from addr.Addr
	env  message.Envelope
	err  error
}

// Router owns the neighbor channels and the dispatcher for the lifetime of
// the process (spec.md §5's "shared resources").
type Router struct {
	channels   map[addr.Addr]transport.Channel
	dispatcher *dispatch.Dispatcher
	log        logging.Log

	in   chan inbound
	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a Router over the given neighbor table and channels. channels
// must contain exactly one entry per neighbor in neighbors, keyed the same
// way (spec.md §6: "established at startup, keyed by N's address").
func New(neighbors neighbor.Table, localASN uint32, channels map[addr.Addr]transport.Channel, log logging.Log) *Router {
	r := &Router{
		channels: channels,
		log:      logging.Of(log),
		in:       make(chan inbound, len(channels)),
		done:     make(chan struct{}),
	}
	r.dispatcher = dispatch.New(neighbors, localASN, r.send, log)
	return r
}

// View exposes the dispatcher's cached coalesced view, mainly for tests and
// status reporting.
func (r *Router) View() []rib.Entry {
	return r.dispatcher.View()
}

func (r *Router) send(to addr.Addr, env message.Envelope) error {
	ch, ok := r.channels[to]
	if !ok {
		return errors.New("unknown neighbor: " + to.String())
	}
	return ch.Write(env)
}

// Run starts one reader goroutine per channel and drives the dispatch loop
// until a channel reports transport.ErrClosed (spec.md §4.7, §7
// TransportError: "Exit event loop"). It closes every channel before it
// returns, which releases the reader goroutines still blocked in Read.
func (r *Router) Run() error {
	for handle, ch := range r.channels {
		r.wg.Add(1)
		go r.readLoop(handle, ch)
	}

	defer func() {
		close(r.done)
		for _, ch := range r.channels {
			ch.Close()
		}
		r.wg.Wait()
	}()

	for msg := range r.in {
		if msg.err != nil {
			if errors.Is(msg.err, transport.ErrClosed) {
				return nil
			}
			r.log.ERR("router", logging.KV{"event": "transport-error", "neighbor": msg.from.String(), "error": msg.err.Error()})
			return msg.err
		}

		if err := r.dispatcher.Handle(msg.from, msg.env); err != nil {
			r.log.WARNING("router", logging.KV{"event": "dispatch-error", "neighbor": msg.from.String(), "error": err.Error()})
		}
	}

	return nil
}

func (r *Router) readLoop(handle addr.Addr, ch transport.Channel) {
	defer r.wg.Done()
	for {
		env, err := ch.Read()
		var unknown *message.ErrUnknownType
		var malformed *addr.ErrMalformed
		if errors.As(err, &unknown) || errors.As(err, &malformed) {
			// the bad message is dropped; the channel stays usable
			r.log.WARNING("router", logging.KV{"event": "decode-error", "neighbor": handle.String(), "error": err.Error()})
			continue
		}
		select {
		case r.in <- inbound{from: handle, env: env, err: err}:
		case <-r.done:
			return
		}
		if err != nil {
			return
		}
	}
}
