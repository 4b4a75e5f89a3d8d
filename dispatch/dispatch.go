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

// Package dispatch classifies each inbound message and invokes the matching
// handler (spec.md §4.6). It is the one place that mutates the RIB and
// reruns the aggregator; every mutating handler finishes by replacing the
// cached coalesced view synchronously, so the view is never read half
// rebuilt (spec.md §9 Design Note: "Derived view coupling").
package dispatch

import (
	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/aggregate"
	"github.com/ribwerks/routed/logging"
	"github.com/ribwerks/routed/message"
	"github.com/ribwerks/routed/neighbor"
	"github.com/ribwerks/routed/propagate"
	"github.com/ribwerks/routed/rib"
	"github.com/ribwerks/routed/selector"
)

// ErrUnknownType is dispatch's own defense-in-depth copy of the "any other
// tag" error kind (spec.md §7); message.Envelope already rejects unknown
// tags at decode time, so this path is normally unreachable, but the
// dispatcher does not trust its caller to have used that decoder.
type ErrUnknownType struct {
	Type message.Kind
}

func (e *ErrUnknownType) Error() string {
	return "unknown message type: " + string(e.Type)
}

// Sender delivers an outbound envelope to a neighbor by handle. The
// dispatcher never talks to a transport.Channel directly — Router supplies
// this so dispatch stays decoupled from the transport contract.
type Sender func(to addr.Addr, env message.Envelope) error

// Dispatcher owns the RIB and the cached coalesced view; it is the only
// component the event loop hands messages to, and the only one meant to be
// driven from a single goroutine (spec.md §5).
type Dispatcher struct {
	RIB       *rib.RIB
	Neighbors neighbor.Table
	LocalASN  uint32
	Log       logging.Log
	Send      Sender

	view []rib.Entry
}

// New builds a Dispatcher over an empty RIB.
func New(neighbors neighbor.Table, localASN uint32, send Sender, log logging.Log) *Dispatcher {
	return &Dispatcher{
		RIB:       rib.New(),
		Neighbors: neighbors,
		LocalASN:  localASN,
		Log:       logging.Of(log),
		Send:      send,
	}
}

// View returns the current cached coalesced view (read-only).
func (d *Dispatcher) View() []rib.Entry {
	return d.view
}

// Handle classifies env (arriving from ingress) and invokes the matching
// handler.
func (d *Dispatcher) Handle(ingress addr.Addr, env message.Envelope) error {
	switch env.Type {
	case message.Update:
		return d.handleUpdate(ingress, env)
	case message.Revoke:
		return d.handleRevoke(ingress, env)
	case message.Data:
		return d.handleData(ingress, env)
	case message.Dump:
		return d.handleDump(ingress, env)
	default:
		d.Log.WARNING("dispatch", logging.KV{"event": "unknown-type", "type": string(env.Type)})
		return &ErrUnknownType{Type: env.Type}
	}
}

func (d *Dispatcher) rebuild() {
	d.view = aggregate.Aggregate(d.RIB.Snapshot())
}

func (d *Dispatcher) handleUpdate(ingress addr.Addr, env message.Envelope) error {
	d.RIB.AppendAnnouncement(env)

	body, err := message.DecodeUpdate(env.Msg)
	if err != nil {
		d.Log.WARNING("dispatch", logging.KV{"event": "malformed-update", "error": err.Error()})
		return err
	}

	network, err := addr.ParseAddr(body.Network)
	if err != nil {
		d.Log.WARNING("dispatch", logging.KV{"event": "malformed-address", "error": err.Error()})
		return err
	}
	mask, err := addr.ParseMask(body.Netmask)
	if err != nil {
		d.Log.WARNING("dispatch", logging.KV{"event": "malformed-address", "error": err.Error()})
		return err
	}

	d.RIB.Append(rib.Entry{
		Prefix:  addr.Prefix{Network: network, Mask: mask},
		NextHop: ingress,
		Attributes: rib.Attributes{
			LocalPref:  body.LocalPref,
			SelfOrigin: body.SelfOrigin,
			ASPath:     append([]uint32{}, body.ASPath...),
			Origin:     rib.ParseOrigin(body.Origin),
		},
	})

	d.rebuild()

	for _, out := range propagate.Update(d.Neighbors, ingress, d.LocalASN, body) {
		if err := d.Send(out.Dst, out); err != nil {
			d.Log.WARNING("dispatch", logging.KV{"event": "send-failed", "to": out.Dst.String(), "error": err.Error()})
		}
	}

	return nil
}

func (d *Dispatcher) handleRevoke(ingress addr.Addr, env message.Envelope) error {
	d.RIB.AppendAnnouncement(env)

	entries, err := message.DecodeRevoke(env.Msg)
	if err != nil {
		d.Log.WARNING("dispatch", logging.KV{"event": "malformed-revoke", "error": err.Error()})
		return err
	}

	for _, w := range entries {
		network, err := addr.ParseAddr(w.Network)
		if err != nil {
			d.Log.WARNING("dispatch", logging.KV{"event": "malformed-address", "error": err.Error()})
			continue
		}
		mask, err := addr.ParseMask(w.Netmask)
		if err != nil {
			d.Log.WARNING("dispatch", logging.KV{"event": "malformed-address", "error": err.Error()})
			continue
		}
		d.RIB.Withdraw(addr.Prefix{Network: network, Mask: mask}, ingress)
	}

	d.rebuild()

	for _, out := range propagate.Revoke(d.Neighbors, ingress, entries) {
		if err := d.Send(out.Dst, out); err != nil {
			d.Log.WARNING("dispatch", logging.KV{"event": "send-failed", "to": out.Dst.String(), "error": err.Error()})
		}
	}

	return nil
}

func (d *Dispatcher) handleData(ingress addr.Addr, env message.Envelope) error {
	egress, err := selector.Select(d.view, d.Neighbors, ingress, env.Dst)
	if err != nil {
		noRoute := message.NewNoRoute(neighbor.RouterSide(ingress), env.Src)
		if sendErr := d.Send(ingress, noRoute); sendErr != nil {
			d.Log.WARNING("dispatch", logging.KV{"event": "send-failed", "to": ingress.String(), "error": sendErr.Error()})
		}
		return err
	}

	return d.Send(egress, env)
}

func (d *Dispatcher) handleDump(ingress addr.Addr, env message.Envelope) error {
	var table []message.TableEntry
	for _, e := range d.view {
		table = append(table, message.TableEntry{
			Network: e.Prefix.Network.String(),
			Netmask: e.Prefix.Mask.String(),
			Peer:    e.NextHop.String(),
		})
	}

	reply := message.NewTable(neighbor.RouterSide(ingress), ingress, table)
	return d.Send(ingress, reply)
}
