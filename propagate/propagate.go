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

// Package propagate computes who gets told about an inbound update or
// revoke, and the outbound message body, per the minimal Gao-Rexford
// commercial policy of spec.md §4.5: export to a peer or provider only
// what was learned from a customer.
package propagate

import (
	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/message"
	"github.com/ribwerks/routed/neighbor"
)

// recipients returns every neighbor N != source for which at least one of
// rel(source) or rel(N) is Customer.
func recipients(neighbors neighbor.Table, source addr.Addr) []addr.Addr {
	sourceRel, ok := neighbors.Relationship(source)
	if !ok {
		return nil
	}

	var out []addr.Addr
	for handle, n := range neighbors {
		if handle == source {
			continue
		}
		if sourceRel == neighbor.Customer || n.Relationship == neighbor.Customer {
			out = append(out, handle)
		}
	}
	return out
}

// Update computes the outbound update envelopes for an inbound update from
// source. The local AS number is appended to the AS-path (REDESIGN FLAG,
// spec.md §9: AS-path mutation happens on update only); the source field of
// each outbound message is rewritten to the router's own address on the
// link toward the recipient.
func Update(neighbors neighbor.Table, source addr.Addr, localASN uint32, body message.UpdateBody) []message.Envelope {
	out := body
	out.ASPath = append(append([]uint32{}, body.ASPath...), localASN)

	var envelopes []message.Envelope
	for _, n := range recipients(neighbors, source) {
		routerSide := neighbor.RouterSide(n)
		envelopes = append(envelopes, message.NewUpdate(routerSide, n, out))
	}
	return envelopes
}

// Revoke computes the outbound revoke envelopes for an inbound revoke from
// source, carrying the withdrawn prefixes unmodified (REDESIGN FLAG,
// spec.md §9: no AS-path join on the revoke path).
func Revoke(neighbors neighbor.Table, source addr.Addr, withdrawn []message.RevokeEntry) []message.Envelope {
	var envelopes []message.Envelope
	for _, n := range recipients(neighbors, source) {
		routerSide := neighbor.RouterSide(n)
		envelopes = append(envelopes, message.NewRevoke(routerSide, n, withdrawn))
	}
	return envelopes
}
