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

// Package rib holds the authoritative routing information base: the ordered
// list of learned routes and the retained raw announcement archive. The RIB
// is never read directly by the selector — only through the aggregator's
// derived coalesced view (spec.md §3).
package rib

import (
	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/message"
)

// Origin is the route's origin attribute; IGP > EGP > UNK in preference.
type Origin int

const (
	IGP Origin = iota
	EGP
	UNK
)

func (o Origin) String() string {
	switch o {
	case IGP:
		return "IGP"
	case EGP:
		return "EGP"
	default:
		return "UNK"
	}
}

// ParseOrigin parses the wire string form of an origin attribute.
func ParseOrigin(s string) Origin {
	switch s {
	case "IGP":
		return IGP
	case "EGP":
		return EGP
	default:
		return UNK
	}
}

// Attributes are the four selection attributes carried by every route.
type Attributes struct {
	LocalPref  uint32
	SelfOrigin bool
	ASPath     []uint32
	Origin     Origin
}

// Entry is a single RIB record: a prefix, its next hop, and attributes.
type Entry struct {
	Prefix     addr.Prefix
	NextHop    addr.Addr
	Attributes Attributes
}

// attributeEqual reports whether two entries share next-hop, localpref,
// mask length, AS-path and origin/self-origin — the aggregator's merge
// eligibility test (spec.md §4.3). It lives here, not in aggregate, because
// it is a property of rib.Entry that rib's own tests rely on too.
func attributeEqual(a, b Entry) bool {
	if a.NextHop != b.NextHop {
		return false
	}
	if a.Attributes.LocalPref != b.Attributes.LocalPref {
		return false
	}
	if a.Prefix.Mask.Len() != b.Prefix.Mask.Len() {
		return false
	}
	if a.Attributes.SelfOrigin != b.Attributes.SelfOrigin {
		return false
	}
	if a.Attributes.Origin != b.Attributes.Origin {
		return false
	}
	if len(a.Attributes.ASPath) != len(b.Attributes.ASPath) {
		return false
	}
	for i := range a.Attributes.ASPath {
		if a.Attributes.ASPath[i] != b.Attributes.ASPath[i] {
			return false
		}
	}
	return true
}

// AttributeEqual exports the merge-eligibility test for the aggregator.
func AttributeEqual(a, b Entry) bool { return attributeEqual(a, b) }

// RIB is the router's authoritative, append-ordered route list plus the
// archive of raw announcements that produced it.
type RIB struct {
	entries []Entry
	archive []message.Envelope
}

// New returns an empty RIB.
func New() *RIB {
	return &RIB{}
}

// Append adds a new route entry, preserving insertion order.
func (r *RIB) Append(e Entry) {
	r.entries = append(r.entries, e)
}

// Withdraw removes every entry whose (prefix, next-hop) exactly matches the
// given pair, per the REDESIGN FLAG in spec.md §9 (exact match, not an OR of
// inequalities).
func (r *RIB) Withdraw(p addr.Prefix, nextHop addr.Addr) int {
	out := r.entries[:0:0]
	removed := 0
	for _, e := range r.entries {
		if e.Prefix == p && e.NextHop == nextHop {
			removed++
			continue
		}
		out = append(out, e)
	}
	r.entries = out
	return removed
}

// Snapshot returns a defensive copy of the entry list in insertion order —
// the order the aggregator's determinism depends on (spec.md §4.2).
func (r *RIB) Snapshot() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// AppendAnnouncement retains an inbound update/revoke message verbatim and
// in arrival order, so the coalesced view can be rebuilt after a revoke
// without replaying neighbors (spec.md §3).
func (r *RIB) AppendAnnouncement(env message.Envelope) {
	r.archive = append(r.archive, env)
}

// Archive returns the retained announcements in arrival order. Nothing in
// this repo reads it back operationally (spec.md §9 — "the current spec
// only writes to the archive, readers are out of scope"); it is exposed so
// tests can assert retention.
func (r *RIB) Archive() []message.Envelope {
	out := make([]message.Envelope, len(r.archive))
	copy(out, r.archive)
	return out
}
