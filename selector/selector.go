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

// Package selector runs the longest-prefix-match and five-step tie-break
// cascade of spec.md §4.4 against the coalesced view, then applies the
// customer/peer/provider policy filter.
package selector

import (
	"errors"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/neighbor"
	"github.com/ribwerks/routed/rib"
)

// ErrNoRoute is returned when the longest-prefix-match step yields nothing.
var ErrNoRoute = errors.New("no route")

// ErrPolicyReject is returned when the LPM cascade and tie-break produced a
// unique survivor, but step 7's relationship filter rejected it: neither
// rel(ingress) nor rel(egress) is Customer (spec.md §4.4 step 7, §7).
var ErrPolicyReject = errors.New("policy reject")

// Select runs the pipeline against the coalesced view and returns the
// single egress neighbor, or ErrNoRoute or ErrPolicyReject. An ingress or
// egress handle missing from neighbors also yields ErrPolicyReject.
func Select(view []rib.Entry, neighbors neighbor.Table, ingress, dst addr.Addr) (addr.Addr, error) {
	survivors := longestPrefixMatch(view, dst)
	if len(survivors) == 0 {
		return 0, ErrNoRoute
	}

	survivors = highestLocalPref(survivors)
	survivors = selfOriginPreference(survivors)
	survivors = shortestASPath(survivors)
	survivors = originPreference(survivors)
	survivor := lowestNextHop(survivors)

	ingressRel, ok := neighbors.Relationship(ingress)
	if !ok {
		return 0, ErrPolicyReject
	}
	egressRel, ok := neighbors.Relationship(survivor.NextHop)
	if !ok {
		return 0, ErrPolicyReject
	}

	if ingressRel != neighbor.Customer && egressRel != neighbor.Customer {
		return 0, ErrPolicyReject
	}

	return survivor.NextHop, nil
}

// longestPrefixMatch is step 1: keep every entry whose prefix matches dst,
// then keep only those sharing the greatest prefix length.
func longestPrefixMatch(view []rib.Entry, dst addr.Addr) []rib.Entry {
	var matched []rib.Entry
	best := -1
	for _, e := range view {
		if !addr.Matches(dst, e.Prefix) {
			continue
		}
		l := e.Prefix.Mask.Len()
		if l > best {
			best = l
			matched = matched[:0]
		}
		if l == best {
			matched = append(matched, e)
		}
	}
	return matched
}

// highestLocalPref is step 2.
func highestLocalPref(in []rib.Entry) []rib.Entry {
	var best uint32
	for _, e := range in {
		if e.Attributes.LocalPref > best {
			best = e.Attributes.LocalPref
		}
	}
	var out []rib.Entry
	for _, e := range in {
		if e.Attributes.LocalPref == best {
			out = append(out, e)
		}
	}
	return out
}

// selfOriginPreference is step 3: if any survivor self-originated, keep
// only those; otherwise keep all.
func selfOriginPreference(in []rib.Entry) []rib.Entry {
	var out []rib.Entry
	for _, e := range in {
		if e.Attributes.SelfOrigin {
			out = append(out, e)
		}
	}
	if len(out) > 0 {
		return out
	}
	return in
}

// shortestASPath is step 4.
func shortestASPath(in []rib.Entry) []rib.Entry {
	best := -1
	for _, e := range in {
		if best == -1 || len(e.Attributes.ASPath) < best {
			best = len(e.Attributes.ASPath)
		}
	}
	var out []rib.Entry
	for _, e := range in {
		if len(e.Attributes.ASPath) == best {
			out = append(out, e)
		}
	}
	return out
}

// originPreference is step 5: IGP beats EGP beats UNK.
func originPreference(in []rib.Entry) []rib.Entry {
	for _, want := range []rib.Origin{rib.IGP, rib.EGP, rib.UNK} {
		var out []rib.Entry
		for _, e := range in {
			if e.Attributes.Origin == want {
				out = append(out, e)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return in
}

// lowestNextHop is step 6: the only step that must reduce to exactly one
// entry (spec.md §8's selector-totality property guarantees steps 2-6 never
// empty out a nonempty set).
func lowestNextHop(in []rib.Entry) rib.Entry {
	best := in[0]
	for _, e := range in[1:] {
		if e.NextHop < best.NextHop {
			best = e
		}
	}
	return best
}
