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

// Package aggregate produces the coalesced view from the RIB: a list in
// which no two entries are both adjacent and attribute-equal (spec.md
// §4.3). It is rerun end to end on every RIB mutation — the derived view
// is never patched incrementally (spec.md §9 Design Note).
package aggregate

import (
	"sort"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/rib"
)

// Aggregate runs the merge loop to a fixed point and returns the coalesced
// view. It never mutates entries.
//
// Per the REDESIGN FLAG in spec.md §9, this does not early-return after one
// pass: a pass that performs any merge is followed by another pass, so
// chains of three or more mergeable routes fully coalesce instead of
// stopping halfway.
func Aggregate(entries []rib.Entry) []rib.Entry {
	current := make([]rib.Entry, len(entries))
	copy(current, entries)

	for {
		next, merged := pass(current)
		current = next
		if !merged {
			return current
		}
	}
}

// pass scans for the first mergeable pair (in a fixed, deterministic scan
// order — see below) and, if found, replaces it with its supernet. The
// result of repeated passes is order-independent (spec.md §4.3: merging a
// non-overlapping pair commutes with any other), but a concrete scan still
// needs *a* order to find "the first" pair in; this implementation orders
// candidates by (mask length descending, network address ascending) so
// that results are reproducible run to run, which the determinism property
// in spec.md §8 requires of any one implementation even though the spec
// itself only requires the rule to be order-independent in the abstract.
func pass(entries []rib.Entry) ([]rib.Entry, bool) {
	ordered := make([]rib.Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Prefix.Mask.Len() != ordered[j].Prefix.Mask.Len() {
			return ordered[i].Prefix.Mask.Len() > ordered[j].Prefix.Mask.Len()
		}
		return ordered[i].Prefix.Network < ordered[j].Prefix.Network
	})

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if !rib.AttributeEqual(ordered[i], ordered[j]) {
				continue
			}
			supernet, ok := addr.Supernet(ordered[i].Prefix, ordered[j].Prefix)
			if !ok {
				continue
			}
			merged := ordered[i]
			merged.Prefix = supernet

			out := make([]rib.Entry, 0, len(ordered)-1)
			for k, e := range ordered {
				if k == i || k == j {
					continue
				}
				out = append(out, e)
			}
			out = append(out, merged)
			return out, true
		}
	}

	return ordered, false
}
