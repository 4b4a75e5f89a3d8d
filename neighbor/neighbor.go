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

// Package neighbor holds the fixed, process-lifetime mapping from neighbor
// handle to commercial relationship.
package neighbor

import (
	"fmt"

	"github.com/ribwerks/routed/addr"
)

// Relationship is one of the three Gao-Rexford commercial relationships.
// Modeled as an enum, never as a bare string, past the boundary parser.
type Relationship int

const (
	Customer Relationship = iota
	Peer
	Provider
)

func (r Relationship) String() string {
	switch r {
	case Customer:
		return "cust"
	case Peer:
		return "peer"
	case Provider:
		return "prov"
	default:
		return "unknown"
	}
}

// ParseRelationship parses one of the three startup tokens (spec.md §6).
func ParseRelationship(s string) (Relationship, error) {
	switch s {
	case "cust":
		return Customer, nil
	case "peer":
		return Peer, nil
	case "prov":
		return Provider, nil
	default:
		return 0, fmt.Errorf("unknown relationship %q", s)
	}
}

// Neighbor is a directly connected AS, identified by the address used to
// reach it and tagged with exactly one relationship.
type Neighbor struct {
	Handle       addr.Addr
	Relationship Relationship
}

// Table is the fixed set of neighbors for the process lifetime.
type Table map[addr.Addr]Neighbor

// Relationship looks up the relationship of a known neighbor handle.
func (t Table) Relationship(h addr.Addr) (Relationship, bool) {
	n, ok := t[h]
	if !ok {
		return 0, false
	}
	return n.Relationship, true
}

// RouterSide returns the router's own address on the link toward n: n's
// address with the final octet replaced by 1 (spec.md §6).
func RouterSide(n addr.Addr) addr.Addr {
	return (n &^ 0xff) | 1
}
