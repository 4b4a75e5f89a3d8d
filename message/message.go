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

// Package message defines the wire envelope exchanged with neighbors: a
// small tagged variant over six message kinds (spec.md §9's Design Note),
// decoded up front so the dispatcher never has to guess a shape.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/ribwerks/routed/addr"
)

// Kind is the envelope's type tag.
type Kind string

const (
	Update  Kind = "update"
	Revoke  Kind = "revoke"
	Data    Kind = "data"
	NoRoute Kind = "no route"
	Dump    Kind = "dump"
	Table   Kind = "table"
)

// Envelope is the JSON object exchanged over a neighbor channel:
// {"src":..., "dst":..., "type":..., "msg":...}.
type Envelope struct {
	Src  addr.Addr       `json:"-"`
	Dst  addr.Addr       `json:"-"`
	Type Kind            `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// wire is the on-the-wire shape: src/dst are dotted-quad strings.
type wire struct {
	Src  string          `json:"src"`
	Dst  string          `json:"dst"`
	Type Kind            `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// UnmarshalJSON rejects unknown type tags up front (Design Note, spec.md §9).
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Type {
	case Update, Revoke, Data, NoRoute, Dump, Table:
	default:
		return &ErrUnknownType{Type: w.Type}
	}

	src, err := addr.ParseAddr(w.Src)
	if err != nil {
		return err
	}
	dst, err := addr.ParseAddr(w.Dst)
	if err != nil {
		return err
	}

	e.Src = src
	e.Dst = dst
	e.Type = w.Type
	e.Msg = w.Msg
	return nil
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	msg := e.Msg
	if msg == nil {
		msg = json.RawMessage("{}")
	}
	return json.Marshal(wire{Src: e.Src.String(), Dst: e.Dst.String(), Type: e.Type, Msg: msg})
}

// ErrUnknownType is returned by Envelope's decoder, up front, on an
// unrecognized type tag. The dispatcher has its own dispatch.ErrUnknownType.
type ErrUnknownType struct {
	Type Kind
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// UpdateBody is the msg body of an update envelope.
type UpdateBody struct {
	Network    string   `json:"network"`
	Netmask    string   `json:"netmask"`
	LocalPref  uint32   `json:"localpref"`
	ASPath     []uint32 `json:"ASPath"`
	Origin     string   `json:"origin"`
	SelfOrigin bool     `json:"selfOrigin"`
}

// RevokeEntry is one element of a revoke envelope's msg body array.
type RevokeEntry struct {
	Network string `json:"network"`
	Netmask string `json:"netmask"`
}

// TableEntry is one element of a table reply's msg body array.
type TableEntry struct {
	Network string `json:"network"`
	Netmask string `json:"netmask"`
	Peer    string `json:"peer"`
}

// DecodeUpdate parses an update envelope's msg body.
func DecodeUpdate(msg json.RawMessage) (UpdateBody, error) {
	var u UpdateBody
	err := json.Unmarshal(msg, &u)
	return u, err
}

// DecodeRevoke parses a revoke envelope's msg body.
func DecodeRevoke(msg json.RawMessage) ([]RevokeEntry, error) {
	var r []RevokeEntry
	err := json.Unmarshal(msg, &r)
	return r, err
}

// NewUpdate builds an update envelope.
func NewUpdate(src, dst addr.Addr, body UpdateBody) Envelope {
	raw, _ := json.Marshal(body)
	return Envelope{Src: src, Dst: dst, Type: Update, Msg: raw}
}

// NewRevoke builds a revoke envelope.
func NewRevoke(src, dst addr.Addr, entries []RevokeEntry) Envelope {
	raw, _ := json.Marshal(entries)
	return Envelope{Src: src, Dst: dst, Type: Revoke, Msg: raw}
}

// NewNoRoute builds the router-generated "no route" reply: empty body,
// source is the router's own address on the ingress link.
func NewNoRoute(src, dst addr.Addr) Envelope {
	return Envelope{Src: src, Dst: dst, Type: NoRoute, Msg: json.RawMessage("{}")}
}

// NewTable builds a table reply carrying the coalesced view.
func NewTable(src, dst addr.Addr, entries []TableEntry) Envelope {
	raw, _ := json.Marshal(entries)
	return Envelope{Src: src, Dst: dst, Type: Table, Msg: raw}
}

// NewData wraps an opaque data payload, forwarded verbatim.
func NewData(src, dst addr.Addr, payload json.RawMessage) Envelope {
	return Envelope{Src: src, Dst: dst, Type: Data, Msg: payload}
}
