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

// Package logging carries the structured-event logging interface the
// teacher's log.Log/bgp.Pool pair used (a small set of severities taking a
// facility string and a key-value bag, not printf formatting), backed by
// go.uber.org/zap.
package logging

import (
	"go.uber.org/zap"
)

// KV is a structured field bag, same shape as bgp.Pool's KV in the teacher
// (bgp/pool.go).
type KV = map[string]any

// Log is the event-logging contract the dispatcher and the router take, so
// that the error kinds in spec.md §7 ("log; drop") are contained
// and observable without panicking.
type Log interface {
	NOTICE(facility string, fields KV)
	WARNING(facility string, fields KV)
	ERR(facility string, fields KV)
}

// Nil discards everything. A nil Log passed to dispatch.New or routed.New
// is replaced by Nil (through Of), so logging is opt-in (same pattern as
// log.Nil in the teacher).
type Nil struct{}

func (Nil) NOTICE(string, KV)  {}
func (Nil) WARNING(string, KV) {}
func (Nil) ERR(string, KV)     {}

// Zap adapts a *zap.Logger to Log.
type Zap struct {
	L *zap.Logger
}

// NewZap builds a Zap logger at the given level ("debug", "info", "warn",
// "error"); an unrecognized level falls back to "info".
func NewZap(level string) (*Zap, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Zap{L: l}, nil
}

func fields(kv KV) []zap.Field {
	out := make([]zap.Field, 0, len(kv))
	for k, v := range kv {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (z *Zap) NOTICE(facility string, kv KV) {
	z.L.Info(facility, fields(kv)...)
}

func (z *Zap) WARNING(facility string, kv KV) {
	z.L.Warn(facility, fields(kv)...)
}

func (z *Zap) ERR(facility string, kv KV) {
	z.L.Error(facility, fields(kv)...)
}

// Of returns l if non-nil, or Nil{} otherwise — the same "log() helper"
// pattern as bgp.Pool.log() in the teacher.
func Of(l Log) Log {
	if l == nil {
		return Nil{}
	}
	return l
}
