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

// Command bgprouter is the process bootstrap (spec.md §6): it parses the
// AS number and the ordered list of <neighbor-address>-<relationship>
// startup tokens, dials one Unix-domain transport.Channel per neighbor, and
// runs the event loop until a channel reports transport.ErrClosed. Flag
// parsing and usage text follow the teacher's cmd/bgp.go shape.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	routed "github.com/ribwerks/routed"
	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/logging"
	"github.com/ribwerks/routed/neighbor"
	"github.com/ribwerks/routed/transport"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <as-number> <neighbor-address>-<relationship> ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "relationship is one of: cust, peer, prov\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	socketDir := pflag.String("socket-dir", ".", "directory containing one Unix-domain socket per neighbor, named <neighbor-address>")
	pflag.Parse()

	log, err := logging.NewZap(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bgprouter: building logger:", err)
		os.Exit(1)
	}

	localASN, neighbors, err := parseStartup(pflag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "bgprouter:", err)
		pflag.Usage()
		os.Exit(1)
	}

	channels := make(map[addr.Addr]transport.Channel, len(neighbors))
	for handle := range neighbors {
		path := *socketDir + "/" + handle.String()
		ch, err := transport.DialUnix(handle, path)
		if err != nil {
			log.ERR("bgprouter", logging.KV{"event": "dial-failed", "neighbor": handle.String(), "socket": path, "error": err.Error()})
			os.Exit(1)
		}
		channels[handle] = ch
		defer ch.Close()
	}

	r := routed.New(neighbors, localASN, channels, log)
	if err := r.Run(); err != nil {
		log.ERR("bgprouter", logging.KV{"event": "run-failed", "error": err.Error()})
		os.Exit(1)
	}
}

// parseStartup reads the AS number and the <neighbor-address>-<relationship>
// tokens per spec.md §6.
func parseStartup(args []string) (uint32, neighbor.Table, error) {
	if len(args) < 1 {
		return 0, nil, fmt.Errorf("missing as-number")
	}

	asnumber, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed as-number %q: %w", args[0], err)
	}

	neighbors := make(neighbor.Table, len(args)-1)
	for _, tok := range args[1:] {
		idx := strings.LastIndexByte(tok, '-')
		if idx < 0 {
			return 0, nil, fmt.Errorf("malformed neighbor token %q", tok)
		}
		addrPart, relPart := tok[:idx], tok[idx+1:]

		handle, err := addr.ParseAddr(addrPart)
		if err != nil {
			return 0, nil, fmt.Errorf("malformed neighbor token %q: %w", tok, err)
		}
		rel, err := neighbor.ParseRelationship(relPart)
		if err != nil {
			return 0, nil, fmt.Errorf("malformed neighbor token %q: %w", tok, err)
		}

		neighbors[handle] = neighbor.Neighbor{Handle: handle, Relationship: rel}
	}

	return uint32(asnumber), neighbors, nil
}
