package message

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ribwerks/routed/addr"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	src, _ := addr.ParseAddr("192.168.0.1")
	dst, _ := addr.ParseAddr("192.168.0.2")
	body := UpdateBody{Network: "192.168.0.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []uint32{1, 2}, Origin: "IGP"}
	env := NewUpdate(src, dst, body)

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Src != src || decoded.Dst != dst || decoded.Type != Update {
		t.Fatalf("decoded envelope = %+v, want src=%v dst=%v type=%v", decoded, src, dst, Update)
	}

	got, err := DecodeUpdate(decoded.Msg)
	if err != nil {
		t.Fatalf("DecodeUpdate: %v", err)
	}
	if !reflect.DeepEqual(got, body) {
		t.Errorf("DecodeUpdate() = %+v, want %+v", got, body)
	}
}

func TestEnvelopeRejectsUnknownType(t *testing.T) {
	raw := []byte(`{"src":"1.2.3.4","dst":"1.2.3.5","type":"bogus","msg":{}}`)
	var env Envelope
	err := json.Unmarshal(raw, &env)
	if err == nil {
		t.Fatal("expected error decoding unknown type tag")
	}
	if _, ok := err.(*ErrUnknownType); !ok {
		t.Errorf("err = %T, want *ErrUnknownType", err)
	}
}

func TestEnvelopeRejectsMalformedAddress(t *testing.T) {
	raw := []byte(`{"src":"not-an-address","dst":"1.2.3.5","type":"data","msg":{}}`)
	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		t.Fatal("expected error decoding malformed src address")
	}
}

func TestDecodeRevoke(t *testing.T) {
	entries := []RevokeEntry{{Network: "192.168.0.0", Netmask: "255.255.255.0"}}
	src, _ := addr.ParseAddr("192.168.0.1")
	dst, _ := addr.ParseAddr("192.168.0.2")
	env := NewRevoke(src, dst, entries)

	got, err := DecodeRevoke(env.Msg)
	if err != nil {
		t.Fatalf("DecodeRevoke: %v", err)
	}
	if len(got) != 1 || got[0] != entries[0] {
		t.Errorf("DecodeRevoke() = %+v, want %+v", got, entries)
	}
}

func TestNewNoRouteAndTable(t *testing.T) {
	src, _ := addr.ParseAddr("192.168.0.1")
	dst, _ := addr.ParseAddr("192.168.0.2")

	noRoute := NewNoRoute(src, dst)
	if noRoute.Type != NoRoute {
		t.Errorf("NewNoRoute() type = %v, want %v", noRoute.Type, NoRoute)
	}

	table := NewTable(src, dst, []TableEntry{{Network: "192.168.0.0", Netmask: "255.255.255.0", Peer: "192.168.0.2"}})
	if table.Type != Table {
		t.Errorf("NewTable() type = %v, want %v", table.Type, Table)
	}
}
