package rib

import (
	"reflect"
	"testing"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/message"
)

func entry(t *testing.T, network, mask string, nextHop string, localPref uint32) Entry {
	t.Helper()
	n, err := addr.ParseAddr(network)
	if err != nil {
		t.Fatalf("ParseAddr(%q): %v", network, err)
	}
	m, err := addr.ParseMask(mask)
	if err != nil {
		t.Fatalf("ParseMask(%q): %v", mask, err)
	}
	h, err := addr.ParseAddr(nextHop)
	if err != nil {
		t.Fatalf("ParseAddr(%q): %v", nextHop, err)
	}
	return Entry{
		Prefix:     addr.Prefix{Network: n, Mask: m},
		NextHop:    h,
		Attributes: Attributes{LocalPref: localPref, Origin: IGP},
	}
}

func TestAppendSnapshotOrder(t *testing.T) {
	r := New()
	e1 := entry(t, "192.168.0.0", "255.255.255.0", "192.168.0.2", 100)
	e2 := entry(t, "172.16.0.0", "255.255.0.0", "172.16.0.2", 100)
	r.Append(e1)
	r.Append(e2)

	got := r.Snapshot()
	if len(got) != 2 || !reflect.DeepEqual(got[0], e1) || !reflect.DeepEqual(got[1], e2) {
		t.Fatalf("Snapshot() = %+v, want insertion order [%+v %+v]", got, e1, e2)
	}
}

func TestWithdrawExactMatch(t *testing.T) {
	r := New()
	e1 := entry(t, "192.168.0.0", "255.255.255.0", "192.168.0.2", 100)
	e2 := entry(t, "192.168.0.0", "255.255.255.0", "172.16.0.2", 100)
	r.Append(e1)
	r.Append(e2)

	removed := r.Withdraw(e1.Prefix, e1.NextHop)
	if removed != 1 {
		t.Fatalf("Withdraw removed %d entries, want 1", removed)
	}

	got := r.Snapshot()
	if len(got) != 1 || !reflect.DeepEqual(got[0], e2) {
		t.Fatalf("Snapshot() after withdraw = %+v, want only %+v left", got, e2)
	}
}

func TestWithdrawNoMatchLeavesRIBUntouched(t *testing.T) {
	r := New()
	e1 := entry(t, "192.168.0.0", "255.255.255.0", "192.168.0.2", 100)
	r.Append(e1)

	other, _ := addr.ParseAddr("10.0.0.2")
	removed := r.Withdraw(e1.Prefix, other)
	if removed != 0 {
		t.Fatalf("Withdraw removed %d entries, want 0 (next hop does not match)", removed)
	}
	if got := r.Snapshot(); len(got) != 1 {
		t.Fatalf("Snapshot() = %+v, want untouched single entry", got)
	}
}

func TestAppendAnnouncementArchive(t *testing.T) {
	r := New()
	src, _ := addr.ParseAddr("192.168.0.2")
	dst, _ := addr.ParseAddr("192.168.0.1")
	env := message.NewUpdate(src, dst, message.UpdateBody{Network: "192.168.0.0", Netmask: "255.255.255.0"})

	r.AppendAnnouncement(env)
	r.AppendAnnouncement(env)

	if got := r.Archive(); len(got) != 2 {
		t.Fatalf("Archive() has %d entries, want 2", len(got))
	}
}

func TestAttributeEqual(t *testing.T) {
	a := entry(t, "192.168.0.0", "255.255.255.0", "192.168.0.2", 100)
	b := entry(t, "172.16.0.0", "255.255.255.0", "192.168.0.2", 100)
	if !AttributeEqual(a, b) {
		t.Errorf("expected entries differing only by prefix network to be attribute-equal")
	}

	c := b
	c.Attributes.LocalPref = 200
	if AttributeEqual(a, c) {
		t.Errorf("expected entries with different localpref to not be attribute-equal")
	}
}

func TestParseOrigin(t *testing.T) {
	cases := map[string]Origin{"IGP": IGP, "EGP": EGP, "anything-else": UNK}
	for s, want := range cases {
		if got := ParseOrigin(s); got != want {
			t.Errorf("ParseOrigin(%q) = %v, want %v", s, got, want)
		}
	}
}
