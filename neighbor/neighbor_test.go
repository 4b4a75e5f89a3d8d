package neighbor

import (
	"testing"

	"github.com/ribwerks/routed/addr"
)

func TestParseRelationship(t *testing.T) {
	cases := map[string]Relationship{"cust": Customer, "peer": Peer, "prov": Provider}
	for s, want := range cases {
		got, err := ParseRelationship(s)
		if err != nil {
			t.Fatalf("ParseRelationship(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseRelationship(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseRelationship("bogus"); err == nil {
		t.Errorf("expected error for unknown relationship token")
	}
}

func TestRouterSide(t *testing.T) {
	n, _ := addr.ParseAddr("192.168.0.2")
	want, _ := addr.ParseAddr("192.168.0.1")
	if got := RouterSide(n); got != want {
		t.Errorf("RouterSide(%v) = %v, want %v", n, got, want)
	}
}

func TestTableRelationship(t *testing.T) {
	n, _ := addr.ParseAddr("192.168.0.2")
	tbl := Table{n: {Handle: n, Relationship: Customer}}

	rel, ok := tbl.Relationship(n)
	if !ok || rel != Customer {
		t.Fatalf("Relationship(%v) = (%v, %v), want (Customer, true)", n, rel, ok)
	}

	unknown, _ := addr.ParseAddr("10.0.0.1")
	if _, ok := tbl.Relationship(unknown); ok {
		t.Errorf("expected unknown neighbor to report ok=false")
	}
}
