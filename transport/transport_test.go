package transport

import (
	"errors"
	"io"
	"testing"

	"github.com/ribwerks/routed/addr"
	"github.com/ribwerks/routed/message"
)

// pipeConn pairs the two ends of an io.Pipe into a single io.ReadWriteCloser,
// the shape jsonChannel wraps.
type pipeConn struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipeConn) Close() error {
	var err error
	for _, c := range p.closers {
		if e := c.Close(); e != nil {
			err = e
		}
	}
	return err
}

// newChannelPair returns two in-memory Channels, each writing into the
// other's read side, for round-trip tests without a real socket.
func newChannelPair(neighborA, neighborB addr.Addr) (Channel, Channel) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	connA := &pipeConn{Reader: br, Writer: aw, closers: []io.Closer{aw, br}}
	connB := &pipeConn{Reader: ar, Writer: bw, closers: []io.Closer{bw, ar}}

	return NewJSONChannel(neighborA, connA), NewJSONChannel(neighborB, connB)
}

func TestJSONChannelRoundTrip(t *testing.T) {
	a, _ := addr.ParseAddr("192.168.0.1")
	b, _ := addr.ParseAddr("192.168.0.2")
	chanA, chanB := newChannelPair(a, b)
	defer chanA.Close()
	defer chanB.Close()

	sent := message.NewUpdate(b, a, message.UpdateBody{Network: "10.0.0.0", Netmask: "255.0.0.0"})

	errCh := make(chan error, 1)
	go func() { errCh <- chanA.Write(sent) }()

	got, err := chanB.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if writeErr := <-errCh; writeErr != nil {
		t.Fatalf("Write: %v", writeErr)
	}

	if got.Src != sent.Src || got.Dst != sent.Dst || got.Type != sent.Type {
		t.Errorf("Read() = %+v, want %+v", got, sent)
	}
}

func TestJSONChannelReadReturnsErrClosedOnEOF(t *testing.T) {
	a, _ := addr.ParseAddr("192.168.0.1")
	b, _ := addr.ParseAddr("192.168.0.2")
	chanA, chanB := newChannelPair(a, b)
	defer chanA.Close()

	chanB.Close()

	_, err := chanA.Read()
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Read() after peer close = %v, want ErrClosed", err)
	}
}

func TestJSONChannelNeighbor(t *testing.T) {
	a, _ := addr.ParseAddr("192.168.0.1")
	b, _ := addr.ParseAddr("192.168.0.2")
	chanA, chanB := newChannelPair(a, b)
	defer chanA.Close()
	defer chanB.Close()

	if chanA.Neighbor() != a {
		t.Errorf("Neighbor() = %v, want %v", chanA.Neighbor(), a)
	}
	if chanB.Neighbor() != b {
		t.Errorf("Neighbor() = %v, want %v", chanB.Neighbor(), b)
	}
}
