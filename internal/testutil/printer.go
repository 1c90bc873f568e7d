package testutil

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

// FakePrinter accepts raw printing connections and records what it receives.
type FakePrinter struct {
	ln   net.Listener
	mu   sync.Mutex
	jobs [][]byte
}

// NewFakePrinter listens on a loopback port.
func NewFakePrinter(t testing.TB) *FakePrinter {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	p := &FakePrinter{ln: ln}
	go p.serve()
	t.Cleanup(func() { ln.Close() })
	return p
}

// Addr returns host:port of the printer.
func (p *FakePrinter) Addr() string {
	return p.ln.Addr().String()
}

func (p *FakePrinter) serve() {
	for {
		conn, err := p.ln.Accept()
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			data, _ := io.ReadAll(conn)
			p.mu.Lock()
			p.jobs = append(p.jobs, data)
			p.mu.Unlock()
		}()
	}
}

// WaitJobs waits until n jobs have been received and returns all of them.
func (p *FakePrinter) WaitJobs(t testing.TB, n int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		p.mu.Lock()
		if len(p.jobs) >= n {
			jobs := append([][]byte(nil), p.jobs...)
			p.mu.Unlock()
			return jobs
		}
		p.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("printer received fewer than %d jobs", n)
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}
