// Package transport provides the duplex byte-stream contract the Near Share
// core expects from its external transport (spec.md §6: "the core expects a
// duplex byte stream from an external transport"; the reference deployment
// fulfills it with a Bluetooth RFCOMM socket, which is explicitly out of
// scope, §1). Acquiring and accepting RFCOMM sockets lives outside this
// module; what's here is the Conn contract itself and an in-memory Pipe
// implementation for tests and local interop runs.
package transport

import (
	"io"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Conn is the duplex byte stream the core reads frames from and writes
// frames to. A real deployment supplies this with a Bluetooth RFCOMM
// socket; *net.TCPConn and the Pipe endpoints below also satisfy it.
type Conn = io.ReadWriteCloser

// Pipe is a connected, in-memory pair of Conns, used by this module's tests
// to exercise the full
// Connect->Auth->AuthDone->Established handshake and a Near Share transfer
// without a real socket. It wraps pion's test.Bridge, which requires
// explicit pumping to move bytes between the two ends; Pipe runs that pump
// in a background goroutine so callers see an ordinary blocking Conn pair.
type Pipe struct {
	bridge *test.Bridge

	mu     sync.Mutex
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewPipe returns a connected pair of Conns (a feeds b and vice versa) and
// the Pipe that owns them. Call Close when done to stop the delivery pump
// and release both ends.
func NewPipe() (a, b Conn, p *Pipe) {
	p = &Pipe{
		bridge: test.NewBridge(),
		stop:   make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p.bridge.GetConn0(), p.bridge.GetConn1(), p
}

// Close stops the delivery pump and closes both ends of the pipe. Safe to
// call more than once.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}
