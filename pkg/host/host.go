// Package host is the process-wide entry point tying the transport surface
// (pkg/transport), the session registry (pkg/session), and the Near Share
// application (pkg/nearshare) together. It implements the single-reader
// loop spec.md §5 describes: "one logical inbound stream per transport
// connection is processed sequentially by a single reader", with Connect
// and Control messages handled inline and Session messages handed off to a
// background goroutine by the session itself (pkg/session/handlers.go).
//
// A Host is constructed once per process and then fed one connection per
// call to Serve; every connection shares the same session registry and
// application-factory table, matching the "Global session registry" design
// note (spec.md §9: "model as a single explicitly constructed host value
// threaded through the transport acceptor, not as ambient process state, so
// tests can instantiate parallel receivers").
package host

import (
	"sync"

	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/nearshare"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/session"
	"github.com/cdpnear/nearshare/pkg/transport"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// Config constructs a Host.
type Config struct {
	// LocalCertificate is this receiver's device certificate, presented
	// during device/user device authentication (spec.md §4.3).
	LocalCertificate []byte

	// Handler receives Near Share's user-visible events: log lines,
	// completed URI receptions, and incoming file offers (spec.md §6).
	Handler platform.Handler

	LoggerFactory logging.LoggerFactory
}

// Host owns the process-wide session registry and application-factory
// table, and drives one reader loop per transport connection handed to
// Serve.
type Host struct {
	cert      []byte
	sessions  *session.Registry
	factories *channel.FactoryRegistry
	log       logging.LeveledLogger
}

// New constructs a Host with the Near Share application already registered
// under its well-known app id (spec.md §6).
func New(cfg Config) *Host {
	loggerFactory := cfg.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	factories := channel.NewFactoryRegistry()
	nearshare.Register(factories, cfg.Handler, loggerFactory)

	return &Host{
		cert:      cfg.LocalCertificate,
		sessions:  session.NewRegistry(factories, cfg.Handler, loggerFactory),
		factories: factories,
		log:       loggerFactory.NewLogger("host"),
	}
}

// Sessions exposes the process-wide session registry, for example so tests
// can report how many peers are connected.
func (h *Host) Sessions() *session.Registry { return h.sessions }

// Serve runs the single-reader loop for one transport connection from the
// given device address (the peer's Bluetooth address in the reference
// deployment, used to scope session lookups per spec.md §4.4). It blocks,
// reading one length-prefixed frame at a time, and returns the first error
// it meets: a read error from conn, a malformed frame header, a failed
// session lookup, or any error from a session's HandleMessage (spec.md §7:
// "every error encountered on the reader thread is fatal to the session").
// Serve itself never dials out or closes conn; the
// caller owns conn's lifetime.
func (h *Host) Serve(device string, conn transport.Conn) error {
	reader := wire.NewStreamReader(conn)
	writer := wire.NewStreamWriter(conn)
	var writeMu sync.Mutex

	write := func(frame []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return writer.WriteFrame(frame)
	}

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			return err
		}

		header, err := wire.DecodeHeader(wire.NewReader(frame))
		if err != nil {
			h.log.Errorf("%s: malformed frame header: %v", device, err)
			return err
		}

		sess, err := h.sessions.GetOrCreate(device, header, write, h.cert)
		if err != nil {
			h.log.Errorf("%s: session lookup failed: %v", device, err)
			return err
		}

		if err := sess.HandleMessage(frame); err != nil {
			h.log.Errorf("%s: session %d fatal: %v", device, sess.LocalID(), err)
			return err
		}
	}
}
