package session

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/cryptor"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/reassembly"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// WriteFunc sends one complete, already-framed buffer to the transport
// (spec.md §6: a 16-bit-length-prefixed CommonHeader + body).
type WriteFunc func(frame []byte) error

// Config constructs a Session for one (localID, remoteID, device) triple.
type Config struct {
	LocalID  uint32
	RemoteID uint32
	Device   string

	// LocalCertificate is this receiver's device certificate, sent back
	// in DeviceAuthResponse/UserDeviceAuthResponse.
	LocalCertificate []byte

	// Write sends a complete frame to the peer.
	Write WriteFunc

	// Channels is the process-wide application-factory registry; unknown
	// app ids fail channel open (spec.md §6).
	Channels *channel.FactoryRegistry

	// OnDispose is invoked exactly once, with LocalID, when the session
	// is disposed, so the owning Registry can remove its entry.
	OnDispose func(localID uint32)

	// Handler receives this session's fatal and protocol-level log lines
	// alongside the pion/logging output (spec.md §6: Log is part of the
	// platform handler's required capability set). May be nil.
	Handler platform.Handler

	LoggerFactory logging.LoggerFactory
}

// Session is one authenticated, encrypted context with a remote peer,
// carrying it through Connect→Auth→AuthDone→Established (spec.md §4.3).
type Session struct {
	localID  uint32
	remoteID uint32
	device   string

	localCertificate []byte
	onDispose        func(uint32)
	write            WriteFunc
	log              logging.LeveledLogger
	handler          platform.Handler

	channelFactories *channel.FactoryRegistry
	channels         *channel.Registry
	reassembly       *reassembly.Table

	mu        sync.Mutex
	state     State
	localKeys *cryptor.KeyPair
	localNonce,
	remoteNonce,
	remotePublicKey,
	remoteCertificate []byte
	crypt          *cryptor.Cryptor
	encrypted      bool
	sawDeviceAuth  bool
	sawUserAuth    bool
	sendSeq        uint32
	disposeReasons []error
}

// New constructs a fresh Session in StateAwaitingConnectRequest.
func New(cfg Config) (*Session, error) {
	localKeys, err := cryptor.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("session: generate local keypair: %w", err)
	}
	nonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("session: generate nonce: %w", err)
	}

	loggerFactory := cfg.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	return &Session{
		localID:          cfg.LocalID,
		remoteID:         cfg.RemoteID,
		device:           cfg.Device,
		localCertificate: cfg.LocalCertificate,
		onDispose:        cfg.OnDispose,
		write:            cfg.Write,
		log:              loggerFactory.NewLogger("session"),
		handler:          cfg.Handler,
		channelFactories: cfg.Channels,
		channels:         channel.NewRegistry(),
		reassembly:       reassembly.NewTable(),
		state:            StateAwaitingConnectRequest,
		localKeys:        localKeys,
		localNonce:       nonce,
	}, nil
}

// LocalID returns the session's local id.
func (s *Session) LocalID() uint32 { return s.localID }

// RemoteID returns the session's remote id.
func (s *Session) RemoteID() uint32 { return s.remoteID }

// Device returns the session's device address.
func (s *Session) Device() string { return s.device }

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsDisposed reports whether the session has been disposed.
func (s *Session) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateDisposed
}

// HandleMessage parses one complete inbound frame (header + body, still
// carrying its length-prefix-stripped raw bytes) and drives the state
// machine. Any error is fatal: the caller must treat the session as
// disposed after HandleMessage returns a non-nil error (spec.md §7).
func (s *Session) HandleMessage(frame []byte) error {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	encrypted := s.encrypted
	var crypt *cryptor.Cryptor
	if encrypted {
		crypt = s.crypt
	}
	s.mu.Unlock()

	var header *wire.CommonHeader
	var body []byte
	var err error
	if encrypted {
		header, body, err = crypt.Read(frame)
	} else {
		header, body, err = wire.DecodeFrame(frame)
	}
	if err != nil {
		s.Dispose(err)
		return err
	}

	if err := s.checkSessionID(header); err != nil {
		s.Dispose(err)
		return err
	}

	if header.Type == wire.MessageTypeReliabilityResponse || header.Type == wire.MessageTypeAck {
		return nil
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch header.Type {
	case wire.MessageTypeConnect:
		err = s.handleConnect(state, header, body)
	case wire.MessageTypeControl:
		err = s.handleControl(state, header, body)
	case wire.MessageTypeSession:
		err = s.handleSessionMessage(state, header, body)
	default:
		s.logEvent(platform.LevelWarn, "ignoring unknown message type %d in state %s", header.Type, state)
		return nil
	}

	if err != nil {
		s.Dispose(err)
		return err
	}
	return nil
}

// logEvent reports a session log line through both the pion/logging sink
// and the platform handler (spec.md §6: Log is part of the Handler
// capability set every application-visible log line must reach).
func (s *Session) logEvent(level platform.Level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	switch level {
	case platform.LevelError:
		s.log.Error(message)
	case platform.LevelWarn:
		s.log.Warn(message)
	case platform.LevelDebug:
		s.log.Debug(message)
	case platform.LevelTrace:
		s.log.Trace(message)
	default:
		s.log.Info(message)
	}
	if s.handler != nil {
		s.handler.Log(level, message)
	}
}

// checkSessionID validates an inbound header's SessionId against this
// session's registration, once a local id has been assigned (i.e. for
// every message after the first ConnectRequest).
func (s *Session) checkSessionID(header *wire.CommonHeader) error {
	if s.State() == StateAwaitingConnectRequest {
		return nil
	}
	if header.SessionIDLocal != s.localID || header.RemoteWithoutHostFlag() != s.remoteID {
		return ErrSessionIDMismatch
	}
	return nil
}

// Dispose terminates the session: it closes every channel, removes the
// session from its registry, and is safe to call from any goroutine,
// any number of times (spec.md §5).
func (s *Session) Dispose(reason error) {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return
	}
	s.state = StateDisposed
	if reason != nil {
		s.disposeReasons = append(s.disposeReasons, reason)
		s.logEvent(platform.LevelError, "session %d disposed: %v", s.localID, reason)
	} else {
		s.logEvent(platform.LevelInfo, "session %d disposed", s.localID)
	}
	s.mu.Unlock()

	s.channels.CloseAll()
	if s.onDispose != nil {
		s.onDispose(s.localID)
	}
}

// outgoingHeader builds a CommonHeader stamped with this session's id pair
// (see DESIGN.md for the SessionId.Local/Remote convention adopted here:
// Local is always the host's — this receiver's — own id).
func (s *Session) outgoingHeader(msgType wire.MessageType, requestID uint32) *wire.CommonHeader {
	h := &wire.CommonHeader{Type: msgType, RequestID: requestID}
	s.stampHeader(h)
	return h
}

// stampHeader fills in the session-scoped fields of a header an application
// has otherwise prepared (Type, RequestID, ChannelID, AdditionalHeaders):
// the id pair, the host flag, and the next outbound sequence number.
func (s *Session) stampHeader(h *wire.CommonHeader) {
	h.SessionIDLocal = s.localID
	h.SessionIDRemote = s.remoteID
	h.SetSessionHost(true)
	s.mu.Lock()
	h.SequenceNumber = s.sendSeq
	s.sendSeq++
	s.mu.Unlock()
}

// send frames and writes header+body, encrypting it if the session has
// moved past ConnectResponse (spec.md §4.3: "All post-ConnectResponse
// messages are encrypted").
func (s *Session) send(header *wire.CommonHeader, body []byte) error {
	s.mu.Lock()
	encrypted := s.encrypted
	crypt := s.crypt
	s.mu.Unlock()

	var frame []byte
	var err error
	if encrypted {
		frame, err = crypt.EncryptMessage(header, body)
	} else {
		frame = wire.EncodeFrame(header, body)
	}
	if err != nil {
		return err
	}
	return s.write(frame)
}

func randomNonce() ([]byte, error) {
	b := make([]byte, NonceSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
