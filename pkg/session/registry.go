package session

import (
	"sync"

	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// initialLocalID is the first local session id the registry allocates
// (spec.md §4.4 wire constant); ids below it are reserved.
const initialLocalID uint32 = 0x0e

// Registry is the process-wide table mapping a local session id to its
// Session, shared by every transport connection (spec.md §4.4).
type Registry struct {
	mu      sync.Mutex
	byLocal map[uint32]*Session
	nextID  uint32

	channels      *channel.FactoryRegistry
	handler       platform.Handler
	loggerFactory logging.LoggerFactory
}

// NewRegistry returns an empty session registry. channels is the
// process-wide application-factory table every new Session is constructed
// with. handler, if non-nil, receives every session's fatal and
// protocol-level log lines (spec.md §6) in addition to the pion/logging
// output.
func NewRegistry(channels *channel.FactoryRegistry, handler platform.Handler, loggerFactory logging.LoggerFactory) *Registry {
	return &Registry{
		byLocal:       make(map[uint32]*Session),
		nextID:        initialLocalID,
		channels:      channels,
		handler:       handler,
		loggerFactory: loggerFactory,
	}
}

// GetOrCreate resolves the session a frame belongs to: a header whose
// SessionIDLocal field is 0 starts a new session, allocating a fresh local
// id and recording the peer's declared remote id (host flag masked off);
// otherwise the local id must already be registered, with device and
// remote id both matching the existing registration (spec.md §4.4).
func (r *Registry) GetOrCreate(device string, header *wire.CommonHeader, write WriteFunc, localCertificate []byte) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if header.SessionIDLocal == 0 {
		localID := r.nextID
		r.nextID++

		sess, err := New(Config{
			LocalID:          localID,
			RemoteID:         header.RemoteWithoutHostFlag(),
			Device:           device,
			LocalCertificate: localCertificate,
			Write:            write,
			Channels:         r.channels,
			OnDispose:        r.remove,
			Handler:          r.handler,
			LoggerFactory:    r.loggerFactory,
		})
		if err != nil {
			return nil, err
		}
		r.byLocal[localID] = sess
		return sess, nil
	}

	sess, ok := r.byLocal[header.SessionIDLocal]
	if !ok {
		return nil, ErrUnknownSession
	}
	if header.RemoteWithoutHostFlag() != sess.RemoteID() {
		return nil, ErrWrongRemote
	}
	if sess.Device() != device {
		return nil, ErrWrongDevice
	}
	if sess.IsDisposed() {
		return nil, ErrDisposed
	}
	return sess, nil
}

// Get returns the session registered under localID, if any.
func (r *Registry) Get(localID uint32) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byLocal[localID]
	return sess, ok
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byLocal)
}

// remove is the Session.OnDispose callback: it drops localID's entry.
func (r *Registry) remove(localID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byLocal, localID)
}
