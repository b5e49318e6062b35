package session

import (
	"testing"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/wire"
)

func newTestRegistry() *Registry {
	return NewRegistry(channel.NewFactoryRegistry(), nil, nil)
}

func noopWrite(frame []byte) error { return nil }

func TestRegistry_GetOrCreateAllocatesFromInitialID(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if sess.LocalID() != initialLocalID {
		t.Fatalf("LocalID = %#x, want %#x", sess.LocalID(), initialLocalID)
	}
	if sess.RemoteID() != 42 {
		t.Fatalf("RemoteID = %d, want 42", sess.RemoteID())
	}

	header2 := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 43}
	sess2, err := reg.GetOrCreate("device-b", header2, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate second: %v", err)
	}
	if sess2.LocalID() != initialLocalID+1 {
		t.Fatalf("second LocalID = %#x, want %#x", sess2.LocalID(), initialLocalID+1)
	}
}

func TestRegistry_GetOrCreateLooksUpExisting(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	lookup := &wire.CommonHeader{SessionIDLocal: sess.LocalID(), SessionIDRemote: 42}
	again, err := reg.GetOrCreate("device-a", lookup, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate lookup: %v", err)
	}
	if again != sess {
		t.Fatalf("expected the same *Session back")
	}
}

func TestRegistry_GetOrCreateRejectsWrongDevice(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	lookup := &wire.CommonHeader{SessionIDLocal: sess.LocalID(), SessionIDRemote: 42}
	if _, err := reg.GetOrCreate("device-b", lookup, noopWrite, nil); err != ErrWrongDevice {
		t.Fatalf("err = %v, want ErrWrongDevice", err)
	}
}

func TestRegistry_GetOrCreateRejectsWrongRemote(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	lookup := &wire.CommonHeader{SessionIDLocal: sess.LocalID(), SessionIDRemote: 99}
	if _, err := reg.GetOrCreate("device-a", lookup, noopWrite, nil); err != ErrWrongRemote {
		t.Fatalf("err = %v, want ErrWrongRemote", err)
	}
}

// TestRegistry_GetOrCreateChecksRemoteBeforeDevice covers spec.md §4.4's
// error-precedence ordering: "Fail with UnknownSession if absent, WrongRemote
// if remote differs, WrongDevice if the device address differs". A lookup
// that mismatches both must report WrongRemote, not WrongDevice.
func TestRegistry_GetOrCreateChecksRemoteBeforeDevice(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	lookup := &wire.CommonHeader{SessionIDLocal: sess.LocalID(), SessionIDRemote: 99}
	if _, err := reg.GetOrCreate("device-b", lookup, noopWrite, nil); err != ErrWrongRemote {
		t.Fatalf("err = %v, want ErrWrongRemote", err)
	}
}

func TestRegistry_GetOrCreateRejectsUnknownLocalID(t *testing.T) {
	reg := newTestRegistry()

	lookup := &wire.CommonHeader{SessionIDLocal: 0xffff, SessionIDRemote: 42}
	if _, err := reg.GetOrCreate("device-a", lookup, noopWrite, nil); err != ErrUnknownSession {
		t.Fatalf("err = %v, want ErrUnknownSession", err)
	}
}

func TestRegistry_DisposeRemovesEntry(t *testing.T) {
	reg := newTestRegistry()

	header := &wire.CommonHeader{SessionIDLocal: 0, SessionIDRemote: 42}
	sess, err := reg.GetOrCreate("device-a", header, noopWrite, nil)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if reg.Count() != 1 {
		t.Fatalf("Count = %d, want 1", reg.Count())
	}

	sess.Dispose(nil)

	if reg.Count() != 0 {
		t.Fatalf("Count after dispose = %d, want 0", reg.Count())
	}
	if _, ok := reg.Get(sess.LocalID()); ok {
		t.Fatalf("disposed session should be removed from the registry")
	}
}
