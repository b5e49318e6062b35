package channel

import (
	"testing"

	"github.com/cdpnear/nearshare/pkg/wire"
)

type stubApp struct {
	handled int
}

func (s *stubApp) HandleMessage(ch *Channel, header *wire.CommonHeader, body []byte) error {
	s.handled++
	return nil
}

func TestRegistry_OpenAllocatesFromOne(t *testing.T) {
	factories := NewFactoryRegistry()
	factories.Register("NearSharePlatform", func(appName string) (Application, error) {
		return &stubApp{}, nil
	})

	reg := NewRegistry()
	ch1, err := reg.Open(factories, "NearSharePlatform", "peer", func(*wire.CommonHeader, []byte) error { return nil }, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ch1.ID != 1 {
		t.Errorf("first channel id = %d, want 1", ch1.ID)
	}

	ch2, err := reg.Open(factories, "NearSharePlatform", "peer", func(*wire.CommonHeader, []byte) error { return nil }, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ch2.ID != 2 {
		t.Errorf("second channel id = %d, want 2", ch2.ID)
	}
}

func TestRegistry_OpenUnknownAppFails(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Open(NewFactoryRegistry(), "unknown", "peer", nil, nil)
	if err != ErrUnknownApp {
		t.Errorf("Open with unknown app = %v, want ErrUnknownApp", err)
	}
}

func TestRegistry_GetAndClose(t *testing.T) {
	factories := NewFactoryRegistry()
	factories.Register("app", func(appName string) (Application, error) { return &stubApp{}, nil })
	reg := NewRegistry()

	ch, _ := reg.Open(factories, "app", "peer", func(*wire.CommonHeader, []byte) error { return nil }, nil)
	if _, ok := reg.Get(ch.ID); !ok {
		t.Fatal("Get did not find just-opened channel")
	}

	reg.Close(ch.ID)
	if _, ok := reg.Get(ch.ID); ok {
		t.Fatal("Get found channel after Close")
	}
}

func TestChannel_WriteStampsChannelID(t *testing.T) {
	var gotHeader *wire.CommonHeader
	ch := New(7, &stubApp{}, func(h *wire.CommonHeader, body []byte) error {
		gotHeader = h
		return nil
	}, nil)

	if err := ch.Write(&wire.CommonHeader{}, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if gotHeader.ChannelID != 7 {
		t.Errorf("ChannelID = %d, want 7", gotHeader.ChannelID)
	}
}

func TestChannel_CloseInvokesCallback(t *testing.T) {
	closed := false
	ch := New(1, &stubApp{}, func(*wire.CommonHeader, []byte) error { return nil }, func() error {
		closed = true
		return nil
	})
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closed {
		t.Fatal("close callback was not invoked")
	}
}

func TestChannel_CloseWithoutCallbackIsNoop(t *testing.T) {
	ch := New(1, &stubApp{}, func(*wire.CommonHeader, []byte) error { return nil }, nil)
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
