package wire

import (
	"bytes"
	"testing"
)

func sampleHeader() *CommonHeader {
	h := &CommonHeader{
		Type:            MessageTypeSession,
		Flags:           FlagShouldAck,
		SessionIDLocal:  0x0e,
		SessionIDRemote: 0x1234,
		SequenceNumber:  7,
		RequestID:       99,
		ChannelID:       1,
		FragmentIndex:   0,
		FragmentCount:   1,
	}
	h.SetReplyTo(42)
	return h
}

func TestHeaderRoundTrip(t *testing.T) {
	h := sampleHeader()
	body := []byte("hello world")
	frame := EncodeFrame(h, body)

	got, gotBody, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Type != h.Type || got.Flags != h.Flags || got.SessionID() != h.SessionID() {
		t.Fatalf("header mismatch: got %+v want %+v", got, h)
	}
	if !bytes.Equal(gotBody, body) {
		t.Fatalf("body mismatch: got %q want %q", gotBody, body)
	}
	replyTo, ok := got.ReplyTo()
	if !ok || replyTo != 42 {
		t.Fatalf("ReplyTo() = %d, %v; want 42, true", replyTo, ok)
	}
}

func TestHeaderPreservesUnknownAdditionalHeaderTags(t *testing.T) {
	h := sampleHeader()
	h.AdditionalHeaders = append(h.AdditionalHeaders, AdditionalHeader{
		Type:  AdditionalHeaderType(200),
		Bytes: []byte{1, 2, 3},
	})
	frame := EncodeFrame(h, nil)

	got, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	found := false
	for _, ah := range got.AdditionalHeaders {
		if ah.Type == AdditionalHeaderType(200) {
			found = true
			if !bytes.Equal(ah.Bytes, []byte{1, 2, 3}) {
				t.Fatalf("unknown header bytes = %v", ah.Bytes)
			}
		}
	}
	if !found {
		t.Fatal("unknown additional header tag was not preserved")
	}
}

func TestSessionIDEncoding(t *testing.T) {
	h := &CommonHeader{SessionIDLocal: 5, SessionIDRemote: 9}
	if h.SessionID() != (uint64(5)<<32 | 9) {
		t.Fatalf("SessionID() = %#x", h.SessionID())
	}
	h.SetSessionHost(true)
	if !h.IsSessionHost() {
		t.Fatal("IsSessionHost() = false after SetSessionHost(true)")
	}
	if h.RemoteWithoutHostFlag() != 9 {
		t.Fatalf("RemoteWithoutHostFlag() = %d, want 9", h.RemoteWithoutHostFlag())
	}
}

func TestFragmentIndexOutOfRangeRejected(t *testing.T) {
	h := sampleHeader()
	h.FragmentIndex = 5
	h.FragmentCount = 5
	frame := EncodeFrame(h, nil)
	if _, _, err := DecodeFrame(frame); err != ErrFragmentIndex {
		t.Fatalf("DecodeFrame() error = %v, want ErrFragmentIndex", err)
	}
}

func TestPayloadSizeMismatchRejected(t *testing.T) {
	h := sampleHeader()
	frame := EncodeFrame(h, []byte("abc"))
	// Corrupt the declared payload size in place (offset 36: sum of the
	// fixed-width fields preceding PayloadSize).
	frame[36] = 0xFF
	if _, _, err := DecodeFrame(frame); err != ErrPayloadSizeMismatch {
		t.Fatalf("DecodeFrame() error = %v, want ErrPayloadSizeMismatch", err)
	}
}

func TestStreamReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	h := sampleHeader()
	frame := EncodeFrame(h, []byte("partition"))
	if err := sw.WriteFrame(frame); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	sr := NewStreamReader(&buf)
	got, err := sr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("ReadFrame mismatch")
	}
}
