package platform

import "testing"

type memSink struct {
	buf []byte
}

func (s *memSink) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[off:end], p)
	return len(p), nil
}

func TestFileTransferToken_AcceptUnblocksAwaitDecision(t *testing.T) {
	token := NewFileTransferToken("peer", "photo.jpg", 10)
	sink := &memSink{}

	done := make(chan struct{})
	var gotSink Sink
	var gotCancelled bool
	go func() {
		gotSink, gotCancelled = token.AwaitDecision()
		close(done)
	}()

	token.Accept(sink)
	<-done

	if gotCancelled {
		t.Fatal("AwaitDecision reported cancelled after Accept")
	}
	if gotSink != sink {
		t.Fatal("AwaitDecision returned a different sink than Accept supplied")
	}
}

func TestFileTransferToken_CancelUnblocksAwaitDecision(t *testing.T) {
	token := NewFileTransferToken("peer", "photo.jpg", 10)

	done := make(chan struct{})
	var gotCancelled bool
	go func() {
		_, gotCancelled = token.AwaitDecision()
		close(done)
	}()

	token.Cancel()
	<-done

	if !gotCancelled {
		t.Fatal("AwaitDecision did not report cancelled after Cancel")
	}
}

func TestFileTransferToken_WriteAtTracksReceivedBytesAndProgress(t *testing.T) {
	token := NewFileTransferToken("peer", "photo.jpg", 10)
	sink := &memSink{}
	token.Accept(sink)
	token.AwaitDecision()

	var progress []uint64
	token.OnProgress(func(n uint64) { progress = append(progress, n) })

	if _, err := token.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := token.WriteAt([]byte("world"), 5); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	if got := token.ReceivedBytes(); got != 10 {
		t.Fatalf("ReceivedBytes = %d, want 10", got)
	}
	if len(progress) != 2 || progress[0] != 5 || progress[1] != 10 {
		t.Fatalf("progress = %v, want [5 10]", progress)
	}
	if string(sink.buf) != "helloworld" {
		t.Fatalf("sink contents = %q, want %q", sink.buf, "helloworld")
	}
}
