package platform

import "sync"

// Sink is the writable destination a FileTransferToken delivers received
// bytes to. *os.File satisfies this directly.
type Sink interface {
	WriteAt(p []byte, off int64) (int, error)
}

// ProgressFunc is invoked after every write a token accepts, with the new
// cumulative ReceivedBytes.
type ProgressFunc func(receivedBytes uint64)

type decision struct {
	sink      Sink
	cancelled bool
}

// FileTransferToken is the one-shot promise a Near Share application hands
// the platform handler for each incoming file: the handler inspects
// DeviceName, FileName, and BytesToSend, then calls Accept with a sink or
// Cancel (spec.md §4.7, §9 design note "the handler's decision is a
// one-shot promise").
type FileTransferToken struct {
	DeviceName  string
	FileName    string
	BytesToSend uint64

	decided chan decision

	mu         sync.Mutex
	sink       Sink
	received   uint64
	onProgress ProgressFunc
}

// NewFileTransferToken constructs a token awaiting the handler's decision.
func NewFileTransferToken(deviceName, fileName string, bytesToSend uint64) *FileTransferToken {
	return &FileTransferToken{
		DeviceName:  deviceName,
		FileName:    fileName,
		BytesToSend: bytesToSend,
		decided:     make(chan decision, 1),
	}
}

// Accept supplies the sink the handler chose to receive the transfer into.
func (t *FileTransferToken) Accept(sink Sink) {
	select {
	case t.decided <- decision{sink: sink}:
	default:
	}
}

// Cancel refuses the transfer. The application treats this as a terminal
// error and tears down the channel and session (spec.md §5).
func (t *FileTransferToken) Cancel() {
	select {
	case t.decided <- decision{cancelled: true}:
	default:
	}
}

// OnProgress registers a callback invoked every time ReceivedBytes advances.
func (t *FileTransferToken) OnProgress(fn ProgressFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onProgress = fn
}

// AwaitDecision blocks until the handler calls Accept or Cancel, returning
// the chosen sink (nil if cancelled=true).
func (t *FileTransferToken) AwaitDecision() (sink Sink, cancelled bool) {
	d := <-t.decided
	if d.cancelled {
		return nil, true
	}
	t.mu.Lock()
	t.sink = d.sink
	t.mu.Unlock()
	return d.sink, false
}

// WriteAt writes p at off into the accepted sink, under the token's lock so
// concurrent writers and the progress callback agree on ReceivedBytes.
func (t *FileTransferToken) WriteAt(p []byte, off int64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.sink.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	if end := uint64(off) + uint64(n); end > t.received {
		t.received = end
	}
	if t.onProgress != nil {
		t.onProgress(t.received)
	}
	return n, nil
}

// ReceivedBytes returns the cumulative number of bytes written so far.
func (t *FileTransferToken) ReceivedBytes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.received
}
