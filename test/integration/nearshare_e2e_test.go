package integration

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/cdpnear/nearshare/pkg/host"
	"github.com/cdpnear/nearshare/pkg/nearshare"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/transport"
	"github.com/cdpnear/nearshare/pkg/valueset"
)

// Near Share ValueSet keys, redeclared here rather than imported: the peer
// is meant to stand in for an independent implementation of the same wire
// contract, not a caller into pkg/nearshare's internals (spec.md §4.7, §6).
const (
	keyControlMessage = "ControlMessage"
	keyDataKind       = "DataKind"
	keyFileNames      = "FileNames"
	keyBytesToSend    = "BytesToSend"
	keyUri            = "Uri"
	keyBlobPosition   = "BlobPosition"
	keyBlobSize       = "BlobSize"
	keyDataBlob       = "DataBlob"
	keyContentId      = "ContentId"

	controlStartRequest      = "StartRequest"
	controlStartResponse     = "StartResponse"
	controlFetchDataRequest  = "FetchDataRequest"
	controlFetchDataResponse = "FetchDataResponse"

	dataKindUri  = "Uri"
	dataKindFile = "File"
)

// memSink is an in-memory platform.Sink recording every byte a file
// transfer writes, for asserting against the source data in tests.
type memSink struct {
	mu   sync.Mutex
	data []byte
}

func newMemSink(size int) *memSink {
	return &memSink{data: make([]byte, size)}
}

func (s *memSink) WriteAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(s.data[off:], p)
	return n, nil
}

func (s *memSink) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

func newTestHost(t *testing.T, handler platform.Handler) (*host.Host, transport.Conn, *testPeer) {
	t.Helper()
	hostConn, peerConn, pipe := transport.NewPipe()
	t.Cleanup(func() { pipe.Close() })

	h := host.New(host.Config{LocalCertificate: []byte("receiver-cert"), Handler: handler})

	serveErr := make(chan error, 1)
	go func() { serveErr <- h.Serve("peer-device", hostConn) }()
	t.Cleanup(func() {
		peerConn.Close()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
		}
	})

	peer := newTestPeer(t, peerConn, 0, "peer-cert")
	peer.handshake(1)
	return h, peerConn, peer
}

func waitForSessionCount(t *testing.T, h *host.Host, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Sessions().Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Sessions().Count() never reached %d, still %d", want, h.Sessions().Count())
}

// TestUriTransferScenario drives spec.md §8 scenario 4: a single URI
// share, ending in StartResponse and session teardown.
func TestUriTransferScenario(t *testing.T) {
	handler := platform.NewMock()
	h, _, peer := newTestHost(t, handler)

	channelID := peer.openChannel(nearshare.AppID, "peer-device")

	vs := valueset.New()
	vs.SetString(keyControlMessage, controlStartRequest)
	vs.SetString(keyDataKind, dataKindUri)
	vs.SetString(keyUri, "https://example.com/shared-page")
	peer.sendAppMessage(channelID, vs)

	resp := peer.readAppMessage(2 * time.Second)
	ctrl, err := resp.GetString(keyControlMessage)
	if err != nil || ctrl != controlStartResponse {
		t.Fatalf("expected StartResponse, got %q err=%v", ctrl, err)
	}

	waitForSessionCount(t, h, 0)

	if len(handler.ReceivedURIs) != 1 || handler.ReceivedURIs[0].URI != "https://example.com/shared-page" {
		t.Fatalf("unexpected ReceivedURIs: %+v", handler.ReceivedURIs)
	}
}

// TestFileTransferScenario drives spec.md §8 scenario 5: a 250000-byte
// file delivered as three PartitionSize-sized fetches, the final one
// truncated to the remaining 45200 bytes.
func TestFileTransferScenario(t *testing.T) {
	const bytesToSend = 250000
	source := make([]byte, bytesToSend)
	for i := range source {
		source[i] = byte(i)
	}
	sink := newMemSink(bytesToSend)

	handler := platform.NewMock()
	handler.OnFileTransferFunc = func(token *platform.FileTransferToken) {
		token.Accept(sink)
	}
	h, _, peer := newTestHost(t, handler)

	channelID := peer.openChannel(nearshare.AppID, "peer-device")

	start := valueset.New()
	start.SetString(keyControlMessage, controlStartRequest)
	start.SetString(keyDataKind, dataKindFile)
	start.SetStringList(keyFileNames, []string{"picture.bin"})
	start.SetUInt64(keyBytesToSend, bytesToSend)
	peer.sendAppMessage(channelID, start)

	wantPositions := []uint64{0, nearshare.PartitionSize, 2 * nearshare.PartitionSize}
	for _, wantPos := range wantPositions {
		req := peer.readAppMessage(2 * time.Second)
		ctrl, err := req.GetString(keyControlMessage)
		if err != nil || ctrl != controlFetchDataRequest {
			t.Fatalf("expected FetchDataRequest, got %q err=%v", ctrl, err)
		}
		pos, err := req.GetUInt64(keyBlobPosition)
		if err != nil {
			t.Fatalf("read BlobPosition: %v", err)
		}
		if pos != wantPos {
			t.Fatalf("FetchDataRequest BlobPosition = %d, want %d", pos, wantPos)
		}
		size, err := req.GetUInt64(keyBlobSize)
		if err != nil || size != nearshare.PartitionSize {
			t.Fatalf("FetchDataRequest BlobSize = %d, err=%v, want %d", size, err, nearshare.PartitionSize)
		}

		remaining := uint64(bytesToSend) - pos
		blobLen := remaining
		if blobLen > nearshare.PartitionSize {
			blobLen = nearshare.PartitionSize
		}

		resp := valueset.New()
		resp.SetString(keyControlMessage, controlFetchDataResponse)
		resp.SetUInt64(keyBlobPosition, pos)
		resp.SetUInt64(keyBlobSize, blobLen)
		resp.SetBytes(keyDataBlob, source[pos:pos+blobLen])
		resp.SetUInt32(keyContentId, 0)
		peer.sendAppMessage(channelID, resp)
	}

	final := peer.readAppMessage(2 * time.Second)
	ctrl, err := final.GetString(keyControlMessage)
	if err != nil || ctrl != controlStartResponse {
		t.Fatalf("expected final StartResponse, got %q err=%v", ctrl, err)
	}

	waitForSessionCount(t, h, 0)

	if len(handler.FileTransfers) != 1 {
		t.Fatalf("FileTransfers = %d, want 1", len(handler.FileTransfers))
	}
	token := handler.FileTransfers[0]
	if token.ReceivedBytes() != bytesToSend {
		t.Fatalf("ReceivedBytes() = %d, want %d", token.ReceivedBytes(), bytesToSend)
	}
	if !bytes.Equal(sink.bytes(), source) {
		t.Fatal("sink contents do not match the source bytes")
	}
}

// TestFileTransferCancellationScenario drives spec.md §8 scenario 6: the
// handler cancels a file transfer before any data is requested, and the
// session tears down without issuing a single FetchDataRequest.
func TestFileTransferCancellationScenario(t *testing.T) {
	handler := platform.NewMock()
	handler.OnFileTransferFunc = func(token *platform.FileTransferToken) {
		token.Cancel()
	}
	h, peerConn, peer := newTestHost(t, handler)

	channelID := peer.openChannel(nearshare.AppID, "peer-device")

	start := valueset.New()
	start.SetString(keyControlMessage, controlStartRequest)
	start.SetString(keyDataKind, dataKindFile)
	start.SetStringList(keyFileNames, []string{"refused.bin"})
	start.SetUInt64(keyBytesToSend, 9000)
	peer.sendAppMessage(channelID, start)

	waitForSessionCount(t, h, 0)
	peerConn.Close()

	if len(handler.FileTransfers) != 1 {
		t.Fatalf("FileTransfers = %d, want 1", len(handler.FileTransfers))
	}

	if len(handler.Logs) == 0 {
		t.Fatal("handler.Log was never called during session teardown")
	}
}
