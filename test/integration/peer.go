// Package integration exercises the Near Share core end-to-end: a raw peer
// driving a pkg/host.Host across an in-memory pkg/transport.Pipe through
// the full Connect->Auth->AuthDone->Established handshake, a channel open,
// and a Near Share URI or file transfer (spec.md §8 concrete scenarios).
//
// testPeer deliberately does not reuse pkg/session's (unexported) message
// encoders: it builds request bytes straight off the wire primitives, the
// way an independent implementation of the same protocol would, so these
// tests exercise the wire contract rather than internal call paths.
package integration

import (
	cryptorand "crypto/rand"
	"testing"
	"time"

	"github.com/cdpnear/nearshare/pkg/crypto"
	"github.com/cdpnear/nearshare/pkg/cryptor"
	"github.com/cdpnear/nearshare/pkg/session"
	"github.com/cdpnear/nearshare/pkg/transport"
	"github.com/cdpnear/nearshare/pkg/valueset"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// thumbprintInfo mirrors pkg/session's HKDF "info" string for the
// device-auth thumbprint key (spec.md §4.3 Open Question, resolved in
// pkg/session/thumbprint.go); a real peer and this receiver must agree on
// the same fixed derivation.
var thumbprintInfo = []byte("CdpNearShareThumbprint")

func thumbprint(nonce1, nonce2, certificate []byte) []byte {
	key, err := crypto.HKDFSHA256(append(append([]byte(nil), nonce1...), nonce2...), nil, thumbprintInfo, session.ThumbprintSize)
	if err != nil {
		panic(err)
	}
	return crypto.HMACSHA256Slice(key, certificate)
}

// testPeer drives one simulated remote device through the protocol.
type testPeer struct {
	t    *testing.T
	conn transport.Conn
	sr   *wire.StreamReader
	sw   *wire.StreamWriter

	keys *cryptor.KeyPair
	nonce,
	cert []byte

	localID, remoteID uint32
	seq               uint32
	crypt             *cryptor.Cryptor
}

func newTestPeer(t *testing.T, conn transport.Conn, remoteID uint32, cert string) *testPeer {
	t.Helper()
	keys, err := cryptor.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate peer keypair: %v", err)
	}
	nonce := make([]byte, session.NonceSize)
	if _, err := cryptorand.Read(nonce); err != nil {
		t.Fatalf("generate peer nonce: %v", err)
	}
	return &testPeer{
		t:        t,
		conn:     conn,
		sr:       wire.NewStreamReader(conn),
		sw:       wire.NewStreamWriter(conn),
		keys:     keys,
		nonce:    nonce,
		cert:     []byte(cert),
		remoteID: remoteID,
	}
}

func (p *testPeer) readFrame(d time.Duration) []byte {
	p.t.Helper()
	type result struct {
		frame []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		frame, err := p.sr.ReadFrame()
		done <- result{frame, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			p.t.Fatalf("read frame: %v", r.err)
		}
		return r.frame
	case <-time.After(d):
		p.t.Fatalf("timed out waiting for a frame")
		return nil
	}
}

func (p *testPeer) writeRaw(header *wire.CommonHeader, body []byte) {
	p.t.Helper()
	if err := p.sw.WriteFrame(wire.EncodeFrame(header, body)); err != nil {
		p.t.Fatalf("write frame: %v", err)
	}
}

func (p *testPeer) writeEncrypted(header *wire.CommonHeader, body []byte) {
	p.t.Helper()
	header.SessionIDLocal = p.localID
	header.SessionIDRemote = p.remoteID
	header.SequenceNumber = p.seq
	p.seq++
	frame, err := p.crypt.EncryptMessage(header, body)
	if err != nil {
		p.t.Fatalf("encrypt frame: %v", err)
	}
	if err := p.sw.WriteFrame(frame); err != nil {
		p.t.Fatalf("write encrypted frame: %v", err)
	}
}

// handshake drives ConnectRequest through AuthDoneRequest, leaving the peer
// ready to open a channel (spec.md §8 scenario 1).
func (p *testPeer) handshake(requestIDStart uint32) {
	p.t.Helper()
	reqID := requestIDStart

	w := wire.NewWriter()
	w.PutUint32(uint32(session.ConnectRequest))
	w.PutUint16(uint16(wire.CurveNISTP256))
	w.PutUint16(cryptor.HMACSize)
	w.PutUint32(16384)
	w.PutBytes(p.nonce)
	w.PutBytes(p.keys.PublicKey())
	p.writeRaw(&wire.CommonHeader{Type: wire.MessageTypeConnect, RequestID: reqID}, w.Bytes())
	reqID++

	respFrame := p.readFrame(2 * time.Second)
	respHeader, respBody, err := wire.DecodeFrame(respFrame)
	if err != nil {
		p.t.Fatalf("decode ConnectResponse: %v", err)
	}
	p.localID = respHeader.SessionIDLocal

	r := wire.NewReader(respBody)
	r.Uint32() // ConnectResponse tag
	r.Uint32() // Result
	r.Uint16() // HmacSize
	r.Uint32() // FragmentSize
	sessionNonce, err := r.Bytes(session.NonceSize)
	if err != nil {
		p.t.Fatalf("read ConnectResponse nonce: %v", err)
	}
	sessionPub, err := r.Bytes(cryptor.PublicKeySize)
	if err != nil {
		p.t.Fatalf("read ConnectResponse public key: %v", err)
	}

	peerKeys, err := cryptor.DeriveKeys(p.keys, sessionPub)
	if err != nil {
		p.t.Fatalf("derive keys: %v", err)
	}
	p.crypt = cryptor.New(peerKeys)

	sendAuth := func(msgType session.ConnectionMessageType, thumb []byte) {
		w := wire.NewWriter()
		w.PutUint32(uint32(msgType))
		w.PutPayload(p.cert)
		w.PutBytes(thumb)
		p.writeEncrypted(&wire.CommonHeader{Type: wire.MessageTypeConnect, RequestID: reqID}, w.Bytes())
		reqID++
		respFrame := p.readFrame(2 * time.Second)
		if _, _, err := p.crypt.Read(respFrame); err != nil {
			p.t.Fatalf("decrypt auth response: %v", err)
		}
	}

	deviceThumb := thumbprint(p.nonce, sessionNonce, p.cert)
	sendAuth(session.DeviceAuthRequest, deviceThumb)
	userThumb := thumbprint(p.nonce, sessionNonce, p.cert)
	sendAuth(session.UserDeviceAuthRequest, userThumb)

	authDoneBody := wire.NewWriter()
	authDoneBody.PutUint32(uint32(session.AuthDoneRequest))
	p.writeEncrypted(&wire.CommonHeader{Type: wire.MessageTypeConnect, RequestID: reqID}, authDoneBody.Bytes())
	authDoneResp := p.readFrame(2 * time.Second)
	if _, _, err := p.crypt.Read(authDoneResp); err != nil {
		p.t.Fatalf("decrypt AuthDoneResponse: %v", err)
	}
}

// openChannel sends a StartChannelRequest for appID/appName and returns the
// allocated channel id (spec.md §4.5).
func (p *testPeer) openChannel(appID, appName string) uint64 {
	p.t.Helper()
	w := wire.NewWriter()
	w.PutUint32(uint32(session.StartChannelRequest))
	w.PutStringUTF8(appID)
	w.PutStringUTF8(appName)
	p.writeEncrypted(&wire.CommonHeader{Type: wire.MessageTypeControl, RequestID: 100}, w.Bytes())

	respFrame := p.readFrame(2 * time.Second)
	_, body, err := p.crypt.Read(respFrame)
	if err != nil {
		p.t.Fatalf("decrypt StartChannelResponse: %v", err)
	}
	r := wire.NewReader(body)
	r.Uint32() // StartChannelResponse tag
	result, _ := r.Uint8()
	if result != 0 {
		p.t.Fatalf("StartChannelResponse result = %d, want 0", result)
	}
	channelID, err := r.Uint64()
	if err != nil {
		p.t.Fatalf("read channel id: %v", err)
	}
	return channelID
}

// correlationPrefix is the fixed 12-byte opaque prefix every Near Share
// ValueSet payload carries (spec.md §4.7).
var correlationPrefix = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// sendAppMessage writes a Session-type, single-fragment message to
// channelID carrying vs as its payload, prefixed by correlationPrefix.
func (p *testPeer) sendAppMessage(channelID uint64, vs *valueset.ValueSet) {
	p.t.Helper()
	body := append(append([]byte(nil), correlationPrefix...), valueset.Encode(vs)...)
	header := &wire.CommonHeader{
		Type:          wire.MessageTypeSession,
		ChannelID:     channelID,
		FragmentCount: 1,
	}
	p.writeEncrypted(header, body)
}

// readAppMessage reads and decrypts one frame, stripping the correlation
// prefix and decoding the remainder as a ValueSet.
func (p *testPeer) readAppMessage(d time.Duration) *valueset.ValueSet {
	p.t.Helper()
	frame := p.readFrame(d)
	_, body, err := p.crypt.Read(frame)
	if err != nil {
		p.t.Fatalf("decrypt app message: %v", err)
	}
	if len(body) < len(correlationPrefix) {
		p.t.Fatalf("app message shorter than correlation prefix")
	}
	vs, err := valueset.Decode(body[len(correlationPrefix):])
	if err != nil {
		p.t.Fatalf("decode app message valueset: %v", err)
	}
	return vs
}
